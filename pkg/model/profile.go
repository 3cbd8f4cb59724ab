package model

import (
	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidProfile = goerr.New("invalid patient profile")

type Sex string

const (
	SexMale   Sex = "hombre"
	SexFemale Sex = "mujer"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentario"
	ActivityLight     ActivityLevel = "ligero"
	ActivityModerate  ActivityLevel = "moderado"
	ActivityHigh      ActivityLevel = "alto"
	ActivityAthlete   ActivityLevel = "atleta"
)

type Goal string

const (
	GoalFatLoss         Goal = "perder_grasa"
	GoalMuscleGain      Goal = "ganar_musculo"
	GoalMaintain        Goal = "mantener"
	GoalPerformance     Goal = "rendimiento"
	GoalMetabolicHealth Goal = "salud_metabolica"
)

type Formula string

const (
	FormulaMifflin Formula = "mifflin"
	FormulaHarris  Formula = "harris"
	FormulaDirect  Formula = "directa"
)

// PatientProfile is the input to nutrition plan generation. Field names on
// the wire match the original tool schema.
type PatientProfile struct {
	Sex           Sex           `json:"sexo"`
	Age           int           `json:"edad"`
	WeightKg      float64       `json:"peso_kg"`
	HeightCm      float64       `json:"estatura_cm"`
	ActivityLevel ActivityLevel `json:"nivel_actividad"`
	Goal          Goal          `json:"objetivo"`
	BodyFatPct    *float64      `json:"porcentaje_grasa,omitempty"`
	Formula       Formula       `json:"preferencia_formula,omitempty"`
}

// Validate checks enum values and numeric ranges. An empty formula preference
// defaults to mifflin; everything else must be present and valid.
func (p *PatientProfile) Validate() error {
	switch p.Sex {
	case SexMale, SexFemale:
	default:
		return goerr.Wrap(ErrInvalidProfile, "unknown sex", goerr.V("sexo", p.Sex))
	}

	if p.Age <= 0 {
		return goerr.Wrap(ErrInvalidProfile, "age must be positive", goerr.V("edad", p.Age))
	}
	if p.WeightKg <= 0 {
		return goerr.Wrap(ErrInvalidProfile, "weight must be positive", goerr.V("peso_kg", p.WeightKg))
	}
	if p.HeightCm <= 0 {
		return goerr.Wrap(ErrInvalidProfile, "height must be positive", goerr.V("estatura_cm", p.HeightCm))
	}

	switch p.ActivityLevel {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityHigh, ActivityAthlete:
	default:
		return goerr.Wrap(ErrInvalidProfile, "unknown activity level", goerr.V("nivel_actividad", p.ActivityLevel))
	}

	switch p.Goal {
	case GoalFatLoss, GoalMuscleGain, GoalMaintain, GoalPerformance, GoalMetabolicHealth:
	default:
		return goerr.Wrap(ErrInvalidProfile, "unknown goal", goerr.V("objetivo", p.Goal))
	}

	switch p.Formula {
	case FormulaMifflin, FormulaHarris, FormulaDirect:
	case "":
		p.Formula = FormulaMifflin
	default:
		return goerr.Wrap(ErrInvalidProfile, "unknown formula preference", goerr.V("preferencia_formula", p.Formula))
	}

	return nil
}

// NutritionPlan is the output of plan generation. All values are rounded to
// one decimal.
type NutritionPlan struct {
	BMR             float64  `json:"tmb"`
	TDEE            float64  `json:"tdee"`
	TargetCalories  float64  `json:"calorias_objetivo"`
	ProteinG        float64  `json:"proteinas_g"`
	FatG            float64  `json:"grasas_g"`
	CarbsG          float64  `json:"carbohidratos_g"`
	Recommendations []string `json:"recomendaciones"`
}

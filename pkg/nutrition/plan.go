package nutrition

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/model"
)

var activityFactors = map[model.ActivityLevel]float64{
	model.ActivitySedentary: 1.2,
	model.ActivityLight:     1.375,
	model.ActivityModerate:  1.55,
	model.ActivityHigh:      1.725,
	model.ActivityAthlete:   1.9,
}

// The recommendation strings are goal-invariant on purpose: plan generation
// stays a pure function of the profile.
var planRecommendations = []string{
	"Distribuye los carbohidratos alrededor del entrenamiento.",
	"Incluye proteína magra en cada comida.",
	"Usa electrolitos en sesiones largas.",
}

// GeneratePlan computes a caloric and macronutrient plan from a patient
// profile. It fails only when the profile violates its declared constraints.
func GeneratePlan(profile model.PatientProfile) (model.NutritionPlan, error) {
	if err := profile.Validate(); err != nil {
		return model.NutritionPlan{}, goerr.Wrap(err, "cannot generate plan")
	}

	bmr := basalRate(profile)
	tdee := bmr * activityFactors[profile.ActivityLevel]

	calories := tdee
	switch profile.Goal {
	case model.GoalFatLoss:
		calories = tdee * 0.80
	case model.GoalMuscleGain:
		calories = tdee * 1.15
	}

	protein := profile.WeightKg * 1.8
	fat := calories * 0.25 / 9
	carbs := (calories - (protein*4 + fat*9)) / 4
	carbs = math.Max(0, carbs)

	return model.NutritionPlan{
		BMR:             round1(bmr),
		TDEE:            round1(tdee),
		TargetCalories:  round1(calories),
		ProteinG:        round1(protein),
		FatG:            round1(fat),
		CarbsG:          round1(carbs),
		Recommendations: planRecommendations,
	}, nil
}

func basalRate(p model.PatientProfile) float64 {
	switch p.Formula {
	case model.FormulaHarris:
		if p.Sex == model.SexMale {
			return 66.5 + 13.75*p.WeightKg + 5.003*p.HeightCm - 6.775*float64(p.Age)
		}
		return 655.1 + 9.563*p.WeightKg + 1.85*p.HeightCm - 4.676*float64(p.Age)
	case model.FormulaDirect:
		return 22 * p.WeightKg
	default: // mifflin
		sexTerm := -161.0
		if p.Sex == model.SexMale {
			sexTerm = 5
		}
		return 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age) + sexTerm
	}
}

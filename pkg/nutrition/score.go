package nutrition

import (
	"math"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/model"
	"gopkg.in/yaml.v3"
)

// Calibration holds the fixed weights and reference amounts of the NutrIA
// score. Weights sum to 100. The defaults are the documented calibration;
// a YAML file can override individual values for experimentation.
type Calibration struct {
	ProteinRefG  float64 `yaml:"protein_ref_g"`
	FiberRefG    float64 `yaml:"fiber_ref_g"`
	FatRefG      float64 `yaml:"fat_ref_g"`
	CarbRefG     float64 `yaml:"carb_ref_g"`
	SugarRefG    float64 `yaml:"sugar_ref_g"`
	SodiumRefMg  float64 `yaml:"sodium_ref_mg"`
	EnergyRefKcal float64 `yaml:"energy_ref_kcal"`

	ProteinWeight float64 `yaml:"protein_weight"`
	FiberWeight   float64 `yaml:"fiber_weight"`
	FatWeight     float64 `yaml:"fat_weight"`
	CarbWeight    float64 `yaml:"carb_weight"`
	SugarWeight   float64 `yaml:"sugar_weight"`
	SodiumWeight  float64 `yaml:"sodium_weight"`
	EnergyWeight  float64 `yaml:"energy_weight"`

	// Flat bonus for very low energy foods, applied below LowEnergyKcal.
	LowEnergyKcal  float64 `yaml:"low_energy_kcal"`
	LowEnergyBonus float64 `yaml:"low_energy_bonus"`
}

func DefaultCalibration() Calibration {
	return Calibration{
		ProteinRefG:   20,
		FiberRefG:     7,
		FatRefG:       20,
		CarbRefG:      60,
		SugarRefG:     35,
		SodiumRefMg:   1500,
		EnergyRefKcal: 700,

		ProteinWeight: 25,
		FiberWeight:   20,
		FatWeight:     5,
		CarbWeight:    5,
		SugarWeight:   20,
		SodiumWeight:  15,
		EnergyWeight:  10,

		LowEnergyKcal:  30,
		LowEnergyBonus: 20,
	}
}

// LoadCalibration reads a calibration file. Values not present in the file
// keep their defaults.
func LoadCalibration(path string) (Calibration, error) {
	cal := DefaultCalibration()

	data, err := os.ReadFile(path)
	if err != nil {
		return cal, goerr.Wrap(err, "failed to read calibration file", goerr.V("path", path))
	}
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return cal, goerr.Wrap(err, "failed to parse calibration file", goerr.V("path", path))
	}

	return cal, nil
}

// Scorer computes the NutrIA score of a food record.
type Scorer struct {
	cal Calibration
}

func NewScorer(cal Calibration) Scorer {
	return Scorer{cal: cal}
}

// Score maps a food record to a value in [0, 100], rounded to one decimal.
// It is pure and total: zero-valued nutrient fields are scored as zero and
// no input can make it fail. More protein or fiber never lowers the score;
// more sugar, sodium or energy density never raises it.
func (s Scorer) Score(f model.FoodRecord) float64 {
	c := s.cal

	score := 0.0
	score += math.Min(f.ProteinG/c.ProteinRefG, 1) * c.ProteinWeight
	score += math.Min(f.FiberG/c.FiberRefG, 1) * c.FiberWeight
	score += math.Max(0, (c.FatRefG-f.FatG)/c.FatRefG) * c.FatWeight
	score += math.Min(f.CarbsG/c.CarbRefG, 1) * c.CarbWeight

	score += math.Max(0, 1-f.SugarG/c.SugarRefG) * c.SugarWeight
	score += math.Max(0, 1-f.Sodium/c.SodiumRefMg) * c.SodiumWeight
	score += math.Max(0, 1-f.EnergyKcal/c.EnergyRefKcal) * c.EnergyWeight

	if f.EnergyKcal < c.LowEnergyKcal {
		score += c.LowEnergyBonus
	}

	return round1(math.Max(0, math.Min(score, 100)))
}

// ScoreRecord pairs a record with its score.
func (s Scorer) ScoreRecord(f model.FoodRecord) model.ScoredFood {
	return model.ScoredFood{FoodRecord: f, Score: s.Score(f)}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

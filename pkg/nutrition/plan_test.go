package nutrition_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/nutrition"
)

func TestGeneratePlanMifflin(t *testing.T) {
	plan, err := nutrition.GeneratePlan(model.PatientProfile{
		Sex:           model.SexMale,
		Age:           32,
		WeightKg:      72,
		HeightCm:      178,
		ActivityLevel: model.ActivityHigh,
		Goal:          model.GoalPerformance,
		Formula:       model.FormulaMifflin,
	})
	gt.NoError(t, err)

	gt.Equal(t, plan.BMR, 1677.5)
	gt.Equal(t, plan.TDEE, 2893.7)
	// Performance keeps the target at maintenance.
	gt.Equal(t, plan.TargetCalories, 2893.7)
	gt.Equal(t, plan.ProteinG, 129.6)
	gt.Equal(t, plan.FatG, 80.4)
	gt.Equal(t, plan.CarbsG, 413.0)
	gt.A(t, plan.Recommendations).Longer(0)
}

func TestGeneratePlanFatLoss(t *testing.T) {
	plan, err := nutrition.GeneratePlan(model.PatientProfile{
		Sex:           model.SexMale,
		Age:           30,
		WeightKg:      80,
		HeightCm:      180,
		ActivityLevel: model.ActivitySedentary,
		Goal:          model.GoalFatLoss,
	})
	gt.NoError(t, err)

	gt.Equal(t, plan.BMR, 1780.0)
	gt.Equal(t, plan.TDEE, 2136.0)
	gt.Equal(t, plan.TargetCalories, 1708.8)
	gt.Equal(t, plan.ProteinG, 144.0)
	gt.Equal(t, plan.FatG, 47.5)
	gt.Equal(t, plan.CarbsG, 176.4)
}

func TestGeneratePlanMuscleGain(t *testing.T) {
	plan, err := nutrition.GeneratePlan(model.PatientProfile{
		Sex:           model.SexMale,
		Age:           30,
		WeightKg:      80,
		HeightCm:      180,
		ActivityLevel: model.ActivitySedentary,
		Goal:          model.GoalMuscleGain,
	})
	gt.NoError(t, err)

	gt.Equal(t, plan.TDEE, 2136.0)
	gt.Equal(t, plan.TargetCalories, 2456.4)
}

func TestGeneratePlanFormulas(t *testing.T) {
	t.Run("harris", func(t *testing.T) {
		plan, err := nutrition.GeneratePlan(model.PatientProfile{
			Sex:           model.SexMale,
			Age:           30,
			WeightKg:      80,
			HeightCm:      180,
			ActivityLevel: model.ActivitySedentary,
			Goal:          model.GoalMaintain,
			Formula:       model.FormulaHarris,
		})
		gt.NoError(t, err)
		gt.Equal(t, plan.BMR, 1863.8)
	})

	t.Run("direct", func(t *testing.T) {
		plan, err := nutrition.GeneratePlan(model.PatientProfile{
			Sex:           model.SexFemale,
			Age:           40,
			WeightKg:      70,
			HeightCm:      160,
			ActivityLevel: model.ActivityModerate,
			Goal:          model.GoalMaintain,
			Formula:       model.FormulaDirect,
		})
		gt.NoError(t, err)
		gt.Equal(t, plan.BMR, 1540.0)
		gt.Equal(t, plan.TDEE, 2387.0)
	})

	t.Run("mifflin female sex term", func(t *testing.T) {
		plan, err := nutrition.GeneratePlan(model.PatientProfile{
			Sex:           model.SexFemale,
			Age:           30,
			WeightKg:      60,
			HeightCm:      160,
			ActivityLevel: model.ActivitySedentary,
			Goal:          model.GoalMaintain,
		})
		gt.NoError(t, err)
		gt.Equal(t, plan.BMR, 1289.0)
		gt.Equal(t, plan.TDEE, 1546.8)
	})
}

func TestGeneratePlanCarbsFloor(t *testing.T) {
	// An extreme profile where protein and fat alone exceed the caloric
	// target; carbohydrates must clamp to zero, never go negative.
	plan, err := nutrition.GeneratePlan(model.PatientProfile{
		Sex:           model.SexFemale,
		Age:           95,
		WeightKg:      300,
		HeightCm:      100,
		ActivityLevel: model.ActivitySedentary,
		Goal:          model.GoalFatLoss,
	})
	gt.NoError(t, err)
	gt.Equal(t, plan.CarbsG, 0.0)
}

func TestGeneratePlanInvalidProfile(t *testing.T) {
	valid := model.PatientProfile{
		Sex:           model.SexMale,
		Age:           30,
		WeightKg:      80,
		HeightCm:      180,
		ActivityLevel: model.ActivitySedentary,
		Goal:          model.GoalMaintain,
	}

	cases := map[string]func(p *model.PatientProfile){
		"unknown sex":      func(p *model.PatientProfile) { p.Sex = "otro" },
		"zero age":         func(p *model.PatientProfile) { p.Age = 0 },
		"negative weight":  func(p *model.PatientProfile) { p.WeightKg = -1 },
		"zero height":      func(p *model.PatientProfile) { p.HeightCm = 0 },
		"unknown activity": func(p *model.PatientProfile) { p.ActivityLevel = "intenso" },
		"unknown goal":     func(p *model.PatientProfile) { p.Goal = "volumen" },
		"unknown formula":  func(p *model.PatientProfile) { p.Formula = "katch" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			_, err := nutrition.GeneratePlan(p)
			gt.Error(t, err)
			gt.True(t, errors.Is(err, model.ErrInvalidProfile))
		})
	}
}

func TestValidateDefaultsFormula(t *testing.T) {
	p := model.PatientProfile{
		Sex:           model.SexMale,
		Age:           30,
		WeightKg:      80,
		HeightCm:      180,
		ActivityLevel: model.ActivitySedentary,
		Goal:          model.GoalMaintain,
	}
	gt.NoError(t, p.Validate())
	gt.Equal(t, p.Formula, model.FormulaMifflin)
}

package foods

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/nutrition"
	"github.com/mcortez-ml/nutria/pkg/tool"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// planTool generates a caloric/macronutrient plan from patient biometrics.
type planTool struct{}

func NewPlan() tool.Tool {
	return &planTool{}
}

func (t *planTool) Flags() []cli.Flag {
	return nil
}

func (t *planTool) Prompt(ctx context.Context) string {
	return ""
}

func (t *planTool) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "generar_plan_nutricional",
				Description: "Genera un plan nutricional (TMB, TDEE, calorías objetivo y macros) a partir de los datos del paciente.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"sexo": {
							Type: genai.TypeString,
							Enum: []string{"hombre", "mujer"},
						},
						"edad": {
							Type:        genai.TypeInteger,
							Description: "Edad en años",
						},
						"peso_kg": {
							Type: genai.TypeNumber,
						},
						"estatura_cm": {
							Type: genai.TypeNumber,
						},
						"nivel_actividad": {
							Type: genai.TypeString,
							Enum: []string{"sedentario", "ligero", "moderado", "alto", "atleta"},
						},
						"objetivo": {
							Type: genai.TypeString,
							Enum: []string{"perder_grasa", "ganar_musculo", "mantener", "rendimiento", "salud_metabolica"},
						},
						"porcentaje_grasa": {
							Type:        genai.TypeNumber,
							Description: "Porcentaje de grasa corporal, si se conoce",
						},
						"preferencia_formula": {
							Type: genai.TypeString,
							Enum: []string{"mifflin", "harris", "directa"},
						},
					},
					Required: []string{"sexo", "edad", "peso_kg", "estatura_cm", "nivel_actividad", "objetivo"},
				},
			},
		},
	}
}

func (t *planTool) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	profile, err := profileFromArgs(fc.Args)
	if err != nil {
		return nil, err
	}

	plan, err := nutrition.GeneratePlan(profile)
	if err != nil {
		return nil, err
	}

	payload, err := asMap(plan)
	if err != nil {
		return nil, err
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: payload,
	}, nil
}

func profileFromArgs(args map[string]any) (model.PatientProfile, error) {
	var profile model.PatientProfile

	raw, err := json.Marshal(args)
	if err != nil {
		return profile, goerr.Wrap(err, "failed to marshal plan arguments")
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return profile, goerr.Wrap(err, "failed to parse plan arguments")
	}

	return profile, nil
}

package foods

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/catalog"
	"github.com/mcortez-ml/nutria/pkg/nutrition"
	"github.com/mcortez-ml/nutria/pkg/tool"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// foodInfoTool looks up a single food in the catalog and returns its
// nutrient fields plus the NutrIA score.
type foodInfoTool struct {
	catalog *catalog.Catalog
	scorer  nutrition.Scorer
}

func NewFoodInfo(cat *catalog.Catalog, scorer nutrition.Scorer) tool.Tool {
	return &foodInfoTool{catalog: cat, scorer: scorer}
}

func (t *foodInfoTool) Flags() []cli.Flag {
	return nil
}

func (t *foodInfoTool) Prompt(ctx context.Context) string {
	return ""
}

func (t *foodInfoTool) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "get_food_info",
				Description: "Obtiene la información nutricional de un alimento del catálogo, incluyendo el NutrIA Score.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"nombre_alimento": {
							Type:        genai.TypeString,
							Description: "Nombre (o parte del nombre) del alimento a buscar",
						},
					},
					Required: []string{"nombre_alimento"},
				},
			},
		},
	}
}

func (t *foodInfoTool) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	name, _ := fc.Args["nombre_alimento"].(string)
	if strings.TrimSpace(name) == "" {
		return nil, goerr.New("nombre_alimento is required")
	}

	record := t.catalog.FindByName(name)
	if record == nil {
		// Lookup miss is data, not an error.
		return &genai.FunctionResponse{
			Name: fc.Name,
			Response: map[string]any{
				"error": fmt.Sprintf("No encontré '%s' en el catálogo.", name),
			},
		}, nil
	}

	payload, err := asMap(t.scorer.ScoreRecord(*record))
	if err != nil {
		return nil, err
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: payload,
	}, nil
}

// asMap converts a value to the map form genai.FunctionResponse expects.
func asMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal tool payload")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal tool payload")
	}
	return m, nil
}

package foods

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcortez-ml/nutria/pkg/catalog"
	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/nutrition"
	"github.com/mcortez-ml/nutria/pkg/policy"
	"github.com/mcortez-ml/nutria/pkg/tool"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// recommendTool ranks catalog foods by NutrIA score under the requested
// filters. An optional dietary policy engine removes restricted foods from
// the candidate pool.
type recommendTool struct {
	catalog *catalog.Catalog
	scorer  nutrition.Scorer
	diet    *policy.Engine
}

func NewRecommend(cat *catalog.Catalog, scorer nutrition.Scorer, diet *policy.Engine) tool.Tool {
	return &recommendTool{catalog: cat, scorer: scorer, diet: diet}
}

func (t *recommendTool) Flags() []cli.Flag {
	return nil
}

// Prompt lists the catalog categories so the model can fill the categoria
// argument with values that actually exist.
func (t *recommendTool) Prompt(ctx context.Context) string {
	categories := t.catalog.Categories()
	if len(categories) == 0 {
		return ""
	}
	return fmt.Sprintf("### Categorías disponibles en el catálogo\n\n%s",
		strings.Join(categories, ", "))
}

func (t *recommendTool) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "get_nutrition_recommendations",
				Description: "Recomienda alimentos según un objetivo nutricional, ordenados por NutrIA Score.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"objetivo": {
							Type:        genai.TypeString,
							Description: "Objetivo nutricional del usuario (ej. 'más proteína', 'menos azúcar')",
						},
						"categoria": {
							Type:        genai.TypeString,
							Description: "Categoría del catálogo a la que limitar la búsqueda; 'todas' para no filtrar",
						},
						"alimento_base": {
							Type:        genai.TypeString,
							Description: "Alimento a sustituir; se excluye de las recomendaciones",
						},
						"top_k": {
							Type:        genai.TypeInteger,
							Description: "Número de recomendaciones a devolver (default: 5)",
						},
					},
					Required: []string{"objetivo"},
				},
			},
		},
	}
}

func (t *recommendTool) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	// Malformed or missing optional arguments fall back to "no filter".
	goal, _ := fc.Args["objetivo"].(string)
	category, _ := fc.Args["categoria"].(string)
	exclude, _ := fc.Args["alimento_base"].(string)

	topK := 0
	if v, ok := fc.Args["top_k"].(float64); ok {
		topK = int(v)
	}

	var deny nutrition.DenyFunc
	if t.diet != nil {
		deny = func(r model.FoodRecord) bool { return t.diet.Deny(ctx, r) }
	}

	result := nutrition.Recommend(t.catalog, t.scorer, deny, nutrition.RecommendInput{
		Goal:        goal,
		Category:    category,
		ExcludeFood: exclude,
		TopK:        topK,
	})

	payload, err := asMap(result)
	if err != nil {
		return nil, err
	}

	return &genai.FunctionResponse{
		Name:     fc.Name,
		Response: payload,
	}, nil
}

package nutrition

import (
	"sort"
	"strings"

	"github.com/mcortez-ml/nutria/pkg/catalog"
	"github.com/mcortez-ml/nutria/pkg/model"
)

// CategoryAll is the sentinel that disables the category filter.
const CategoryAll = "todas"

const defaultTopK = 5

// RecommendInput carries the recommendation filters. Empty strings mean
// "no filter"; TopK below 1 falls back to the default of 5.
type RecommendInput struct {
	Goal        string
	Category    string
	ExcludeFood string
	TopK        int
}

// RecommendResult is the structured recommendation payload.
type RecommendResult struct {
	Goal        string             `json:"objetivo"`
	ExcludeFood string             `json:"alimento_base"`
	Items       []model.ScoredFood `json:"recomendaciones"`
	Warning     string             `json:"warning,omitempty"`
}

// DenyFunc marks catalog records excluded by an external dietary policy.
// A nil DenyFunc excludes nothing.
type DenyFunc func(model.FoodRecord) bool

// Recommend filters the catalog, scores the remaining rows and returns the
// top-K by score. It never fails: filters that eliminate every candidate
// produce an empty result with Warning set. Ties preserve catalog order.
func Recommend(cat *catalog.Catalog, scorer Scorer, deny DenyFunc, in RecommendInput) RecommendResult {
	goal := normalize(in.Goal)
	category := normalize(in.Category)
	exclude := normalize(in.ExcludeFood)

	topK := in.TopK
	if topK < 1 {
		topK = defaultTopK
	}

	result := RecommendResult{
		Goal:        goal,
		ExcludeFood: exclude,
		Items:       []model.ScoredFood{},
	}

	var candidates []model.ScoredFood
	for _, r := range cat.Records() {
		if category != "" && category != CategoryAll && normalize(r.Category) != category {
			continue
		}
		if exclude != "" && strings.Contains(strings.ToLower(r.Name), exclude) {
			continue
		}
		if deny != nil && deny(r) {
			continue
		}
		candidates = append(candidates, scorer.ScoreRecord(r))
	}

	if len(candidates) == 0 {
		result.Warning = "No se encontraron alimentos para recomendar."
		return result
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	result.Items = candidates

	return result
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

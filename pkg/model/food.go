package model

// FoodRecord is one row of the food catalog. JSON field names follow the
// original dataset columns, so tool payloads stay compatible with prompts
// written in Spanish.
type FoodRecord struct {
	Name     string `json:"alimento"`
	Category string `json:"categoria"`

	EnergyKcal float64 `json:"energia_kcal"`
	ProteinG   float64 `json:"proteina_g"`
	FatG       float64 `json:"lipidos_g"`
	CarbsG     float64 `json:"hidratos_carbono_g"`
	SugarG     float64 `json:"azucar_g"`
	// Milligrams in practice, the column name is inherited from the dataset.
	Sodium float64 `json:"sodio_g"`
	FiberG float64 `json:"fibra_g"`

	ServingUnit string  `json:"medida,omitempty"`
	ServingQty  float64 `json:"cantidad,omitempty"`
}

// ScoredFood is a FoodRecord with its NutrIA score in [0, 100].
type ScoredFood struct {
	FoodRecord
	Score float64 `json:"nutria_score"`
}

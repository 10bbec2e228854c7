// Package nutrition contains nutrient value types shared by the recipe
// validator and the lookup adapters.
package nutrition

import "strings"

// Canonical lower-case nutrient names used throughout the pipeline.
const (
	NutrientSugar         = "sugar"
	NutrientFiber         = "fiber"
	NutrientCarbohydrates = "carbohydrates"
	NutrientSodium        = "sodium"
	NutrientSaturatedFat  = "saturated fat"
	NutrientProtein       = "protein"
	NutrientCholesterol   = "cholesterol"
	NutrientCalories      = "calories"
	NutrientFat           = "fat"
)

// Nutrient is a single nutrient reading, per serving.
type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// AmountsByName collapses a nutrient list into lower-cased name to amount.
// Last write wins when a name repeats; a missing nutrient is simply absent
// (callers treat absence as zero).
func AmountsByName(nutrients []Nutrient) map[string]float64 {
	amounts := make(map[string]float64, len(nutrients))
	for _, n := range nutrients {
		amounts[strings.ToLower(n.Name)] = n.Amount
	}
	return amounts
}

// FoodNutrition is the formatted nutrition record for a single food item.
type FoodNutrition struct {
	Description     string              `json:"description"`
	ServingSize     *float64            `json:"servingSize"`
	ServingSizeUnit string              `json:"servingSizeUnit"`
	Nutrients       map[string]Nutrient `json:"nutrients"`
}

// LookupResult is the per-ingredient outcome of a nutrition lookup.
// A miss or a per-ingredient failure is a normal record, not an error:
// one bad ingredient must never abort the batch.
type LookupResult struct {
	Found       bool           `json:"found"`
	MatchedFood string         `json:"matchedFood,omitempty"`
	Nutrition   *FoodNutrition `json:"nutrition,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Package recipe contains the formatted recipe schema and the post-hoc
// health validation of a recipe's nutrition against a user profile.
package recipe

import (
	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
)

// Recipe is the stable internal schema produced by the search adapter.
type Recipe struct {
	ID                int64                         `json:"id"`
	Title             string                        `json:"title"`
	Image             string                        `json:"image,omitempty"`
	ReadyInMinutes    int                           `json:"readyInMinutes"`
	Servings          int                           `json:"servings"`
	SourceURL         string                        `json:"sourceUrl,omitempty"`
	Summary           string                        `json:"summary,omitempty"`
	Nutrition         map[string]nutrition.Nutrient `json:"nutrition"`
	UsedIngredients   []string                      `json:"usedIngredients"`
	MissedIngredients []string                      `json:"missedIngredients"`
	Diets             []string                      `json:"diets"`
	HealthScore       float64                       `json:"healthScore"`
}

// InstructionStep is one step of a recipe's cooking instructions.
type InstructionStep struct {
	Number      int      `json:"number"`
	Step        string   `json:"step"`
	Ingredients []string `json:"ingredients"`
	Equipment   []string `json:"equipment"`
}

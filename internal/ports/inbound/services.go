// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
package inbound

import (
	"context"

	"github.com/myboiiPrime/AI-food/internal/application/kitchen"
	"github.com/myboiiPrime/AI-food/internal/domain/detection"
	"github.com/myboiiPrime/AI-food/internal/domain/health"
	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
	"github.com/myboiiPrime/AI-food/internal/domain/recipe"
)

// KitchenService is the use-case surface the HTTP layer drives.
type KitchenService interface {
	AnalyzeCart(ctx context.Context, ingredients []string, profile health.Profile) (*kitchen.CartAnalysis, error)
	DetectIngredients(ctx context.Context, image string) ([]string, error)
	DetectIngredientsDetailed(ctx context.Context, image string) ([]detection.Detection, error)
	RecipeDetails(ctx context.Context, recipeID int64) (*recipe.Recipe, error)
	RecipeInstructions(ctx context.Context, recipeID int64) ([]recipe.InstructionStep, error)
	IngredientNutrition(ctx context.Context, ingredients []string) (map[string]nutrition.LookupResult, error)
	ValidateRecipe(nutrients []nutrition.Nutrient, profile health.Profile) recipe.ValidationResult
	SetConfidenceThreshold(threshold float64) error
	Availability() map[string]bool
}

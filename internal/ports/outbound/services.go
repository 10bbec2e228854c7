// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/myboiiPrime/AI-food/internal/domain/detection"
	"github.com/myboiiPrime/AI-food/internal/domain/health"
	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
	"github.com/myboiiPrime/AI-food/internal/domain/recipe"
)

// VisionService defines the interface for remote ingredient detection.
// Implementations own the cold-start retry policy and the confidence
// threshold; the image argument is a local file path or an http(s) URL.
type VisionService interface {
	DetectIngredients(ctx context.Context, image string) ([]string, error)
	DetectIngredientsDetailed(ctx context.Context, image string) ([]detection.Detection, error)

	// SetConfidenceThreshold rejects values outside [0.0, 1.0].
	SetConfidenceThreshold(threshold float64) error
	ConfidenceThreshold() float64
}

// RecipeSearchService defines the interface for ingredient-driven recipe
// search with health filters merged into the query.
type RecipeSearchService interface {
	SearchRecipes(ctx context.Context, ingredients []string, filters health.FilterSet, number int) ([]recipe.Recipe, error)
	RecipeDetails(ctx context.Context, recipeID int64) (*recipe.Recipe, error)
	RecipeInstructions(ctx context.Context, recipeID int64) ([]recipe.InstructionStep, error)
}

// NutritionService defines the interface for per-ingredient nutrient lookup.
// Lookups are sequential, first match only; a miss yields a not-found record.
type NutritionService interface {
	IngredientNutrition(ctx context.Context, ingredients []string) (map[string]nutrition.LookupResult, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

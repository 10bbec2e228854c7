// Package kitchen orchestrates the detection, recipe search and nutrition
// lookup pipelines behind the API. It depends only on outbound ports; the
// pure domain logic lives in internal/domain.
package kitchen

import (
	"context"

	"github.com/myboiiPrime/AI-food/internal/domain/detection"
	"github.com/myboiiPrime/AI-food/internal/domain/health"
	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
	"github.com/myboiiPrime/AI-food/internal/domain/recipe"
	"github.com/myboiiPrime/AI-food/internal/ports/outbound"
	"github.com/myboiiPrime/AI-food/pkg/errors"
	"go.uber.org/zap"
)

// Default number of recipes requested per search.
const defaultRecipeCount = 10

// CartAnalysis is the result of a health-filtered recipe search.
type CartAnalysis struct {
	Recipes        []recipe.Recipe  `json:"recipes"`
	AppliedFilters health.FilterSet `json:"applied_filters"`
}

// Service coordinates the three remote backends. Any backend may be nil when
// its API key was never configured; the corresponding operations then return
// a service-unavailable error instead of panicking per request.
type Service struct {
	vision    outbound.VisionService
	recipes   outbound.RecipeSearchService
	nutrition outbound.NutritionService
	logger    *zap.Logger
}

// NewService creates the orchestration service. Handles are read-only after
// construction, so the service is safe for concurrent requests.
func NewService(
	vision outbound.VisionService,
	recipes outbound.RecipeSearchService,
	nutrition outbound.NutritionService,
	logger *zap.Logger,
) *Service {
	return &Service{
		vision:    vision,
		recipes:   recipes,
		nutrition: nutrition,
		logger:    logger.Named("kitchen"),
	}
}

// AnalyzeCart builds health filters from the profile, merges them into an
// ingredient-driven recipe search, and reports the applied filter set.
func (s *Service) AnalyzeCart(ctx context.Context, ingredients []string, profile health.Profile) (*CartAnalysis, error) {
	if s.recipes == nil {
		return nil, errors.NewServiceUnavailableError("recipe")
	}

	filters := health.BuildFilters(profile)

	recipes, err := s.recipes.SearchRecipes(ctx, ingredients, filters, defaultRecipeCount)
	if err != nil {
		s.logger.Error("recipe search failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("cart analyzed",
		zap.Int("ingredients", len(ingredients)),
		zap.Int("recipes", len(recipes)),
		zap.Strings("filters", filters.Keys()))

	return &CartAnalysis{
		Recipes:        recipes,
		AppliedFilters: filters,
	}, nil
}

// DetectIngredients runs the vision pipeline and returns the deduplicated
// ingredient names. The image argument is a local file path or an http(s) URL.
func (s *Service) DetectIngredients(ctx context.Context, image string) ([]string, error) {
	if s.vision == nil {
		return nil, errors.NewServiceUnavailableError("vision")
	}
	return s.vision.DetectIngredients(ctx, image)
}

// DetectIngredientsDetailed returns one entry per kept prediction, with
// confidence and bounding box, duplicates preserved.
func (s *Service) DetectIngredientsDetailed(ctx context.Context, image string) ([]detection.Detection, error) {
	if s.vision == nil {
		return nil, errors.NewServiceUnavailableError("vision")
	}
	return s.vision.DetectIngredientsDetailed(ctx, image)
}

// RecipeDetails fetches full information for a single recipe.
func (s *Service) RecipeDetails(ctx context.Context, recipeID int64) (*recipe.Recipe, error) {
	if s.recipes == nil {
		return nil, errors.NewServiceUnavailableError("recipe")
	}
	return s.recipes.RecipeDetails(ctx, recipeID)
}

// RecipeInstructions fetches step-by-step cooking instructions.
func (s *Service) RecipeInstructions(ctx context.Context, recipeID int64) ([]recipe.InstructionStep, error) {
	if s.recipes == nil {
		return nil, errors.NewServiceUnavailableError("recipe")
	}
	return s.recipes.RecipeInstructions(ctx, recipeID)
}

// IngredientNutrition looks up nutrition records for each ingredient.
func (s *Service) IngredientNutrition(ctx context.Context, ingredients []string) (map[string]nutrition.LookupResult, error) {
	if s.nutrition == nil {
		return nil, errors.NewServiceUnavailableError("nutrition")
	}
	return s.nutrition.IngredientNutrition(ctx, ingredients)
}

// ValidateRecipe re-checks a recipe's nutrient readings against the profile.
// Pure: no remote calls, no state.
func (s *Service) ValidateRecipe(nutrients []nutrition.Nutrient, profile health.Profile) recipe.ValidationResult {
	return recipe.Validate(nutrients, profile)
}

// SetConfidenceThreshold updates the vision confidence threshold at runtime.
func (s *Service) SetConfidenceThreshold(threshold float64) error {
	if s.vision == nil {
		return errors.NewServiceUnavailableError("vision")
	}
	return s.vision.SetConfidenceThreshold(threshold)
}

// Availability reports which backends are configured, for the health endpoint.
func (s *Service) Availability() map[string]bool {
	return map[string]bool{
		"vision":    s.vision != nil,
		"recipe":    s.recipes != nil,
		"nutrition": s.nutrition != nil,
	}
}

package kitchen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myboiiPrime/AI-food/internal/domain/detection"
	"github.com/myboiiPrime/AI-food/internal/domain/health"
	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
	"github.com/myboiiPrime/AI-food/internal/domain/recipe"
	"github.com/myboiiPrime/AI-food/pkg/errors"
)

// Stub backends

type stubVision struct {
	ingredients []string
	detections  []detection.Detection
	threshold   float64
	err         error
}

func (s *stubVision) DetectIngredients(ctx context.Context, image string) ([]string, error) {
	return s.ingredients, s.err
}

func (s *stubVision) DetectIngredientsDetailed(ctx context.Context, image string) ([]detection.Detection, error) {
	return s.detections, s.err
}

func (s *stubVision) SetConfidenceThreshold(threshold float64) error {
	s.threshold = threshold
	return nil
}

func (s *stubVision) ConfidenceThreshold() float64 { return s.threshold }

type stubRecipes struct {
	recipes    []recipe.Recipe
	err        error
	gotFilters health.FilterSet
	gotNumber  int
	gotIngreds []string
}

func (s *stubRecipes) SearchRecipes(ctx context.Context, ingredients []string, filters health.FilterSet, number int) ([]recipe.Recipe, error) {
	s.gotIngreds = ingredients
	s.gotFilters = filters
	s.gotNumber = number
	return s.recipes, s.err
}

func (s *stubRecipes) RecipeDetails(ctx context.Context, recipeID int64) (*recipe.Recipe, error) {
	return nil, s.err
}

func (s *stubRecipes) RecipeInstructions(ctx context.Context, recipeID int64) ([]recipe.InstructionStep, error) {
	return nil, s.err
}

type stubNutrition struct {
	results map[string]nutrition.LookupResult
	err     error
}

func (s *stubNutrition) IngredientNutrition(ctx context.Context, ingredients []string) (map[string]nutrition.LookupResult, error) {
	return s.results, s.err
}

func TestAnalyzeCart(t *testing.T) {
	recipes := &stubRecipes{
		recipes: []recipe.Recipe{{ID: 1, Title: "Tomato Soup"}},
	}
	svc := NewService(nil, recipes, nil, zap.NewNop())

	profile := health.Profile{Condition: health.ConditionDiabetes, Diet: "vegetarian"}
	analysis, err := svc.AnalyzeCart(context.Background(), []string{"tomato", "onion"}, profile)
	require.NoError(t, err)

	assert.Len(t, analysis.Recipes, 1)
	assert.Equal(t, "Tomato Soup", analysis.Recipes[0].Title)

	// Applied filters reported back to the caller match what the search saw
	assert.Equal(t, recipes.gotFilters, analysis.AppliedFilters)
	bound, ok := analysis.AppliedFilters.Bound(health.FilterMaxSugar)
	require.True(t, ok)
	assert.Equal(t, 5.0, bound)
	assert.Equal(t, "vegetarian", analysis.AppliedFilters[health.FilterDiet])

	assert.Equal(t, []string{"tomato", "onion"}, recipes.gotIngreds)
	assert.Equal(t, defaultRecipeCount, recipes.gotNumber)
}

func TestAnalyzeCartRecipesUnavailable(t *testing.T) {
	svc := NewService(nil, nil, nil, zap.NewNop())

	_, err := svc.AnalyzeCart(context.Background(), []string{"tomato"}, health.Profile{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeServiceUnavailable))
}

func TestDetectIngredientsUnavailable(t *testing.T) {
	svc := NewService(nil, nil, nil, zap.NewNop())

	_, err := svc.DetectIngredients(context.Background(), "image.jpg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeServiceUnavailable))

	_, err = svc.DetectIngredientsDetailed(context.Background(), "image.jpg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeServiceUnavailable))

	err = svc.SetConfidenceThreshold(0.7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeServiceUnavailable))
}

func TestDetectIngredientsPassThrough(t *testing.T) {
	vision := &stubVision{ingredients: []string{"tomato", "egg"}}
	svc := NewService(vision, nil, nil, zap.NewNop())

	ingredients, err := svc.DetectIngredients(context.Background(), "cart.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"tomato", "egg"}, ingredients)

	require.NoError(t, svc.SetConfidenceThreshold(0.8))
	assert.Equal(t, 0.8, vision.threshold)
}

func TestIngredientNutritionUnavailable(t *testing.T) {
	svc := NewService(nil, nil, nil, zap.NewNop())

	_, err := svc.IngredientNutrition(context.Background(), []string{"tomato"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeServiceUnavailable))
}

func TestValidateRecipeWorksWithoutBackends(t *testing.T) {
	svc := NewService(nil, nil, nil, zap.NewNop())

	result := svc.ValidateRecipe([]nutrition.Nutrient{
		{Name: "Sugar", Amount: 9, Unit: "g"},
	}, health.Profile{Condition: health.ConditionDiabetes})

	assert.False(t, result.Valid)
	assert.Contains(t, result.Warnings, "Sugar: 9g exceeds limit of 5g")
}

func TestAvailability(t *testing.T) {
	svc := NewService(&stubVision{}, nil, &stubNutrition{}, zap.NewNop())

	assert.Equal(t, map[string]bool{
		"vision":    true,
		"recipe":    false,
		"nutrition": true,
	}, svc.Availability())
}

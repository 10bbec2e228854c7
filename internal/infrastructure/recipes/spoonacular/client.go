// Package spoonacular implements the RecipeSearchService interface against
// the Spoonacular recipe API. The adapter is a thin formatter: one remote
// query per request, no retry, no caching.
package spoonacular

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/myboiiPrime/AI-food/internal/domain/health"
	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
	"github.com/myboiiPrime/AI-food/internal/domain/recipe"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/config"
	"github.com/myboiiPrime/AI-food/pkg/errors"
	"go.uber.org/zap"
)

// Nutrients carried into the formatted recipe schema. Everything else the
// API returns is dropped.
var keyNutrients = map[string]struct{}{
	"Calories":      {},
	"Protein":       {},
	"Carbohydrates": {},
	"Fat":           {},
	"Fiber":         {},
	"Sugar":         {},
	"Sodium":        {},
}

const summaryLimit = 200

// Client implements the RecipeSearchService interface
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new recipe search client
func NewClient(cfg config.RecipesConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("spoonacular-client"),
	}
}

// Raw API structures
type rawNutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type rawIngredient struct {
	Name string `json:"name"`
}

type rawRecipe struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Image          string `json:"image"`
	ReadyInMinutes int    `json:"readyInMinutes"`
	Servings       int    `json:"servings"`
	SourceURL      string `json:"sourceUrl"`
	Summary        string `json:"summary"`
	Nutrition      struct {
		Nutrients []rawNutrient `json:"nutrients"`
	} `json:"nutrition"`
	UsedIngredients   []rawIngredient `json:"usedIngredients"`
	MissedIngredients []rawIngredient `json:"missedIngredients"`
	Diets             []string        `json:"diets"`
	HealthScore       float64         `json:"healthScore"`
}

// SearchRecipes searches for recipes by ingredients with the health filters
// merged into the query parameters.
func (c *Client) SearchRecipes(ctx context.Context, ingredients []string, filters health.FilterSet, number int) ([]recipe.Recipe, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("includeIngredients", strings.Join(ingredients, ","))
	params.Set("number", strconv.Itoa(number))
	params.Set("addRecipeInformation", "true")
	params.Set("addRecipeNutrition", "true")
	params.Set("fillIngredients", "true")
	params.Set("sort", "max-used-ingredients")

	for key, value := range filters.QueryValues() {
		params.Set(key, value)
	}

	var result struct {
		Results []rawRecipe `json:"results"`
	}
	if err := c.getJSON(ctx, "/recipes/complexSearch", params, &result); err != nil {
		return nil, err
	}

	recipes := make([]recipe.Recipe, 0, len(result.Results))
	for _, raw := range result.Results {
		recipes = append(recipes, formatRecipe(raw))
	}

	c.logger.Debug("recipe search completed",
		zap.Int("ingredients", len(ingredients)),
		zap.Int("results", len(recipes)))

	return recipes, nil
}

// RecipeDetails fetches full information for a single recipe.
func (c *Client) RecipeDetails(ctx context.Context, recipeID int64) (*recipe.Recipe, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("includeNutrition", "true")

	var raw rawRecipe
	if err := c.getJSON(ctx, fmt.Sprintf("/recipes/%d/information", recipeID), params, &raw); err != nil {
		return nil, err
	}

	formatted := formatRecipe(raw)
	return &formatted, nil
}

// RecipeInstructions fetches step-by-step cooking instructions.
func (c *Client) RecipeInstructions(ctx context.Context, recipeID int64) ([]recipe.InstructionStep, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)

	var instructionSets []struct {
		Steps []struct {
			Number      int             `json:"number"`
			Step        string          `json:"step"`
			Ingredients []rawIngredient `json:"ingredients"`
			Equipment   []rawIngredient `json:"equipment"`
		} `json:"steps"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/recipes/%d/analyzedInstructions", recipeID), params, &instructionSets); err != nil {
		return nil, err
	}

	steps := []recipe.InstructionStep{}
	for _, set := range instructionSets {
		for _, step := range set.Steps {
			steps = append(steps, recipe.InstructionStep{
				Number:      step.Number,
				Step:        step.Step,
				Ingredients: ingredientNames(step.Ingredients),
				Equipment:   ingredientNames(step.Equipment),
			})
		}
	}

	return steps, nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewInternalError("failed to create recipe request").WithCause(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.NewExternalServiceError("recipe", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewExternalServiceError("recipe", err)
	}

	if resp.StatusCode != http.StatusOK {
		return errors.NewExternalServiceError("recipe",
			fmt.Errorf("recipe API returned status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewExternalServiceError("recipe", err)
	}

	return nil
}

// formatRecipe reshapes a raw API recipe into the stable internal schema
func formatRecipe(raw rawRecipe) recipe.Recipe {
	nutrients := make(map[string]nutrition.Nutrient)
	for _, n := range raw.Nutrition.Nutrients {
		if _, ok := keyNutrients[n.Name]; ok {
			nutrients[strings.ToLower(n.Name)] = nutrition.Nutrient{
				Name:   n.Name,
				Amount: n.Amount,
				Unit:   n.Unit,
			}
		}
	}

	summary := raw.Summary
	if len(summary) > summaryLimit {
		// Back off to a rune boundary so a multi-byte character straddling
		// the limit is dropped whole, not cut mid-rune.
		cut := summaryLimit
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut] + "..."
	}

	return recipe.Recipe{
		ID:                raw.ID,
		Title:             raw.Title,
		Image:             raw.Image,
		ReadyInMinutes:    raw.ReadyInMinutes,
		Servings:          raw.Servings,
		SourceURL:         raw.SourceURL,
		Summary:           summary,
		Nutrition:         nutrients,
		UsedIngredients:   ingredientNames(raw.UsedIngredients),
		MissedIngredients: ingredientNames(raw.MissedIngredients),
		Diets:             raw.Diets,
		HealthScore:       raw.HealthScore,
	}
}

func ingredientNames(ingredients []rawIngredient) []string {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, ing.Name)
	}
	return names
}

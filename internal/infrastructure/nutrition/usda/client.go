// Package usda implements the NutritionService interface against the
// FoodData Central API. Each ingredient costs two remote calls: a search to
// find the closest food match, then a detail fetch for its nutrient profile.
package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/config"
	"github.com/myboiiPrime/AI-food/internal/ports/outbound"
	"github.com/myboiiPrime/AI-food/pkg/errors"
	"go.uber.org/zap"
)

// Mapping from upstream nutrient names to the canonical lower-case names the
// validator understands. Nutrients outside this table are dropped.
var nutrientNames = map[string]string{
	"Energy":                       nutrition.NutrientCalories,
	"Protein":                      nutrition.NutrientProtein,
	"Total lipid (fat)":            nutrition.NutrientFat,
	"Carbohydrate, by difference":  nutrition.NutrientCarbohydrates,
	"Fiber, total dietary":         nutrition.NutrientFiber,
	"Sugars, total including NLEA": nutrition.NutrientSugar,
	"Sodium, Na":                   nutrition.NutrientSodium,
	"Cholesterol":                  nutrition.NutrientCholesterol,
	"Fatty acids, total saturated": nutrition.NutrientSaturatedFat,
}

// Client implements the NutritionService interface
type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *http.Client
	logger   *zap.Logger

	// cache is an optional read-through layer keyed by ingredient name.
	// A nil cache disables it entirely.
	cache    outbound.CacheRepository
	cacheTTL time.Duration
}

// NewClient creates a new nutrition lookup client. cache may be nil.
func NewClient(cfg config.NutritionConfig, cache outbound.CacheRepository, cacheTTL time.Duration, logger *zap.Logger) *Client {
	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = 1
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:   logger.Named("usda-client"),
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Raw API structures
type searchResponse struct {
	Foods []struct {
		FdcID       int64  `json:"fdcId"`
		Description string `json:"description"`
	} `json:"foods"`
}

type foodResponse struct {
	Description     string   `json:"description"`
	ServingSize     *float64 `json:"servingSize"`
	ServingSizeUnit string   `json:"servingSizeUnit"`
	FoodNutrients   []struct {
		Nutrient struct {
			Name     string `json:"name"`
			UnitName string `json:"unitName"`
		} `json:"nutrient"`
		Amount float64 `json:"amount"`
	} `json:"foodNutrients"`
}

// IngredientNutrition looks up each ingredient in turn. Per-ingredient
// failures land in the result record; the batch itself only fails when no
// work could be attempted at all.
func (c *Client) IngredientNutrition(ctx context.Context, ingredients []string) (map[string]nutrition.LookupResult, error) {
	results := make(map[string]nutrition.LookupResult, len(ingredients))

	for _, ingredient := range ingredients {
		name := strings.ToLower(strings.TrimSpace(ingredient))
		if name == "" {
			continue
		}
		if _, ok := results[name]; ok {
			continue
		}
		results[name] = c.lookupOne(ctx, name)
	}

	return results, nil
}

// lookupOne resolves a single ingredient, consulting the cache first.
func (c *Client) lookupOne(ctx context.Context, name string) nutrition.LookupResult {
	cacheKey := "nutrition:" + name

	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var cached nutrition.LookupResult
			if err := json.Unmarshal(data, &cached); err == nil {
				c.logger.Debug("nutrition cache hit", zap.String("ingredient", name))
				return cached
			}
		}
	}

	result := c.fetch(ctx, name)

	// Only successful lookups are cached; misses and failures stay cheap to
	// retry on the next request.
	if c.cache != nil && result.Found {
		if data, err := json.Marshal(result); err == nil {
			if err := c.cache.Set(ctx, cacheKey, data, c.cacheTTL); err != nil {
				c.logger.Warn("nutrition cache write failed",
					zap.String("ingredient", name), zap.Error(err))
			}
		}
	}

	return result
}

// fetch performs the search + detail round trip for one ingredient.
func (c *Client) fetch(ctx context.Context, name string) nutrition.LookupResult {
	fdcID, matched, err := c.searchFood(ctx, name)
	if err != nil {
		c.logger.Warn("nutrition search failed",
			zap.String("ingredient", name), zap.Error(err))
		return nutrition.LookupResult{Error: string(errors.GetCode(err))}
	}
	if fdcID == 0 {
		return nutrition.LookupResult{Found: false}
	}

	food, err := c.foodDetails(ctx, fdcID)
	if err != nil {
		c.logger.Warn("nutrition detail fetch failed",
			zap.String("ingredient", name), zap.Int64("fdc_id", fdcID), zap.Error(err))
		return nutrition.LookupResult{Error: string(errors.GetCode(err))}
	}

	return nutrition.LookupResult{
		Found:       true,
		MatchedFood: matched,
		Nutrition:   food,
	}
}

// searchFood returns the first matching food ID, or zero when nothing matched.
func (c *Client) searchFood(ctx context.Context, name string) (int64, string, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", name)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("dataType", "Foundation,SR Legacy")

	var result searchResponse
	if err := c.getJSON(ctx, "/foods/search", params, &result); err != nil {
		return 0, "", err
	}

	if len(result.Foods) == 0 {
		return 0, "", nil
	}
	return result.Foods[0].FdcID, result.Foods[0].Description, nil
}

// foodDetails fetches and formats the nutrient profile for a food ID.
func (c *Client) foodDetails(ctx context.Context, fdcID int64) (*nutrition.FoodNutrition, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)

	var raw foodResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/food/%d", fdcID), params, &raw); err != nil {
		return nil, err
	}

	nutrients := make(map[string]nutrition.Nutrient)
	for _, fn := range raw.FoodNutrients {
		canonical, ok := nutrientNames[fn.Nutrient.Name]
		if !ok {
			continue
		}
		nutrients[canonical] = nutrition.Nutrient{
			Name:   canonical,
			Amount: fn.Amount,
			Unit:   strings.ToLower(fn.Nutrient.UnitName),
		}
	}

	return &nutrition.FoodNutrition{
		Description:     raw.Description,
		ServingSize:     raw.ServingSize,
		ServingSizeUnit: raw.ServingSizeUnit,
		Nutrients:       nutrients,
	}, nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewInternalError("failed to create nutrition request").WithCause(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.NewExternalServiceError("nutrition", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewExternalServiceError("nutrition", err)
	}

	if resp.StatusCode != http.StatusOK {
		return errors.NewExternalServiceError("nutrition",
			fmt.Errorf("nutrition API returned status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewExternalServiceError("nutrition", err)
	}

	return nil
}

package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myboiiPrime/AI-food/internal/application/kitchen"
	"github.com/myboiiPrime/AI-food/internal/domain/detection"
	"github.com/myboiiPrime/AI-food/internal/domain/health"
	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
	"github.com/myboiiPrime/AI-food/internal/domain/recipe"
	"github.com/myboiiPrime/AI-food/pkg/errors"
)

// stubKitchen implements inbound.KitchenService for handler tests.
type stubKitchen struct {
	ingredients []string
	detections  []detection.Detection
	analysis    *kitchen.CartAnalysis
	lookups     map[string]nutrition.LookupResult
	err         error

	gotImage     string
	gotThreshold float64
}

func (s *stubKitchen) AnalyzeCart(ctx context.Context, ingredients []string, profile health.Profile) (*kitchen.CartAnalysis, error) {
	return s.analysis, s.err
}

func (s *stubKitchen) DetectIngredients(ctx context.Context, image string) ([]string, error) {
	s.gotImage = image
	return s.ingredients, s.err
}

func (s *stubKitchen) DetectIngredientsDetailed(ctx context.Context, image string) ([]detection.Detection, error) {
	s.gotImage = image
	return s.detections, s.err
}

func (s *stubKitchen) RecipeDetails(ctx context.Context, recipeID int64) (*recipe.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &recipe.Recipe{ID: recipeID, Title: "Shakshuka"}, nil
}

func (s *stubKitchen) RecipeInstructions(ctx context.Context, recipeID int64) ([]recipe.InstructionStep, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []recipe.InstructionStep{{Number: 1, Step: "Dice the tomatoes."}}, nil
}

func (s *stubKitchen) IngredientNutrition(ctx context.Context, ingredients []string) (map[string]nutrition.LookupResult, error) {
	return s.lookups, s.err
}

func (s *stubKitchen) ValidateRecipe(nutrients []nutrition.Nutrient, profile health.Profile) recipe.ValidationResult {
	return recipe.Validate(nutrients, profile)
}

func (s *stubKitchen) SetConfidenceThreshold(threshold float64) error {
	if s.err != nil {
		return s.err
	}
	s.gotThreshold = threshold
	return nil
}

func (s *stubKitchen) Availability() map[string]bool {
	return map[string]bool{"vision": true, "recipe": false, "nutrition": true}
}

func newHandlers(stub *stubKitchen) *APIHandlers {
	return NewAPIHandlers(stub, zap.NewNop())
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func TestHealth(t *testing.T) {
	h := newHandlers(&stubKitchen{})

	rec, body := doJSON(t, h.Health, http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	services := body["services"].(map[string]interface{})
	assert.Equal(t, true, services["vision"])
	assert.Equal(t, false, services["recipe"])
}

func TestDetect(t *testing.T) {
	stub := &stubKitchen{ingredients: []string{"tomato", "onion"}}
	h := newHandlers(stub)

	image := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	rec, body := doJSON(t, h.Detect, http.MethodPost, "/api/v1/detect",
		map[string]string{"image": image})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []interface{}{"tomato", "onion"}, body["ingredients"])

	// The service received a temp file path, not the base64 payload
	assert.NotEmpty(t, stub.gotImage)
	assert.NotContains(t, stub.gotImage, image)
}

func TestDetectInvalidBase64(t *testing.T) {
	h := newHandlers(&stubKitchen{})

	rec, body := doJSON(t, h.Detect, http.MethodPost, "/api/v1/detect",
		map[string]string{"image": "not base64!!!"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestDetectMissingField(t *testing.T) {
	h := newHandlers(&stubKitchen{})

	rec, body := doJSON(t, h.Detect, http.MethodPost, "/api/v1/detect",
		map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestDetectURL(t *testing.T) {
	stub := &stubKitchen{ingredients: []string{"garlic"}}
	h := newHandlers(stub)

	rec, body := doJSON(t, h.DetectURL, http.MethodPost, "/api/v1/detect-url",
		map[string]string{"image_url": "https://example.com/cart.jpg"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"garlic"}, body["ingredients"])
	assert.Equal(t, "https://example.com/cart.jpg", stub.gotImage)
}

func TestDetectURLRejectsNonURL(t *testing.T) {
	h := newHandlers(&stubKitchen{})

	rec, _ := doJSON(t, h.DetectURL, http.MethodPost, "/api/v1/detect-url",
		map[string]string{"image_url": "not-a-url"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectDetails(t *testing.T) {
	stub := &stubKitchen{detections: []detection.Detection{
		{Name: "tomato", Confidence: 0.916, BBox: detection.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}},
	}}
	h := newHandlers(stub)

	rec, body := doJSON(t, h.DetectDetails, http.MethodPost, "/api/v1/detect/details",
		map[string]string{"image_url": "https://example.com/cart.jpg"})

	assert.Equal(t, http.StatusOK, rec.Code)
	detections := body["detections"].([]interface{})
	require.Len(t, detections, 1)
	first := detections[0].(map[string]interface{})
	assert.Equal(t, "tomato", first["name"])
	assert.Equal(t, 0.916, first["confidence"])
}

func TestAnalyze(t *testing.T) {
	stub := &stubKitchen{analysis: &kitchen.CartAnalysis{
		Recipes:        []recipe.Recipe{{ID: 7, Title: "Shakshuka"}},
		AppliedFilters: health.FilterSet{"maxSugar": 5.0},
	}}
	h := newHandlers(stub)

	rec, body := doJSON(t, h.Analyze, http.MethodPost, "/api/v1/analyze",
		map[string]interface{}{
			"ingredients": []string{"tomato", "egg"},
			"user_profile": map[string]interface{}{
				"health_constraints": map[string]interface{}{"condition": "diabetes"},
			},
		})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	recipes := body["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	assert.Equal(t, "Shakshuka", recipes[0].(map[string]interface{})["title"])

	filters := body["applied_filters"].(map[string]interface{})
	assert.Equal(t, 5.0, filters["maxSugar"])
}

func TestAnalyzeMissingIngredients(t *testing.T) {
	h := newHandlers(&stubKitchen{})

	rec, _ := doJSON(t, h.Analyze, http.MethodPost, "/api/v1/analyze",
		map[string]interface{}{"ingredients": []string{}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecipeDetails(t *testing.T) {
	h := newHandlers(&stubKitchen{})

	router := chi.NewRouter()
	router.Get("/api/v1/recipes/{recipeID}", h.RecipeDetails)
	router.Get("/api/v1/recipes/{recipeID}/instructions", h.RecipeInstructions)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes/101", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Shakshuka", body["recipe"].(map[string]interface{})["title"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/recipes/101/instructions", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	steps := body["instructions"].([]interface{})
	require.Len(t, steps, 1)

	// Non-numeric id is rejected before the service is called
	req = httptest.NewRequest(http.MethodGet, "/api/v1/recipes/abc", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNutrition(t *testing.T) {
	stub := &stubKitchen{lookups: map[string]nutrition.LookupResult{
		"tomato": {Found: true, MatchedFood: "Tomatoes, red, ripe, raw"},
	}}
	h := newHandlers(stub)

	rec, body := doJSON(t, h.Nutrition, http.MethodPost, "/api/v1/nutrition",
		map[string]interface{}{"ingredients": []string{"tomato"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	results := body["nutrition"].(map[string]interface{})
	tomato := results["tomato"].(map[string]interface{})
	assert.Equal(t, true, tomato["found"])
}

func TestValidateEndpoint(t *testing.T) {
	h := newHandlers(&stubKitchen{})

	rec, body := doJSON(t, h.Validate, http.MethodPost, "/api/v1/validate",
		map[string]interface{}{
			"nutrients": []map[string]interface{}{
				{"name": "Sugar", "amount": 9, "unit": "g"},
			},
			"user_profile": map[string]interface{}{
				"health_constraints": map[string]interface{}{"condition": "diabetes"},
			},
		})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["valid"])
	warnings := body["warnings"].([]interface{})
	assert.Contains(t, warnings, "Sugar: 9g exceeds limit of 5g")
}

func TestSetConfidenceThresholdEndpoint(t *testing.T) {
	stub := &stubKitchen{}
	h := newHandlers(stub)

	rec, body := doJSON(t, h.SetConfidenceThreshold, http.MethodPut, "/api/v1/config/confidence-threshold",
		map[string]interface{}{"threshold": 0.75})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.75, body["threshold"])
	assert.Equal(t, 0.75, stub.gotThreshold)
}

func TestSetConfidenceThresholdZeroAccepted(t *testing.T) {
	// Pointer DTO distinguishes an explicit 0 from a missing field.
	stub := &stubKitchen{}
	h := newHandlers(stub)

	rec, _ := doJSON(t, h.SetConfidenceThreshold, http.MethodPut, "/api/v1/config/confidence-threshold",
		map[string]interface{}{"threshold": 0})

	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h.SetConfidenceThreshold, http.MethodPut, "/api/v1/config/confidence-threshold",
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackendErrorsMapToStatusAndHideDetail(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unavailable", errors.NewServiceUnavailableError("vision"), http.StatusServiceUnavailable},
		{"remote failure", errors.NewExternalServiceError("vision", assert.AnError), http.StatusServiceUnavailable},
		{"cold start exhausted", errors.NewModelInitializingError(3), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers(&stubKitchen{err: tt.err})

			rec, body := doJSON(t, h.DetectURL, http.MethodPost, "/api/v1/detect-url",
				map[string]string{"image_url": "https://example.com/cart.jpg"})

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])

			// The envelope carries a code and message, never backend detail
			errBody := body["error"].(map[string]interface{})
			assert.NotEmpty(t, errBody["code"])
			assert.NotContains(t, errBody, "details")
			assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
		})
	}
}

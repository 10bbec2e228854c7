// Package handlers contains the JSON API handlers. Handlers are thin: decode
// and validate the request, drive the kitchen service, encode the envelope.
package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/myboiiPrime/AI-food/internal/domain/health"
	"github.com/myboiiPrime/AI-food/internal/domain/nutrition"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/http/middleware"
	"github.com/myboiiPrime/AI-food/internal/ports/inbound"
	"github.com/myboiiPrime/AI-food/pkg/errors"
)

// APIHandlers handles the /api/v1 JSON endpoints
type APIHandlers struct {
	kitchen  inbound.KitchenService
	logger   *zap.Logger
	validate *validator.Validate
}

// NewAPIHandlers creates new API handlers
func NewAPIHandlers(kitchen inbound.KitchenService, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		kitchen:  kitchen,
		logger:   logger.Named("api"),
		validate: validator.New(),
	}
}

// Request DTOs

// UserProfile mirrors the client-side profile document. Health constraints
// are nested to leave room for non-health profile fields later.
type UserProfile struct {
	HealthConstraints health.Profile `json:"health_constraints"`
}

type detectRequest struct {
	Image string `json:"image" validate:"required"`
}

type detectURLRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}

type analyzeRequest struct {
	Ingredients []string    `json:"ingredients" validate:"required,min=1"`
	UserProfile UserProfile `json:"user_profile"`
}

type nutritionRequest struct {
	Ingredients []string `json:"ingredients" validate:"required,min=1"`
}

type validateRequest struct {
	Nutrients   []nutrition.Nutrient `json:"nutrients" validate:"required"`
	UserProfile UserProfile          `json:"user_profile"`
}

type thresholdRequest struct {
	Threshold *float64 `json:"threshold" validate:"required"`
}

// Health returns service availability per backend.
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"services": h.kitchen.Availability(),
	})
}

// Detect runs plain detection on a base64-encoded image. The image is spooled
// to a temp file so the vision client sees a regular path.
func (h *APIHandlers) Detect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if !h.decode(w, r, &req) {
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		h.writeError(w, r, errors.NewBadRequestError("image must be base64 encoded"))
		return
	}

	tmpFile, err := os.CreateTemp("", "detect-*.jpg")
	if err != nil {
		h.writeError(w, r, errors.NewInternalError("failed to buffer image").WithCause(err))
		return
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(imageData); err != nil {
		tmpFile.Close()
		h.writeError(w, r, errors.NewInternalError("failed to buffer image").WithCause(err))
		return
	}
	tmpFile.Close()

	ingredients, err := h.kitchen.DetectIngredients(r.Context(), tmpPath)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"ingredients": ingredients,
	})
}

// DetectURL runs plain detection on an image URL.
func (h *APIHandlers) DetectURL(w http.ResponseWriter, r *http.Request) {
	var req detectURLRequest
	if !h.decode(w, r, &req) {
		return
	}

	ingredients, err := h.kitchen.DetectIngredients(r.Context(), req.ImageURL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"ingredients": ingredients,
	})
}

// DetectDetails returns per-prediction detections with confidence and bbox.
func (h *APIHandlers) DetectDetails(w http.ResponseWriter, r *http.Request) {
	var req detectURLRequest
	if !h.decode(w, r, &req) {
		return
	}

	detections, err := h.kitchen.DetectIngredientsDetailed(r.Context(), req.ImageURL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"detections": detections,
	})
}

// Analyze searches recipes for the ingredients with health filters applied.
func (h *APIHandlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}

	analysis, err := h.kitchen.AnalyzeCart(r.Context(), req.Ingredients, req.UserProfile.HealthConstraints)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"recipes":         analysis.Recipes,
		"applied_filters": analysis.AppliedFilters,
	})
}

// RecipeDetails returns full information for one recipe.
func (h *APIHandlers) RecipeDetails(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	details, err := h.kitchen.RecipeDetails(r.Context(), recipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"recipe":  details,
	})
}

// RecipeInstructions returns the step-by-step instructions for one recipe.
func (h *APIHandlers) RecipeInstructions(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	steps, err := h.kitchen.RecipeInstructions(r.Context(), recipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"instructions": steps,
	})
}

func (h *APIHandlers) recipeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "recipeID"), 10, 64)
	if err != nil || id < 1 {
		h.writeError(w, r, errors.NewBadRequestError("recipe id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// Nutrition looks up per-ingredient nutrition records.
func (h *APIHandlers) Nutrition(w http.ResponseWriter, r *http.Request) {
	var req nutritionRequest
	if !h.decode(w, r, &req) {
		return
	}

	results, err := h.kitchen.IngredientNutrition(r.Context(), req.Ingredients)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"nutrition": results,
	})
}

// Validate re-checks nutrient readings against a health profile. Pure, no
// remote calls.
func (h *APIHandlers) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := h.kitchen.ValidateRecipe(req.Nutrients, req.UserProfile.HealthConstraints)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"valid":    result.Valid,
		"warnings": result.Warnings,
	})
}

// SetConfidenceThreshold updates the vision confidence threshold at runtime.
func (h *APIHandlers) SetConfidenceThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.kitchen.SetConfidenceThreshold(*req.Threshold); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"threshold": *req.Threshold,
	})
}

// decode parses and validates the request body, writing the error response
// itself on failure.
func (h *APIHandlers) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return false
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, errors.NewValidationError(err.Error()))
		return false
	}

	return true
}

// writeError maps any error to the envelope. Remote failure detail never
// reaches the caller; the structured error is logged instead.
func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.RequestIDFromContext(r.Context())
	appErr := errors.Wrap(err, "request failed")

	h.logger.Error("request failed",
		zap.String("request_id", requestID),
		zap.String("code", string(appErr.Code)),
		zap.String("message", appErr.Message),
		zap.String("details", appErr.Details),
		zap.Error(appErr.Cause))

	resp := errors.ToErrorResponse(appErr, requestID)
	writeJSON(w, appErr.StatusCode(), map[string]interface{}{
		"success": false,
		"error":   resp.Error,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

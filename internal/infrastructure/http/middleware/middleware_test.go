package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/myboiiPrime/AI-food/internal/infrastructure/config"
)

func TestLoggerMetricsUseRoutePattern(t *testing.T) {
	mw := New(&config.Config{}, zap.NewNop())

	router := chi.NewRouter()
	router.Use(mw.Logger)
	router.Get("/api/v1/recipes/{recipeID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/v1/recipes/101", "/api/v1/recipes/202", "/api/v1/recipes/303"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// All three requests land on one label set keyed by the route pattern,
	// not one per recipe ID.
	pattern := mw.metrics.requestCount.WithLabelValues("GET", "/api/v1/recipes/{recipeID}", "200")
	assert.Equal(t, 3.0, testutil.ToFloat64(pattern))

	raw := mw.metrics.requestCount.WithLabelValues("GET", "/api/v1/recipes/101", "200")
	assert.Equal(t, 0.0, testutil.ToFloat64(raw))
}

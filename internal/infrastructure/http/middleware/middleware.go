// Package middleware provides HTTP middleware components
// following the Chain of Responsibility pattern
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/myboiiPrime/AI-food/internal/infrastructure/config"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDFromContext returns the request ID set by the RequestID middleware.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Middleware provides all middleware functions
type Middleware struct {
	config  *config.Config
	logger  *zap.Logger
	limiter *rate.Limiter
	metrics *Metrics
}

// New creates a new middleware instance
func New(cfg *config.Config, logger *zap.Logger) *Middleware {
	limiter := rate.NewLimiter(
		rate.Limit(cfg.RateLimit.RequestsPerMin)/60,
		cfg.RateLimit.BurstSize,
	)

	return &Middleware{
		config:  cfg,
		logger:  logger,
		limiter: limiter,
		metrics: NewMetrics(),
	}
}

// statusWriter captures the response status code for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// RequestID adds a unique request ID to the context and response header.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logger provides structured logging for requests
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		// Health probes would drown out everything else
		if r.URL.Path == "/api/v1/health" {
			return
		}

		latency := time.Since(start)
		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("ip", r.RemoteAddr),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("user_agent", r.UserAgent()),
		}

		switch {
		case status >= 500:
			m.logger.Error("Server error", fields...)
		case status >= 400:
			m.logger.Warn("Client error", fields...)
		default:
			m.logger.Info("Request completed", fields...)
		}

		// Metrics are labeled with the route pattern, not the raw path, so
		// parameterized routes stay one label set.
		m.metrics.RecordRequest(r.Method, routePattern(r), status, latency)
	})
}

// Recovery recovers from panics and returns 500 error
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				m.logger.Error("Panic recovered",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintf(w, `{"success":false,"error":"Internal server error","request_id":%q}`,
					RequestIDFromContext(r.Context()))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// CORS handles Cross-Origin Resource Sharing
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Server.EnableCORS {
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		if m.isOriginAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit implements rate limiting
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.RateLimit.Enable {
			next.ServeHTTP(w, r)
			return
		}

		if !m.limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"success":false,"error":"Rate limit exceeded"}`)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Security adds security headers
func (m *Middleware) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if m.config.IsProduction() {
			w.Header().Set("Content-Security-Policy", "default-src 'self'")
		}

		next.ServeHTTP(w, r)
	})
}

// routePattern returns the matched chi route pattern, falling back to the
// raw path when the request never reached the router (or missed every route).
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// isOriginAllowed checks if origin is in allowed list
func (m *Middleware) isOriginAllowed(origin string) bool {
	// Allow all origins in development
	if m.config.IsDevelopment() {
		return true
	}

	for _, allowed := range m.config.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// Metrics for monitoring
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
}

// NewMetrics creates new metrics
func NewMetrics() *Metrics {
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	prometheus.MustRegister(requestDuration, requestCount)

	return &Metrics{
		requestDuration: requestDuration,
		requestCount:    requestCount,
	}
}

// RecordRequest records request metrics
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	statusStr := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(method, path, statusStr).Inc()
}

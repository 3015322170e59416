// Package api provides the JSON REST handlers for BookGate.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/book-gate/bookgate/internal/adapter/outbound/datafile"
	"github.com/book-gate/bookgate/internal/adapter/outbound/reqlog"
	"github.com/book-gate/bookgate/internal/adapter/outbound/scraper"
	"github.com/book-gate/bookgate/internal/domain/auth"
	"github.com/book-gate/bookgate/internal/domain/book"
	"github.com/book-gate/bookgate/internal/service"
)

// Error kinds surfaced in JSON error bodies. Clients can switch on kind
// without parsing the message.
const (
	kindNotFound     = "not_found"
	kindInvalidRange = "invalid_range"
	kindValidation   = "validation"
	kindUnauthorized = "unauthorized"
	kindForbidden    = "forbidden"
	kindRateLimited  = "rate_limited"
	kindInternal     = "internal"
)

// Handler provides the JSON API endpoints.
type Handler struct {
	catalog     *service.CatalogService
	authService *service.AuthService
	mlService   *service.MLService
	stats       *service.StatsService
	store       *datafile.Store
	runner      *scraper.Runner
	requestLog  *reqlog.FileStore
	metrics     *Metrics
	registry    *prometheus.Registry
	rateLimit   rateLimitSettings
	logger      *slog.Logger
	startTime   time.Time
}

type rateLimitSettings struct {
	enabled     bool
	maxRequests int
	window      time.Duration
}

// Option configures a Handler dependency.
type Option func(*Handler)

// WithCatalog sets the query engine.
func WithCatalog(s *service.CatalogService) Option {
	return func(h *Handler) { h.catalog = s }
}

// WithAuthService sets the token service.
func WithAuthService(s *service.AuthService) Option {
	return func(h *Handler) { h.authService = s }
}

// WithMLService sets the feature projection service.
func WithMLService(s *service.MLService) Option {
	return func(h *Handler) { h.mlService = s }
}

// WithStatsService sets the request statistics accumulator.
func WithStatsService(s *service.StatsService) Option {
	return func(h *Handler) { h.stats = s }
}

// WithStore sets the dataset store used by health, get-by-id, and reload.
func WithStore(s *datafile.Store) Option {
	return func(h *Handler) { h.store = s }
}

// WithScraperRunner sets the external scraper runner.
func WithScraperRunner(r *scraper.Runner) Option {
	return func(h *Handler) { h.runner = r }
}

// WithRequestLog sets the request log store backing /logs/recent.
func WithRequestLog(s *reqlog.FileStore) Option {
	return func(h *Handler) { h.requestLog = s }
}

// WithRateLimit enables per-IP rate limiting on the API.
func WithRateLimit(maxRequests int, window time.Duration) Option {
	return func(h *Handler) {
		h.rateLimit = rateLimitSettings{enabled: true, maxRequests: maxRequests, window: window}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a Handler with the given options.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		logger:    slog.Default(),
		registry:  prometheus.NewRegistry(),
		startTime: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.metrics = NewMetrics(h.registry)
	return h
}

// Routes returns an http.Handler with all API routes registered and the
// middleware chain applied (outermost first): metrics, request ID, request
// logging, rate limit.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Authentication.
	mux.HandleFunc("POST /api/v1/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.handleRefresh)

	// Public catalogue reads.
	mux.HandleFunc("GET /api/v1/books", h.handleListBooks)
	mux.HandleFunc("GET /api/v1/books/search", h.handleSearchBooks)
	mux.HandleFunc("GET /api/v1/books/top-rated", h.handleTopRated)
	mux.HandleFunc("GET /api/v1/books/price-range", h.handlePriceRange)
	mux.HandleFunc("GET /api/v1/books/{id}", h.handleGetBook)
	mux.HandleFunc("GET /api/v1/categories", h.handleListCategories)

	// Statistics and monitoring.
	mux.HandleFunc("GET /api/v1/stats/overview", h.handleStatsOverview)
	mux.HandleFunc("GET /api/v1/stats/categories", h.handleStatsCategories)
	mux.HandleFunc("GET /api/v1/health", h.handleHealth)
	mux.HandleFunc("GET /api/v1/metrics", h.handleMetricsSnapshot)
	mux.HandleFunc("GET /api/v1/logs/recent", h.handleRecentLogs)

	// ML placeholder endpoints.
	mux.HandleFunc("GET /api/v1/ml/features", h.handleMLFeatures)
	mux.HandleFunc("GET /api/v1/ml/training-data", h.handleMLTrainingData)
	mux.HandleFunc("POST /api/v1/ml/predictions", h.handleMLPrediction)

	// Admin operations require an access token with the admin role.
	mux.Handle("POST /api/v1/scraping/trigger", h.requireRole(auth.RoleAdmin, http.HandlerFunc(h.handleScrapeTrigger)))
	mux.Handle("POST /api/v1/scraping/reload", h.requireRole(auth.RoleAdmin, http.HandlerFunc(h.handleReload)))

	// Prometheus exposition, outside the /api/v1 prefix.
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))

	var handler http.Handler = mux
	if h.rateLimit.enabled {
		handler = rateLimitMiddleware(h.rateLimit.maxRequests, h.rateLimit.window, handler)
	}
	handler = h.requestLogMiddleware(handler)
	handler = RequestIDMiddleware(h.logger)(handler)
	handler = MetricsMiddleware(h.metrics, h.stats)(handler)
	return handler
}

// --- JSON helpers ---

// respondJSON writes a JSON response with the given status code and data.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorBody is the structured error payload: a machine-readable kind plus a
// human-readable message.
type errorBody struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// respondError writes a structured JSON error response.
func (h *Handler) respondError(w http.ResponseWriter, status int, kind, message string) {
	h.respondJSON(w, status, errorBody{Kind: kind, Error: message})
}

// respondDomainError maps domain errors onto the HTTP error taxonomy.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound):
		h.respondError(w, http.StatusNotFound, kindNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidRange):
		h.respondError(w, http.StatusUnprocessableEntity, kindInvalidRange, err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		h.respondError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or expired credentials")
	case errors.Is(err, auth.ErrForbidden):
		h.respondError(w, http.StatusForbidden, kindForbidden, "insufficient role")
	default:
		h.logger.Error("internal error", "error", err)
		h.respondError(w, http.StatusInternalServerError, kindInternal, err.Error())
	}
}

// readJSON decodes the request body into v.
func (h *Handler) readJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// --- query parameter helpers ---

// queryInt parses an optional integer query parameter. A missing parameter
// returns def; a malformed value returns an error the caller maps to 422.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}

// queryIntPtr parses an optional integer query parameter, returning nil
// when absent.
func queryIntPtr(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New(name + " must be an integer")
	}
	return &v, nil
}

// queryFloat parses a required float query parameter.
func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New(name + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return v, nil
}

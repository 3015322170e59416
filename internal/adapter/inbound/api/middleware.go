package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/book-gate/bookgate/internal/adapter/outbound/reqlog"
	"github.com/book-gate/bookgate/internal/service"
)

// requestIDContextKey is the type for the request ID context key.
type requestIDContextKey struct{}

// loggerContextKey is the type for the enriched logger context key.
type loggerContextKey struct{}

// RequestIDMiddleware extracts or generates a request ID and enriches the
// logger. The request ID is echoed as an X-Request-ID response header for
// correlation.
func RequestIDMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			enriched := logger.With("request_id", requestID)

			ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
			ctx = context.WithValue(ctx, loggerContextKey{}, enriched)

			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext retrieves the request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// LoggerFromContext retrieves the enriched logger from context.
// Returns slog.Default() if no logger is in context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush delegates to the underlying ResponseWriter if it supports
// http.Flusher.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// statusToLabel converts an HTTP status code into an ok/error metric label.
func statusToLabel(code int) string {
	if code >= 200 && code < 400 {
		return "ok"
	}
	return "error"
}

// MetricsMiddleware records request duration and status into both the
// Prometheus metrics and the JSON stats accumulator. It skips the
// exposition endpoints themselves so scraping does not inflate the figures.
func MetricsMiddleware(metrics *Metrics, stats *service.StatsService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" || r.URL.Path == "/api/v1/metrics" || r.URL.Path == "/api/v1/health" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			duration := time.Since(start)

			metrics.RequestDuration.WithLabelValues(r.Method).Observe(duration.Seconds())
			metrics.RequestsTotal.WithLabelValues(r.Method, statusToLabel(wrapped.status)).Inc()
			if stats != nil {
				stats.Record(wrapped.status, duration)
			}
		})
	}
}

// requestLogMiddleware appends one record per completed request to the
// request log store. Exposition and log-read endpoints are skipped so
// polling them does not flood the log.
func (h *Handler) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.requestLog == nil || r.URL.Path == "/metrics" || r.URL.Path == "/api/v1/logs/recent" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		h.requestLog.Append(reqlog.Record{
			Timestamp:  start.UTC(),
			RequestID:  RequestIDFromContext(r.Context()),
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     wrapped.status,
			DurationMS: float64(time.Since(start).Microseconds()) / 1000,
			RemoteIP:   ip,
		})
	})
}

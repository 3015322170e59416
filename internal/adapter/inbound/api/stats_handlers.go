package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/book-gate/bookgate/internal/adapter/outbound/reqlog"
	"github.com/book-gate/bookgate/internal/service"
)

// handleStatsOverview returns collection-level aggregates.
func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.catalog.Overview())
}

// CategoryStatsResponse is the payload of GET /stats/categories.
type CategoryStatsResponse struct {
	TotalCategories int                     `json:"total_categories"`
	Stats           []service.CategoryStats `json:"stats"`
}

// handleStatsCategories returns per-category aggregates.
func (h *Handler) handleStatsCategories(w http.ResponseWriter, r *http.Request) {
	stats := h.catalog.StatsByCategory()
	h.respondJSON(w, http.StatusOK, CategoryStatsResponse{TotalCategories: len(stats), Stats: stats})
}

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Checks    map[string]any `json:"checks"`
}

// handleHealth reports dataset availability. A loaded snapshot, even an
// empty one, counts as healthy; "unhealthy" means no snapshot at all.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]any)
	status := "healthy"

	snap := h.store.Snapshot()
	if snap == nil {
		status = "unhealthy"
		checks["dataset"] = "not loaded"
	} else {
		checks["dataset"] = "ok"
		checks["total_books"] = snap.Len()
		checks["fingerprint"] = fmt.Sprintf("%016x", snap.Fingerprint())
		checks["loaded_at"] = snap.LoadedAt().Format(time.RFC3339)
	}
	checks["uptime_seconds"] = int(time.Since(h.startTime).Seconds())

	h.respondJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// handleMetricsSnapshot returns the process-lifetime JSON metrics snapshot:
// request count, error rate, and latency percentiles. The Prometheus
// exposition lives at /metrics.
func (h *Handler) handleMetricsSnapshot(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.stats.GetStats())
}

// RecentLogsResponse is the payload of GET /logs/recent.
type RecentLogsResponse struct {
	Total int             `json:"total"`
	Logs  []reqlog.Record `json:"logs"`
}

// Bounds for the lines query parameter of /logs/recent.
const (
	defaultLogLines = 50
	maxLogLines     = 1000
)

// handleRecentLogs returns the most recent request log records.
func (h *Handler) handleRecentLogs(w http.ResponseWriter, r *http.Request) {
	lines, err := queryInt(r, "lines", defaultLogLines)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, err.Error())
		return
	}
	if lines < 1 || lines > maxLogLines {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, fmt.Sprintf("lines must be between 1 and %d", maxLogLines))
		return
	}

	records := h.requestLog.Recent(lines)
	h.respondJSON(w, http.StatusOK, RecentLogsResponse{Total: len(records), Logs: records})
}

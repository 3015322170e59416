package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/book-gate/bookgate/internal/adapter/outbound/scraper"
)

// ScrapingResponse is the payload of the admin scraping endpoints.
type ScrapingResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	TotalBooks int    `json:"total_books"`
	Changed    bool   `json:"changed"`
	Timestamp  string `json:"timestamp"`
}

// handleScrapeTrigger runs the external scraper, then reloads the dataset.
// Requires the admin role (enforced by requireRole in Routes).
func (h *Handler) handleScrapeTrigger(w http.ResponseWriter, r *http.Request) {
	maxPages, err := queryInt(r, "max_pages", 3)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, err.Error())
		return
	}
	if maxPages < 1 {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "max_pages must be at least 1")
		return
	}

	if claims, ok := ClaimsFromContext(r.Context()); ok {
		h.logger.Info("scrape triggered", "username", claims.Subject, "max_pages", maxPages)
	}

	if err := h.runner.Run(r.Context(), maxPages); err != nil {
		switch {
		case errors.Is(err, scraper.ErrNotConfigured):
			h.respondError(w, http.StatusServiceUnavailable, kindInternal, "scraper is not configured")
		case errors.Is(err, scraper.ErrAlreadyRunning):
			h.respondError(w, http.StatusConflict, kindInternal, "a scrape is already in progress")
		default:
			h.respondError(w, http.StatusInternalServerError, kindInternal, err.Error())
		}
		return
	}

	h.reloadAndRespond(w, r, "scraping finished")
}

// handleReload re-reads the dataset file. On failure the previous snapshot
// stays live and the error goes only to the admin caller.
func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		h.logger.Info("reload triggered", "username", claims.Subject)
	}
	h.reloadAndRespond(w, r, "dataset reloaded")
}

func (h *Handler) reloadAndRespond(w http.ResponseWriter, r *http.Request, message string) {
	snap, changed, err := h.store.Reload(r.Context())
	if err != nil {
		h.metrics.Reloads.WithLabelValues("error").Inc()
		h.respondError(w, http.StatusInternalServerError, kindInternal,
			fmt.Sprintf("reload failed, previous dataset still serving: %v", err))
		return
	}
	h.metrics.Reloads.WithLabelValues("ok").Inc()
	h.metrics.DatasetBooks.Set(float64(snap.Len()))

	h.respondJSON(w, http.StatusOK, ScrapingResponse{
		Status:     "success",
		Message:    fmt.Sprintf("%s: %d books loaded", message, snap.Len()),
		TotalBooks: snap.Len(),
		Changed:    changed,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

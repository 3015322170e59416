package api

import (
	"net/http"
	"strconv"

	"github.com/book-gate/bookgate/internal/domain/book"
	"github.com/book-gate/bookgate/internal/service"
)

// Pagination limits for GET /books.
const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
	defaultTopRated  = 10
)

// handleListBooks returns a page of the catalogue in load order.
func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, err.Error())
		return
	}
	if offset < 0 || limit < 0 {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "offset and limit must be non-negative")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	h.respondJSON(w, http.StatusOK, nonNil(h.catalog.Paginate(offset, limit)))
}

// handleGetBook returns a single book by its load-order identifier.
func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "book id must be an integer")
		return
	}
	b, err := h.store.Get(id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, b)
}

// handleSearchBooks filters by optional title/category substring and
// inclusive rating bounds. No filters returns the full dataset.
func (h *Handler) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	minRating, err := queryIntPtr(r, "min_rating")
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, err.Error())
		return
	}
	maxRating, err := queryIntPtr(r, "max_rating")
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, err.Error())
		return
	}
	for _, p := range []*int{minRating, maxRating} {
		if p != nil && (*p < 0 || *p > book.MaxRating) {
			h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "rating bounds must be between 0 and 5")
			return
		}
	}

	results := h.catalog.Search(service.SearchFilters{
		Title:     r.URL.Query().Get("title"),
		Category:  r.URL.Query().Get("category"),
		MinRating: minRating,
		MaxRating: maxRating,
	})
	h.respondJSON(w, http.StatusOK, nonNil(results))
}

// handleTopRated returns the highest-rated books, ties broken by ID.
func (h *Handler) handleTopRated(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultTopRated)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, nonNil(h.catalog.TopRated(limit)))
}

// handlePriceRange returns books priced within [min, max] inclusive.
func (h *Handler) handlePriceRange(w http.ResponseWriter, r *http.Request) {
	min, err := queryFloat(r, "min")
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, err.Error())
		return
	}
	max, err := queryFloat(r, "max")
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, err.Error())
		return
	}

	results, err := h.catalog.PriceRange(min, max)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, nonNil(results))
}

// CategoriesResponse is the payload of GET /categories.
type CategoriesResponse struct {
	Total      int      `json:"total"`
	Categories []string `json:"categories"`
}

// handleListCategories returns the sorted unique category names.
func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats := h.catalog.Categories()
	h.respondJSON(w, http.StatusOK, CategoriesResponse{Total: len(cats), Categories: cats})
}

// nonNil ensures empty results encode as [] rather than null.
func nonNil(books []book.Book) []book.Book {
	if books == nil {
		return []book.Book{}
	}
	return books
}

// Package service contains application services.
package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/book-gate/bookgate/internal/domain/book"
)

// ErrInvalidRange is returned for price ranges where min > max or either
// bound is negative.
var ErrInvalidRange = errors.New("invalid range")

// SnapshotSource provides the current dataset snapshot. Satisfied by
// datafile.Store.
type SnapshotSource interface {
	Snapshot() *book.Snapshot
}

// CatalogService is the query engine: pure reads over the current snapshot.
// Every method fetches the snapshot once and computes against it, so a
// concurrent reload can never produce a partial result.
type CatalogService struct {
	source SnapshotSource
}

// NewCatalogService creates a CatalogService reading from the given source.
func NewCatalogService(source SnapshotSource) *CatalogService {
	return &CatalogService{source: source}
}

// SearchFilters are the optional predicates for Search. Nil rating bounds
// mean unbounded; empty strings mean no text filter.
type SearchFilters struct {
	Title     string
	Category  string
	MinRating *int
	MaxRating *int
}

// Search returns books matching all set filters, in load order. Title and
// category match case-insensitively on substring; rating bounds are
// inclusive. No filters returns the full dataset; no matches returns an
// empty slice, never an error.
func (s *CatalogService) Search(filters SearchFilters) []book.Book {
	all := s.books()
	title := strings.ToLower(filters.Title)
	category := strings.ToLower(filters.Category)

	out := make([]book.Book, 0, len(all))
	for _, b := range all {
		if title != "" && !strings.Contains(strings.ToLower(b.Title), title) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(b.Category), category) {
			continue
		}
		if filters.MinRating != nil && b.Rating < *filters.MinRating {
			continue
		}
		if filters.MaxRating != nil && b.Rating > *filters.MaxRating {
			continue
		}
		out = append(out, b)
	}
	return out
}

// TopRated returns up to limit books sorted by rating descending, ties
// broken by ID ascending so results are deterministic. Limit is clamped to
// [0, dataset size].
func (s *CatalogService) TopRated(limit int) []book.Book {
	all := s.books()
	sorted := make([]book.Book, len(all))
	copy(sorted, all)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rating != sorted[j].Rating {
			return sorted[i].Rating > sorted[j].Rating
		}
		return sorted[i].ID < sorted[j].ID
	})

	if limit < 0 {
		limit = 0
	}
	if limit > len(sorted) {
		limit = len(sorted)
	}
	return sorted[:limit]
}

// PriceRange returns books with min <= price <= max, in load order.
// Fails with ErrInvalidRange when min > max or either bound is negative.
func (s *CatalogService) PriceRange(min, max float64) ([]book.Book, error) {
	if min < 0 || max < 0 {
		return nil, fmt.Errorf("%w: bounds must be non-negative", ErrInvalidRange)
	}
	if min > max {
		return nil, fmt.Errorf("%w: min %.2f exceeds max %.2f", ErrInvalidRange, min, max)
	}

	all := s.books()
	out := make([]book.Book, 0, len(all))
	for _, b := range all {
		if b.Price >= min && b.Price <= max {
			out = append(out, b)
		}
	}
	return out, nil
}

// Paginate returns the slice [offset, offset+limit) of the dataset in load
// order. An offset beyond the dataset yields an empty slice, not an error.
func (s *CatalogService) Paginate(offset, limit int) []book.Book {
	all := s.books()
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= len(all) {
		return []book.Book{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// Categories returns the sorted unique category names.
func (s *CatalogService) Categories() []string {
	snap := s.source.Snapshot()
	if snap == nil {
		return []string{}
	}
	return snap.Categories()
}

// StatsOverview aggregates collection-level statistics. Computed on demand:
// the dataset is small and read-mostly, so incremental maintenance would be
// complexity without payoff.
type StatsOverview struct {
	TotalBooks         int            `json:"total_books"`
	TotalCategories    int            `json:"total_categories"`
	AvgPrice           float64        `json:"avg_price"`
	MinPrice           float64        `json:"min_price"`
	MaxPrice           float64        `json:"max_price"`
	AvgRating          float64        `json:"avg_rating"`
	PriceDistribution  map[string]int `json:"price_distribution"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

// priceBandWidth is the width of one price distribution bucket.
const priceBandWidth = 10.0

// Overview computes the stats snapshot for the whole collection.
func (s *CatalogService) Overview() StatsOverview {
	all := s.books()

	overview := StatsOverview{
		TotalCategories:    len(s.Categories()),
		PriceDistribution:  make(map[string]int),
		RatingDistribution: make(map[string]int),
	}
	for r := 0; r <= book.MaxRating; r++ {
		overview.RatingDistribution[fmt.Sprintf("%d", r)] = 0
	}
	if len(all) == 0 {
		return overview
	}

	var priceSum, ratingSum float64
	minPrice := math.Inf(1)
	maxPrice := math.Inf(-1)
	for _, b := range all {
		priceSum += b.Price
		ratingSum += float64(b.Rating)
		if b.Price < minPrice {
			minPrice = b.Price
		}
		if b.Price > maxPrice {
			maxPrice = b.Price
		}
		overview.PriceDistribution[priceBand(b.Price)]++
		overview.RatingDistribution[fmt.Sprintf("%d", b.Rating)]++
	}

	overview.TotalBooks = len(all)
	overview.AvgPrice = round2(priceSum / float64(len(all)))
	overview.MinPrice = round2(minPrice)
	overview.MaxPrice = round2(maxPrice)
	overview.AvgRating = round2(ratingSum / float64(len(all)))
	return overview
}

// CategoryStats holds per-category aggregates.
type CategoryStats struct {
	Category  string  `json:"category"`
	Count     int     `json:"count"`
	AvgPrice  float64 `json:"avg_price"`
	AvgRating float64 `json:"avg_rating"`
}

// StatsByCategory computes per-category aggregates, sorted by category name.
func (s *CatalogService) StatsByCategory() []CategoryStats {
	type acc struct {
		count     int
		priceSum  float64
		ratingSum float64
	}
	accs := make(map[string]*acc)
	for _, b := range s.books() {
		if b.Category == "" {
			continue
		}
		a := accs[b.Category]
		if a == nil {
			a = &acc{}
			accs[b.Category] = a
		}
		a.count++
		a.priceSum += b.Price
		a.ratingSum += float64(b.Rating)
	}

	out := make([]CategoryStats, 0, len(accs))
	for cat, a := range accs {
		out = append(out, CategoryStats{
			Category:  cat,
			Count:     a.count,
			AvgPrice:  round2(a.priceSum / float64(a.count)),
			AvgRating: round2(a.ratingSum / float64(a.count)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func (s *CatalogService) books() []book.Book {
	snap := s.source.Snapshot()
	if snap == nil {
		return nil
	}
	return snap.All()
}

// priceBand formats the £10-wide bucket a price falls into, e.g. "10-20".
func priceBand(price float64) string {
	lo := math.Floor(price/priceBandWidth) * priceBandWidth
	return fmt.Sprintf("%.0f-%.0f", lo, lo+priceBandWidth)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

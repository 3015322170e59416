// Package book contains the domain types for the book catalogue.
package book

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxRating is the highest rating a book can carry.
const MaxRating = 5

// Book is a single catalogue entry. Books are created in bulk when a
// snapshot is loaded and never mutated individually; IDs are dense,
// 1-based, and assigned in scrape order within one load.
type Book struct {
	// ID is the load-order identifier, stable for the lifetime of one snapshot.
	ID int `json:"id"`
	// Title is the book title as scraped.
	Title string `json:"title"`
	// Price is the numeric price (currency symbol stripped at load).
	Price float64 `json:"price"`
	// Rating is the scraped star rating, 0-5.
	Rating int `json:"rating"`
	// Category is the catalogue category the book was listed under.
	Category string `json:"category"`
	// Availability is the raw availability text (e.g. "In stock (22 available)").
	Availability string `json:"availability"`
	// ImageURL is the cover image URL, if the scraper captured one.
	ImageURL string `json:"image_url,omitempty"`
}

// InStock reports whether the availability text indicates the book is in stock.
func (b Book) InStock() bool {
	return strings.Contains(strings.ToLower(b.Availability), "in stock")
}

// ParsePrice converts scraped price text like "£51.77" or "$1,099.00" into a
// numeric amount. Currency symbols and thousands separators are stripped.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',':
			return -1 // thousands separator
		default:
			return -1 // currency symbols, whitespace
		}
	}, s)
	if cleaned == "" {
		return 0, fmt.Errorf("price %q contains no numeric value", s)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("price %q is negative", s)
	}
	return v, nil
}

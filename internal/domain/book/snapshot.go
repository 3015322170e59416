package book

import (
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned when a book ID does not exist in the snapshot.
var ErrNotFound = errors.New("book not found")

// Snapshot is an immutable, fully-loaded copy of the catalogue at a point in
// time. All query operations read from a snapshot; reload installs a new one
// atomically so readers never observe a partially-updated dataset.
type Snapshot struct {
	books       []Book
	byID        map[int]Book
	categories  []string
	fingerprint uint64
	loadedAt    time.Time
}

// NewSnapshot builds a snapshot from books in load order. The fingerprint is
// a content hash of the source file, used to detect no-op reloads.
func NewSnapshot(books []Book, fingerprint uint64, loadedAt time.Time) *Snapshot {
	byID := make(map[int]Book, len(books))
	catSet := make(map[string]struct{})
	for _, b := range books {
		byID[b.ID] = b
		if b.Category != "" {
			catSet[b.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(catSet))
	for c := range catSet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return &Snapshot{
		books:       books,
		byID:        byID,
		categories:  categories,
		fingerprint: fingerprint,
		loadedAt:    loadedAt,
	}
}

// Len returns the number of books in the snapshot.
func (s *Snapshot) Len() int { return len(s.books) }

// All returns the books in load order. Callers must not modify the
// returned slice.
func (s *Snapshot) All() []Book { return s.books }

// Get returns the book with the given ID, or ErrNotFound.
func (s *Snapshot) Get(id int) (Book, error) {
	b, ok := s.byID[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

// Categories returns the sorted unique category names.
func (s *Snapshot) Categories() []string { return s.categories }

// Fingerprint returns the content hash of the source data file.
func (s *Snapshot) Fingerprint() uint64 { return s.fingerprint }

// LoadedAt returns when the snapshot was loaded.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

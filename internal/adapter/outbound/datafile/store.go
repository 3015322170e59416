// Package datafile loads the scraped book dataset from a flat CSV file into
// an immutable in-memory snapshot.
//
// The snapshot is held behind an atomic pointer: readers are lock-free and
// never observe a partially-loaded dataset. Reload builds a complete
// candidate snapshot first and installs it only on success — on any load
// failure the previous snapshot stays live (fail-safe for availability).
package datafile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/book-gate/bookgate/internal/domain/book"
)

// ErrLoad wraps any dataset load failure: missing file, unreadable file,
// or malformed rows. At startup this is fatal; on reload it is recovered.
var ErrLoad = errors.New("dataset load failed")

// ErrNotLoaded is returned by read operations before the first Load.
var ErrNotLoaded = errors.New("dataset not loaded")

// header columns expected in the CSV, in order. The id column is absent on
// purpose: identifiers are dense and assigned in row order at load time.
var expectedHeader = []string{"title", "price", "rating", "availability", "category", "image_url"}

// Store owns the current dataset snapshot.
type Store struct {
	path     string
	logger   *slog.Logger
	snapshot atomic.Pointer[book.Snapshot]

	// reloadMu serializes reloads so two admin triggers cannot interleave.
	// Readers never take it.
	reloadMu sync.Mutex
}

// NewStore creates a store reading from the given CSV path. No data is
// loaded until Load is called.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Load reads the dataset file and installs the initial snapshot.
// Any failure is wrapped in ErrLoad; callers at startup treat it as fatal.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	s.snapshot.Store(snap)
	s.logger.Info("dataset loaded", "books", snap.Len(), "file", s.path, "fingerprint", fmt.Sprintf("%016x", snap.Fingerprint()))
	return nil
}

// Reload re-runs the load and swaps in the new snapshot only if it
// succeeds. On failure the prior snapshot remains live and the error is
// returned to the caller (surfaced to the admin, not to readers).
// Returns the installed snapshot and whether the file content changed.
func (s *Store) Reload(ctx context.Context) (*book.Snapshot, bool, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	prev := s.snapshot.Load()
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		s.logger.Warn("dataset reload failed, keeping previous snapshot", "error", err)
		return prev, false, err
	}

	changed := prev == nil || prev.Fingerprint() != snap.Fingerprint()
	s.snapshot.Store(snap)
	s.logger.Info("dataset reloaded", "books", snap.Len(), "changed", changed)
	return snap, changed, nil
}

// Snapshot returns the current snapshot, or nil before the first Load.
func (s *Store) Snapshot() *book.Snapshot {
	return s.snapshot.Load()
}

// Get returns the book with the given ID from the current snapshot.
func (s *Store) Get(id int) (book.Book, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return book.Book{}, ErrNotLoaded
	}
	return snap.Get(id)
}

// All returns all books in load order from the current snapshot.
func (s *Store) All() []book.Book {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.All()
}

// loadSnapshot parses the whole file into a candidate snapshot without
// touching the live one.
func (s *Store) loadSnapshot(ctx context.Context) (*book.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	books, err := parseCSV(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	return book.NewSnapshot(books, xxhash.Sum64(data), time.Now().UTC()), nil
}

// parseCSV reads the header then every row, assigning dense 1-based IDs in
// row order. Any malformed row fails the whole load: a partially-usable
// file must not silently shrink the catalogue.
func parseCSV(r io.Reader) ([]book.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(expectedHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("file is empty (missing header row)")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var books []book.Book
	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		b, err := parseRow(row, record)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

func checkHeader(header []string) error {
	for i, want := range expectedHeader {
		if i >= len(header) || !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("unexpected header %v (want %v)", header, expectedHeader)
		}
	}
	return nil
}

func parseRow(row int, record []string) (book.Book, error) {
	title := strings.TrimSpace(record[0])
	if title == "" {
		return book.Book{}, fmt.Errorf("row %d: empty title", row)
	}

	price, err := book.ParsePrice(record[1])
	if err != nil {
		return book.Book{}, fmt.Errorf("row %d: %v", row, err)
	}

	rating, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return book.Book{}, fmt.Errorf("row %d: rating %q is not an integer", row, record[2])
	}
	if rating < 0 || rating > book.MaxRating {
		return book.Book{}, fmt.Errorf("row %d: rating %d out of range 0-%d", row, rating, book.MaxRating)
	}

	return book.Book{
		ID:           row,
		Title:        title,
		Price:        price,
		Rating:       rating,
		Availability: strings.TrimSpace(record[3]),
		Category:     strings.TrimSpace(record[4]),
		ImageURL:     strings.TrimSpace(record[5]),
	}, nil
}

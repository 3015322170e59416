package datafile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-gate/bookgate/internal/domain/book"
)

const validCSV = `title,price,rating,availability,category,image_url
A Light in the Attic,£51.77,3,In stock,Poetry,media/cache/fe/72/fe72.jpg
Tipping the Velvet,£53.74,1,In stock,Historical Fiction,media/cache/08/e9/08e9.jpg
Soumission,£50.10,1,Out of stock,Fiction,media/cache/ee/cf/eecf.jpg
`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	t.Parallel()

	s := NewStore(writeDataset(t, validCSV), nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	snap := s.Snapshot()
	if snap == nil {
		t.Fatal("Snapshot() = nil after Load")
	}
	if snap.Len() != 3 {
		t.Errorf("Len() = %d, want 3", snap.Len())
	}

	// IDs are dense and assigned in row order.
	b, err := snap.Get(1)
	if err != nil {
		t.Fatalf("Get(1) error = %v", err)
	}
	if b.Title != "A Light in the Attic" {
		t.Errorf("book 1 title = %q, want %q", b.Title, "A Light in the Attic")
	}
	if b.Price != 51.77 {
		t.Errorf("book 1 price = %v, want 51.77", b.Price)
	}
	if b.Rating != 3 {
		t.Errorf("book 1 rating = %d, want 3", b.Rating)
	}

	b3, err := snap.Get(3)
	if err != nil {
		t.Fatalf("Get(3) error = %v", err)
	}
	if b3.InStock() {
		t.Error("book 3 should be out of stock")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "nope.csv"), nil)
	err := s.Load(context.Background())
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Load() error = %v, want ErrLoad", err)
	}
	if s.Snapshot() != nil {
		t.Error("Snapshot() should stay nil after failed Load")
	}
}

func TestLoad_MalformedRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		csv  string
	}{
		{
			"bad price",
			"title,price,rating,availability,category,image_url\nBook,not-a-price,3,In stock,Fiction,x.jpg\n",
		},
		{
			"rating not an integer",
			"title,price,rating,availability,category,image_url\nBook,£10.00,five,In stock,Fiction,x.jpg\n",
		},
		{
			"rating out of range",
			"title,price,rating,availability,category,image_url\nBook,£10.00,6,In stock,Fiction,x.jpg\n",
		},
		{
			"empty title",
			"title,price,rating,availability,category,image_url\n,£10.00,3,In stock,Fiction,x.jpg\n",
		},
		{
			"missing column",
			"title,price,rating,availability,category,image_url\nBook,£10.00,3,In stock,Fiction\n",
		},
		{
			"wrong header",
			"name,cost,stars,stock,genre,thumb\nBook,£10.00,3,In stock,Fiction,x.jpg\n",
		},
		{
			"empty file",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewStore(writeDataset(t, tt.csv), nil)
			if err := s.Load(context.Background()); !errors.Is(err, ErrLoad) {
				t.Errorf("Load() error = %v, want ErrLoad", err)
			}
		})
	}
}

// A malformed row anywhere fails the whole load, even if earlier rows parsed.
func TestLoad_PartialFileRejected(t *testing.T) {
	t.Parallel()

	csv := validCSV + "Broken Book,not-a-price,3,In stock,Fiction,x.jpg\n"
	s := NewStore(writeDataset(t, csv), nil)
	if err := s.Load(context.Background()); !errors.Is(err, ErrLoad) {
		t.Errorf("Load() error = %v, want ErrLoad", err)
	}
	if s.Snapshot() != nil {
		t.Error("no snapshot should be installed from a partially-valid file")
	}
}

func TestLoad_HeaderOnlyIsEmptySnapshot(t *testing.T) {
	t.Parallel()

	s := NewStore(writeDataset(t, "title,price,rating,availability,category,image_url\n"), nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := s.Snapshot().Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestReload_FailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	path := writeDataset(t, validCSV)
	s := NewStore(path, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before := s.Snapshot()

	// Corrupt the file, then reload.
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	snap, changed, err := s.Reload(context.Background())
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Reload() error = %v, want ErrLoad", err)
	}
	if changed {
		t.Error("changed = true, want false on failed reload")
	}
	if snap != before {
		t.Error("Reload should return the surviving snapshot on failure")
	}
	if s.Snapshot() != before {
		t.Error("failed reload must not replace the live snapshot")
	}
	if s.Snapshot().Len() != 3 {
		t.Errorf("Len() = %d, want 3 after failed reload", s.Snapshot().Len())
	}
}

func TestReload_DetectsChange(t *testing.T) {
	t.Parallel()

	path := writeDataset(t, validCSV)
	s := NewStore(path, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Same content: no change.
	_, changed, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if changed {
		t.Error("changed = true, want false for identical content")
	}

	// New row: change.
	extra := validCSV + "Sharp Objects,£47.82,4,In stock,Mystery,media/cache/32/51/3251.jpg\n"
	if err := os.WriteFile(path, []byte(extra), 0o600); err != nil {
		t.Fatal(err)
	}
	snap, changed, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if !changed {
		t.Error("changed = false, want true after content change")
	}
	if snap.Len() != 4 {
		t.Errorf("Len() = %d, want 4", snap.Len())
	}
}

func TestGet_BeforeLoad(t *testing.T) {
	t.Parallel()

	s := NewStore("unused.csv", nil)
	if _, err := s.Get(1); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Get() error = %v, want ErrNotLoaded", err)
	}
	if got := s.All(); got != nil {
		t.Errorf("All() = %v, want nil before Load", got)
	}
}

func TestGet_UnknownID(t *testing.T) {
	t.Parallel()

	s := NewStore(writeDataset(t, validCSV), nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := s.Get(999); !errors.Is(err, book.ErrNotFound) {
		t.Errorf("Get(999) error = %v, want book.ErrNotFound", err)
	}
}

package book

import (
	"testing"
	"time"
)

func TestParsePrice_CurrencySymbols(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"£51.77", 51.77},
		{"$19.99", 19.99},
		{"1,099.00", 1099.00},
		{"  £20.00 ", 20.00},
		{"0.00", 0},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if err != nil {
			t.Errorf("ParsePrice(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePrice_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "free", "£", "£-5.00"} {
		if _, err := ParsePrice(in); err == nil {
			t.Errorf("ParsePrice(%q) should fail", in)
		}
	}
}

func TestInStock(t *testing.T) {
	t.Parallel()

	b := Book{Availability: "In stock (22 available)"}
	if !b.InStock() {
		t.Error("expected in stock")
	}
	b = Book{Availability: "Out of stock"}
	if b.InStock() {
		t.Error("expected out of stock")
	}
}

func TestSnapshot_GetAndNotFound(t *testing.T) {
	t.Parallel()

	books := []Book{
		{ID: 1, Title: "A", Category: "Poetry"},
		{ID: 2, Title: "B", Category: "Classics"},
	}
	snap := NewSnapshot(books, 42, time.Now().UTC())

	got, err := snap.Get(2)
	if err != nil {
		t.Fatalf("Get(2) error: %v", err)
	}
	if got.Title != "B" {
		t.Errorf("Title = %q, want %q", got.Title, "B")
	}

	if _, err := snap.Get(99); err != ErrNotFound {
		t.Errorf("Get(99) error = %v, want ErrNotFound", err)
	}
}

func TestSnapshot_CategoriesSortedUnique(t *testing.T) {
	t.Parallel()

	books := []Book{
		{ID: 1, Category: "Poetry"},
		{ID: 2, Category: "Classics"},
		{ID: 3, Category: "Poetry"},
		{ID: 4, Category: ""},
	}
	snap := NewSnapshot(books, 0, time.Now().UTC())

	cats := snap.Categories()
	want := []string{"Classics", "Poetry"}
	if len(cats) != len(want) {
		t.Fatalf("Categories() = %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, cats[i], want[i])
		}
	}
}

func TestSnapshot_AllPreservesLoadOrder(t *testing.T) {
	t.Parallel()

	books := []Book{{ID: 1}, {ID: 2}, {ID: 3}}
	snap := NewSnapshot(books, 0, time.Now().UTC())

	all := snap.All()
	if len(all) != 3 {
		t.Fatalf("Len = %d, want 3", len(all))
	}
	for i, b := range all {
		if b.ID != i+1 {
			t.Errorf("All()[%d].ID = %d, want %d", i, b.ID, i+1)
		}
	}
}

package service

import (
	"testing"
	"time"

	"github.com/book-gate/bookgate/internal/domain/book"
)

func newTestML(books []book.Book) *MLService {
	snap := book.NewSnapshot(books, 1, time.Now().UTC())
	return NewMLService(&fakeSource{snap: snap})
}

func TestFeatures(t *testing.T) {
	t.Parallel()

	svc := newTestML(testBooks())
	got := svc.Features()

	if got.TotalRecords != 5 {
		t.Fatalf("TotalRecords = %d, want 5", got.TotalRecords)
	}

	// Categories are encoded by sorted index: Fiction=0, Historical
	// Fiction=1, Mystery=2, Poetry=3.
	wantMapping := map[string]int{"Fiction": 0, "Historical Fiction": 1, "Mystery": 2, "Poetry": 3}
	for cat, want := range wantMapping {
		if got.CategoryMapping[cat] != want {
			t.Errorf("CategoryMapping[%q] = %d, want %d", cat, got.CategoryMapping[cat], want)
		}
	}

	first := got.Features[0]
	if first.BookID != 1 {
		t.Errorf("first BookID = %d, want 1", first.BookID)
	}
	if first.Price != 51.77 {
		t.Errorf("first Price = %v, want 51.77", first.Price)
	}
	if first.CategoryEncoded != 3 {
		t.Errorf("first CategoryEncoded = %d, want 3 (Poetry)", first.CategoryEncoded)
	}
	if first.InStock != 1 {
		t.Errorf("first InStock = %d, want 1", first.InStock)
	}
	if first.TitleLength != len("A Light in the Attic") {
		t.Errorf("first TitleLength = %d, want %d", first.TitleLength, len("A Light in the Attic"))
	}

	// Book 3 is out of stock.
	if got.Features[2].InStock != 0 {
		t.Errorf("book 3 InStock = %d, want 0", got.Features[2].InStock)
	}
}

func TestFeatures_EmptySnapshot(t *testing.T) {
	t.Parallel()

	svc := NewMLService(&fakeSource{})
	got := svc.Features()
	if got.Features == nil || got.CategoryMapping == nil {
		t.Error("Features() must return empty containers, not nil")
	}
	if got.TotalRecords != 0 {
		t.Errorf("TotalRecords = %d, want 0", got.TotalRecords)
	}
}

func TestTrainingSet(t *testing.T) {
	t.Parallel()

	svc := newTestML(testBooks())
	got := svc.TrainingSet()

	if got.TotalSamples != 5 {
		t.Fatalf("TotalSamples = %d, want 5", got.TotalSamples)
	}
	if len(got.X) != 5 || len(got.Y) != 5 {
		t.Fatalf("X/Y lengths = %d/%d, want 5/5", len(got.X), len(got.Y))
	}
	if len(got.FeatureNames) != 4 || got.FeatureNames[0] != "price" {
		t.Errorf("FeatureNames = %v, want %v", got.FeatureNames, FeatureNames)
	}

	// Row 0: price, category_encoded (Poetry=3), in_stock, title_length.
	row := got.X[0]
	if len(row) != 4 {
		t.Fatalf("X[0] has %d columns, want 4", len(row))
	}
	if row[0] != 51.77 || row[1] != 3 || row[2] != 1 || row[3] != float64(len("A Light in the Attic")) {
		t.Errorf("X[0] = %v, want [51.77 3 1 %d]", row, len("A Light in the Attic"))
	}
	if got.Y[0] != 3 {
		t.Errorf("Y[0] = %d, want 3", got.Y[0])
	}
}

func TestPredictRating(t *testing.T) {
	t.Parallel()

	svc := newTestML(testBooks())

	tests := []struct {
		name     string
		price    float64
		category string
		want     int
	}{
		{"mid price", 35.00, "Fiction", 3},
		{"expensive", 60.00, "Fiction", 4},
		{"cheap", 10.00, "Fiction", 2},
		{"poetry bump rounds up", 35.00, "Poetry", 4},
		{"classics bump rounds up", 35.00, "Classics", 4},
		{"expensive poetry", 60.00, "Poetry", 5},
		{"cheap poetry", 10.00, "Poetry", 3},
		{"boundary price 50 is not above", 50.00, "Fiction", 3},
		{"boundary price 20 is not below", 20.00, "Fiction", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := svc.PredictRating("Some Title", tt.price, tt.category)
			if got.PredictedRating != tt.want {
				t.Errorf("PredictRating(%v, %q) = %d, want %d", tt.price, tt.category, got.PredictedRating, tt.want)
			}
			if got.Confidence != 0.75 {
				t.Errorf("Confidence = %v, want 0.75", got.Confidence)
			}
		})
	}
}

func TestPredictRating_FeaturesUsed(t *testing.T) {
	t.Parallel()

	svc := newTestML(testBooks())
	got := svc.PredictRating("Sharp Objects", 47.82, "Mystery")

	if got.FeaturesUsed["price"] != 47.82 {
		t.Errorf("features price = %v, want 47.82", got.FeaturesUsed["price"])
	}
	if got.FeaturesUsed["category_encoded"] != 2 {
		t.Errorf("features category_encoded = %v, want 2", got.FeaturesUsed["category_encoded"])
	}
	if got.FeaturesUsed["title_length"] != float64(len("Sharp Objects")) {
		t.Errorf("features title_length = %v, want %d", got.FeaturesUsed["title_length"], len("Sharp Objects"))
	}
	if got.Timestamp == "" {
		t.Error("Timestamp is empty")
	}
}

func TestPredictRating_NoSnapshot(t *testing.T) {
	t.Parallel()

	svc := NewMLService(&fakeSource{})
	got := svc.PredictRating("Anything", 30, "Fiction")
	if got.PredictedRating != 3 {
		t.Errorf("PredictRating = %d, want 3 without a snapshot", got.PredictedRating)
	}
	if got.FeaturesUsed["category_encoded"] != 0 {
		t.Errorf("category_encoded = %v, want 0 for unknown mapping", got.FeaturesUsed["category_encoded"])
	}
}

package service

import (
	"time"

	"github.com/book-gate/bookgate/internal/domain/book"
)

// MLService projects catalogue data into flat feature vectors and serves a
// placeholder rating prediction. There is no trained model behind the
// prediction endpoint: it is a fixed-formula estimate kept for interface
// compatibility with downstream experiments.
type MLService struct {
	source SnapshotSource
}

// NewMLService creates an MLService reading from the given source.
func NewMLService(source SnapshotSource) *MLService {
	return &MLService{source: source}
}

// FeatureNames are the columns of the projected feature vectors, in order.
var FeatureNames = []string{"price", "category_encoded", "in_stock", "title_length"}

// BookFeatures is one book projected into numeric/categorical features.
type BookFeatures struct {
	BookID          int     `json:"book_id"`
	Price           float64 `json:"price"`
	CategoryEncoded int     `json:"category_encoded"`
	InStock         int     `json:"in_stock"`
	TitleLength     int     `json:"title_length"`
	Rating          int     `json:"rating"`
}

// FeaturesResponse is the payload of GET /ml/features.
type FeaturesResponse struct {
	TotalRecords    int            `json:"total_records"`
	Features        []BookFeatures `json:"features"`
	CategoryMapping map[string]int `json:"category_mapping"`
}

// Features projects every book into a feature row. Categories are encoded
// by their index in the sorted unique category list, so the encoding is
// stable for a given snapshot.
func (s *MLService) Features() FeaturesResponse {
	snap := s.source.Snapshot()
	if snap == nil {
		return FeaturesResponse{Features: []BookFeatures{}, CategoryMapping: map[string]int{}}
	}

	mapping := categoryMapping(snap)
	features := make([]BookFeatures, 0, snap.Len())
	for _, b := range snap.All() {
		features = append(features, BookFeatures{
			BookID:          b.ID,
			Price:           b.Price,
			CategoryEncoded: mapping[b.Category],
			InStock:         boolToInt(b.InStock()),
			TitleLength:     len(b.Title),
			Rating:          b.Rating,
		})
	}
	return FeaturesResponse{
		TotalRecords:    len(features),
		Features:        features,
		CategoryMapping: mapping,
	}
}

// TrainingData is the payload of GET /ml/training-data: the feature matrix
// X with target vector y.
type TrainingData struct {
	X            [][]float64 `json:"X"`
	Y            []int       `json:"y"`
	FeatureNames []string    `json:"feature_names"`
	TotalSamples int         `json:"total_samples"`
}

// TrainingSet returns the dataset as an (X, y) training pair.
func (s *MLService) TrainingSet() TrainingData {
	snap := s.source.Snapshot()
	if snap == nil {
		return TrainingData{X: [][]float64{}, Y: []int{}, FeatureNames: FeatureNames}
	}

	mapping := categoryMapping(snap)
	x := make([][]float64, 0, snap.Len())
	y := make([]int, 0, snap.Len())
	for _, b := range snap.All() {
		x = append(x, []float64{
			b.Price,
			float64(mapping[b.Category]),
			float64(boolToInt(b.InStock())),
			float64(len(b.Title)),
		})
		y = append(y, b.Rating)
	}
	return TrainingData{X: x, Y: y, FeatureNames: FeatureNames, TotalSamples: len(x)}
}

// Prediction is the placeholder rating estimate for a hypothetical book.
type Prediction struct {
	PredictedRating int                `json:"predicted_rating"`
	Confidence      float64            `json:"confidence"`
	FeaturesUsed    map[string]float64 `json:"features_used"`
	Timestamp       string             `json:"timestamp"`
}

// fixedConfidence is reported with every prediction. There is no model to
// derive a real confidence from.
const fixedConfidence = 0.75

// PredictRating estimates a rating from price/category/title using the
// fixed rule set: base 3, +1 above £50, -1 below £20, +0.5 for Classics or
// Poetry, clamped to [1, 5].
func (s *MLService) PredictRating(title string, price float64, category string) Prediction {
	var mapping map[string]int
	if snap := s.source.Snapshot(); snap != nil {
		mapping = categoryMapping(snap)
	} else {
		mapping = map[string]int{}
	}

	estimate := 3.0
	switch {
	case price > 50:
		estimate++
	case price < 20:
		estimate--
	}
	if category == "Classics" || category == "Poetry" {
		estimate += 0.5
	}

	rating := int(estimate + 0.5)
	if rating < 1 {
		rating = 1
	}
	if rating > book.MaxRating {
		rating = book.MaxRating
	}

	return Prediction{
		PredictedRating: rating,
		Confidence:      fixedConfidence,
		FeaturesUsed: map[string]float64{
			"price":            price,
			"category_encoded": float64(mapping[category]),
			"title_length":     float64(len(title)),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// categoryMapping assigns each sorted category its index.
func categoryMapping(snap *book.Snapshot) map[string]int {
	cats := snap.Categories()
	mapping := make(map[string]int, len(cats))
	for i, c := range cats {
		mapping[c] = i
	}
	return mapping
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package api

import "net/http"

// PredictionRequest is the payload of POST /ml/predictions.
type PredictionRequest struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// handleMLFeatures returns the catalogue projected into feature vectors.
func (h *Handler) handleMLFeatures(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.mlService.Features())
}

// handleMLTrainingData returns the catalogue as an (X, y) training pair.
func (h *Handler) handleMLTrainingData(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.mlService.TrainingSet())
}

// handleMLPrediction returns a fixed-formula rating estimate. Not a trained
// model; see service.MLService.
func (h *Handler) handleMLPrediction(w http.ResponseWriter, r *http.Request) {
	var req PredictionRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "invalid JSON body")
		return
	}
	if req.Title == "" {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "title is required")
		return
	}
	if req.Price < 0 {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "price must be non-negative")
		return
	}

	h.respondJSON(w, http.StatusOK, h.mlService.PredictRating(req.Title, req.Price, req.Category))
}

package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all unlock routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/horses/{horseId}/unlocks/evaluate", h.HandleEvaluate)
}

package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all milestone routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/horses/{horseId}/milestones/evaluate", h.HandleEvaluate)
}

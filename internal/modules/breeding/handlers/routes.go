package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all breeding routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/breeding", func(r chi.Router) {
		r.Post("/foal", h.HandleBreedFoal)
	})
}

package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all groom routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/grooms", func(r chi.Router) {
		r.Post("/interact", h.HandleInteract)
		r.Post("/care-events", h.HandleCareEvent)
	})
}

package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all horse routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/horses/{horseId}", h.HandleGetHorse)
	r.Get("/horses/{horseId}/streak", h.HandleGetStreak)
}

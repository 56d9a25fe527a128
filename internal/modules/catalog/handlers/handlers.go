// Package handlers provides read-only HTTP handlers for the trait catalog.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/modules/catalog"
)

// Handler serves catalog dumps. The catalog is immutable after startup, so
// every response here is cacheable by the dashboard.
type Handler struct {
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(cat *catalog.Catalog, log zerolog.Logger) *Handler {
	return &Handler{
		catalog: cat,
		log:     log.With().Str("handler", "catalog").Logger(),
	}
}

// HandleGetTraits handles GET /api/catalog/traits
func (h *Handler) HandleGetTraits(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{"data": h.catalog.Traits()})
}

// HandleGetTasks handles GET /api/catalog/tasks
func (h *Handler) HandleGetTasks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{"data": h.catalog.Tasks()})
}

// HandleGetMilestones handles GET /api/catalog/milestones
func (h *Handler) HandleGetMilestones(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{"data": h.catalog.Milestones()})
}

// HandleGetUltraRares handles GET /api/catalog/ultra-rares
func (h *Handler) HandleGetUltraRares(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{"data": h.catalog.UltraRares()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

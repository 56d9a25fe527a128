// Package handlers provides HTTP handlers for breeding.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/events"
	"github.com/rosehill/paddock/internal/modules/breeding"
	"github.com/rosehill/paddock/internal/modules/horses"
)

// Handler handles breeding HTTP requests
type Handler struct {
	service *breeding.Service
	horses  *horses.Repository
	bus     *events.Bus
	log     zerolog.Logger
}

// NewHandler creates a new breeding handler
func NewHandler(service *breeding.Service, horseRepo *horses.Repository, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		horses:  horseRepo,
		bus:     bus,
		log:     log.With().Str("handler", "breeding").Logger(),
	}
}

// BreedRequest represents a breeding attempt
type BreedRequest struct {
	SireID      string  `json:"sire_id"`
	DamID       string  `json:"dam_id"`
	Name        string  `json:"name"`
	Sex         string  `json:"sex"`
	StressLevel int     `json:"stress_level"`
	FeedQuality int     `json:"feed_quality"`
	Seed        *uint64 `json:"seed,omitempty"`
}

// HandleBreedFoal handles POST /api/breeding/foal
func (h *Handler) HandleBreedFoal(w http.ResponseWriter, r *http.Request) {
	var req BreedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Unknown parents are a 404, not a validation failure
	for _, parentID := range []string{req.SireID, req.DamID} {
		if parentID == "" {
			http.Error(w, "sire_id and dam_id are required", http.StatusBadRequest)
			return
		}
		parent, err := h.horses.Get(parentID)
		if err != nil {
			h.log.Error().Err(err).Str("horse_id", parentID).Msg("Failed to load parent")
			http.Error(w, "Failed to load parent", http.StatusInternalServerError)
			return
		}
		if parent == nil {
			http.Error(w, "Parent horse not found: "+parentID, http.StatusNotFound)
			return
		}
	}

	outcome, err := h.service.Breed(breeding.Request{
		SireID:      req.SireID,
		DamID:       req.DamID,
		Name:        req.Name,
		Sex:         domain.Sex(req.Sex),
		StressLevel: req.StressLevel,
		FeedQuality: req.FeedQuality,
		Seed:        req.Seed,
	})
	if err != nil {
		if kind := domain.KindOf(err); kind != "" {
			h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": err.Error(),
				"code":  string(kind),
			})
			return
		}
		h.log.Error().Err(err).Msg("Breeding failed")
		http.Error(w, "Breeding failed", http.StatusInternalServerError)
		return
	}

	h.bus.Emit(events.FoalBorn, "breeding", map[string]interface{}{
		"foal_id": outcome.Foal.ID,
		"sire_id": req.SireID,
		"dam_id":  req.DamID,
	})

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"foal": outcome.Foal,
			"traits": map[string]interface{}{
				"positive": outcome.Bundle.Positive.Sorted(),
				"negative": outcome.Bundle.Negative.Sorted(),
				"hidden":   outcome.Bundle.Hidden.Sorted(),
			},
			"candidates": outcome.Candidates,
			"seed":       outcome.Seed,
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

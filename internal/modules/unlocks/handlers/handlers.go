// Package handlers provides HTTP handlers for ultra-rare unlock evaluation.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/events"
	"github.com/rosehill/paddock/internal/modules/genetics"
	"github.com/rosehill/paddock/internal/modules/horses"
	"github.com/rosehill/paddock/internal/modules/unlocks"
)

// BonusFetcher resolves a groom id to a skill bonus
type BonusFetcher interface {
	GetBonus(groomID string) int
}

// Handler handles unlock HTTP requests
type Handler struct {
	service *unlocks.Service
	horses  *horses.Repository
	grooms  BonusFetcher
	bus     *events.Bus
	log     zerolog.Logger
}

// NewHandler creates a new unlock handler
func NewHandler(
	service *unlocks.Service,
	horseRepo *horses.Repository,
	grooms BonusFetcher,
	bus *events.Bus,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service: service,
		horses:  horseRepo,
		grooms:  grooms,
		bus:     bus,
		log:     log.With().Str("handler", "unlocks").Logger(),
	}
}

// EvaluateRequest represents an unlock evaluation request. When GroomBonus is
// not supplied the bonus is fetched from the groom roster service; when Seed
// is supplied the server also performs the draw and grants the winners.
type EvaluateRequest struct {
	GroomBonus *int    `json:"groom_bonus,omitempty"`
	GroomID    string  `json:"groom_id,omitempty"`
	Seed       *uint64 `json:"seed,omitempty"`
}

// HandleEvaluate handles POST /api/horses/{horseId}/unlocks/evaluate
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	horseID := chi.URLParam(r, "horseId")

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	horse, err := h.horses.Get(horseID)
	if err != nil {
		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Failed to load horse")
		http.Error(w, "Failed to load horse", http.StatusInternalServerError)
		return
	}
	if horse == nil {
		http.Error(w, "Horse not found", http.StatusNotFound)
		return
	}

	bonus := 0
	switch {
	case req.GroomBonus != nil:
		bonus = *req.GroomBonus
	case req.GroomID != "":
		bonus = h.grooms.GetBonus(req.GroomID)
	}

	evaluations, bundle, err := h.service.Evaluate(horseID, bonus)
	if err != nil {
		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Unlock evaluation failed")
		http.Error(w, "Unlock evaluation failed", http.StatusInternalServerError)
		return
	}

	var granted []string
	if req.Seed != nil {
		roller := genetics.NewBernoulliRoller(*req.Seed)
		granted, err = h.service.Draw(horseID, evaluations, bundle, roller)
		if err != nil {
			h.log.Error().Err(err).Str("horse_id", horseID).Msg("Unlock draw failed")
			http.Error(w, "Unlock draw failed", http.StatusInternalServerError)
			return
		}

		for _, traitID := range granted {
			h.bus.Emit(events.UltraRareGranted, "unlocks", map[string]interface{}{
				"horse_id": horseID,
				"trait_id": traitID,
			})
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"horse_id":    horseID,
			"groom_bonus": bonus,
			"evaluations": evaluations,
			"granted":     granted,
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

// Package handlers provides HTTP handlers for groom interactions.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/events"
	"github.com/rosehill/paddock/internal/modules/grooming"
)

// Handler handles groom HTTP requests
type Handler struct {
	service *grooming.Service
	clock   domain.Clock
	bus     *events.Bus
	log     zerolog.Logger
}

// NewHandler creates a new groom handler
func NewHandler(service *grooming.Service, clock domain.Clock, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		clock:   clock,
		bus:     bus,
		log:     log.With().Str("handler", "grooming").Logger(),
	}
}

// InteractRequest represents a groom interaction submission
type InteractRequest struct {
	FoalID          string `json:"foal_id"`
	GroomID         string `json:"groom_id"`
	InteractionType string `json:"interaction_type"`
	Duration        int    `json:"duration"`
}

// CareEventRequest represents a stress or recovery event report
type CareEventRequest struct {
	FoalID string `json:"foal_id"`
	Kind   string `json:"kind"`
	Note   string `json:"note"`
}

// HandleInteract handles POST /api/grooms/interact
func (h *Handler) HandleInteract(w http.ResponseWriter, r *http.Request) {
	var req InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	now := h.clock.Now()
	ledger, err := h.service.RecordInteraction(req.FoalID, req.GroomID, req.InteractionType, req.Duration, now)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	streak, err := h.service.GetStreak(req.FoalID, now)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.bus.Emit(events.InteractionRecorded, "grooming", map[string]interface{}{
		"foal_id":          req.FoalID,
		"groom_id":         req.GroomID,
		"interaction_type": req.InteractionType,
		"day":              h.service.DayKey(now),
	})

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"horse_id":           ledger.HorseID,
			"task_counts":        ledger.TaskCounts,
			"total_interactions": ledger.TotalInteractions(),
			"streak_days":        streak,
			"day":                h.service.DayKey(now),
		},
	})
}

// HandleCareEvent handles POST /api/grooms/care-events
func (h *Handler) HandleCareEvent(w http.ResponseWriter, r *http.Request) {
	var req CareEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.RecordCareEvent(req.FoalID, grooming.CareEventKind(req.Kind), req.Note, h.clock.Now()); err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"horse_id": req.FoalID,
			"kind":     req.Kind,
		},
	})
}

// writeEngineError maps engine error kinds onto HTTP responses. All four kinds
// carry a stable machine-readable code so the dashboard can branch on them.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := http.StatusBadRequest
	if kind == "" {
		status = http.StatusInternalServerError
		h.log.Error().Err(err).Msg("Unexpected error handling groom request")
	}

	h.writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"code":  string(kind),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

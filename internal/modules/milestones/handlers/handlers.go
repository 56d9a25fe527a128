// Package handlers provides HTTP handlers for milestone evaluation.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/events"
	"github.com/rosehill/paddock/internal/modules/horses"
	"github.com/rosehill/paddock/internal/modules/milestones"
)

// Handler handles milestone HTTP requests
type Handler struct {
	service *milestones.Service
	horses  *horses.Repository
	clock   domain.Clock
	bus     *events.Bus
	log     zerolog.Logger
}

// NewHandler creates a new milestone handler
func NewHandler(
	service *milestones.Service,
	horseRepo *horses.Repository,
	clock domain.Clock,
	bus *events.Bus,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service: service,
		horses:  horseRepo,
		clock:   clock,
		bus:     bus,
		log:     log.With().Str("handler", "milestones").Logger(),
	}
}

// HandleEvaluate handles POST /api/horses/{horseId}/milestones/evaluate
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	horseID := chi.URLParam(r, "horseId")

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

	result, err := h.service.Evaluate(*horse, h.clock.Now())
	if err != nil {
		// A sequence fault means stored state is corrupt; tag the log line and
		// the response with a correlation id so the two can be matched up.
		if domain.IsKind(err, domain.KindSequence) {
			correlationID := uuid.New().String()
			h.log.Error().
				Err(err).
				Str("horse_id", horseID).
				Str("correlation_id", correlationID).
				Msg("Milestone evaluation hit a sequence fault")
			h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":          "Milestone evaluation failed",
				"code":           string(domain.KindSequence),
				"correlation_id": correlationID,
			})
			return
		}

		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Milestone evaluation failed")
		http.Error(w, "Milestone evaluation failed", http.StatusInternalServerError)
		return
	}

	h.emitResults(horseID, result)

	records := make([]map[string]interface{}, 0, len(result.Records))
	for _, rec := range result.Records {
		records = append(records, map[string]interface{}{
			"milestone_index":        rec.MilestoneIndex,
			"status":                 string(rec.Status),
			"age_at_evaluation_days": rec.AgeAtEvaluationDays,
			"traits_granted":         rec.TraitsGranted,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"horse_id":       horseID,
			"records":        records,
			"granted_traits": result.GrantedTraits,
		},
	})
}

func (h *Handler) emitResults(horseID string, result *milestones.Result) {
	byIndex := make(map[int]milestones.Record, len(result.Records))
	for _, rec := range result.Records {
		byIndex[rec.MilestoneIndex] = rec
	}

	for _, index := range result.Completed {
		h.bus.Emit(events.MilestoneCompleted, "milestones", map[string]interface{}{
			"horse_id":        horseID,
			"milestone_index": index,
			"traits_granted":  byIndex[index].TraitsGranted,
		})
	}
	for _, index := range result.Skipped {
		h.bus.Emit(events.MilestoneSkipped, "milestones", map[string]interface{}{
			"horse_id":        horseID,
			"milestone_index": index,
		})
	}
	for _, traitID := range result.GrantedTraits {
		h.bus.Emit(events.TraitDiscovered, "milestones", map[string]interface{}{
			"horse_id": horseID,
			"trait_id": traitID,
		})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

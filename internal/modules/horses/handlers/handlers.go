// Package handlers provides HTTP handlers for horse records.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/catalog"
	"github.com/rosehill/paddock/internal/modules/grooming"
	"github.com/rosehill/paddock/internal/modules/horses"
	"github.com/rosehill/paddock/internal/modules/milestones"
)

// Handler handles horse HTTP requests
type Handler struct {
	repo      *horses.Repository
	groomSvc  *grooming.Service
	milestone *milestones.Repository
	catalog   *catalog.Catalog
	clock     domain.Clock
	log       zerolog.Logger
}

// NewHandler creates a new horse handler
func NewHandler(
	repo *horses.Repository,
	groomSvc *grooming.Service,
	milestoneRepo *milestones.Repository,
	cat *catalog.Catalog,
	clock domain.Clock,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		repo:      repo,
		groomSvc:  groomSvc,
		milestone: milestoneRepo,
		catalog:   cat,
		clock:     clock,
		log:       log.With().Str("handler", "horses").Logger(),
	}
}

// HandleGetHorse handles GET /api/horses/{horseId}
func (h *Handler) HandleGetHorse(w http.ResponseWriter, r *http.Request) {
	horseID := chi.URLParam(r, "horseId")

	horse, err := h.repo.Get(horseID)
	if err != nil {
		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Failed to load horse")
		http.Error(w, "Failed to load horse", http.StatusInternalServerError)
		return
	}
	if horse == nil {
		http.Error(w, "Horse not found", http.StatusNotFound)
		return
	}

	bundle, err := h.repo.GetBundle(horseID)
	if err != nil {
		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Failed to load trait bundle")
		http.Error(w, "Failed to load trait bundle", http.StatusInternalServerError)
		return
	}

	now := h.clock.Now()
	ledger, err := h.groomSvc.GetLedger(horseID)
	if err != nil {
		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Failed to load ledger")
		http.Error(w, "Failed to load ledger", http.StatusInternalServerError)
		return
	}

	streak, err := h.groomSvc.GetStreak(horseID, now)
	if err != nil {
		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Failed to compute streak")
		http.Error(w, "Failed to compute streak", http.StatusInternalServerError)
		return
	}

	finalized, err := h.milestone.GetFinalized(horseID)
	if err != nil {
		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Failed to load milestones")
		http.Error(w, "Failed to load milestones", http.StatusInternalServerError)
		return
	}

	// Every catalog milestone appears in the response; ones without a stored
	// terminal record are reported as pending.
	milestoneViews := make([]map[string]interface{}, 0, len(h.catalog.Milestones()))
	for _, def := range h.catalog.Milestones() {
		view := map[string]interface{}{
			"index":  def.Index,
			"name":   def.Name,
			"status": string(milestones.StatusPending),
		}
		if rec, ok := finalized[def.Index]; ok {
			view["status"] = string(rec.Status)
			view["age_at_evaluation_days"] = rec.AgeAtEvaluationDays
			view["traits_granted"] = rec.TraitsGranted
		}
		milestoneViews = append(milestoneViews, view)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"horse": map[string]interface{}{
				"id":       horse.ID,
				"name":     horse.Name,
				"sex":      string(horse.Sex),
				"born_at":  horse.BornAt,
				"sire_id":  horse.SireID,
				"dam_id":   horse.DamID,
				"age_days": horse.AgeDays(now),
			},
			"traits": map[string]interface{}{
				"positive": bundle.Positive.Sorted(),
				"negative": bundle.Negative.Sorted(),
				"hidden":   bundle.Hidden.Sorted(),
			},
			"ledger": map[string]interface{}{
				"task_counts":        ledger.TaskCounts,
				"total_interactions": ledger.TotalInteractions(),
				"streak_days":        streak,
			},
			"milestones": milestoneViews,
		},
	})
}

// HandleGetStreak handles GET /api/horses/{horseId}/streak
func (h *Handler) HandleGetStreak(w http.ResponseWriter, r *http.Request) {
	horseID := chi.URLParam(r, "horseId")

	horse, err := h.repo.Get(horseID)
	if err != nil {
		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Failed to load horse")
		http.Error(w, "Failed to load horse", http.StatusInternalServerError)
		return
	}
	if horse == nil {
		http.Error(w, "Horse not found", http.StatusNotFound)
		return
	}

	streak, err := h.groomSvc.GetStreak(horseID, h.clock.Now())
	if err != nil {
		h.log.Error().Err(err).Str("horse_id", horseID).Msg("Failed to compute streak")
		http.Error(w, "Failed to compute streak", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"horse_id":    horseID,
			"streak_days": streak,
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

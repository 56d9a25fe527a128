package unlocks

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/genetics"
	"github.com/rosehill/paddock/internal/modules/grooming"
	"github.com/rosehill/paddock/internal/modules/horses"
	"github.com/rosehill/paddock/internal/modules/milestones"
)

// Service assembles unlock histories from stored state and performs the
// optional draw-and-grant step on top of the pure evaluator.
type Service struct {
	evaluator  *Evaluator
	horses     *horses.Repository
	grooming   *grooming.Service
	milestones *milestones.Repository
	log        zerolog.Logger
}

// NewService creates a new unlock service
func NewService(
	evaluator *Evaluator,
	horseRepo *horses.Repository,
	groomSvc *grooming.Service,
	milestoneRepo *milestones.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		evaluator:  evaluator,
		horses:     horseRepo,
		grooming:   groomSvc,
		milestones: milestoneRepo,
		log:        log.With().Str("service", "unlocks").Logger(),
	}
}

// AssembleHistory builds the unlock history for a horse from the care event
// log, the interaction ledger and the stored milestone records.
func (s *Service) AssembleHistory(horseID string) (History, error) {
	stress, recoveries, err := s.grooming.CareEventCounts(horseID)
	if err != nil {
		return History{}, err
	}

	ledger, err := s.grooming.GetLedger(horseID)
	if err != nil {
		return History{}, err
	}

	longest, err := s.grooming.LongestStreak(horseID)
	if err != nil {
		return History{}, err
	}

	finalized, err := s.milestones.GetFinalized(horseID)
	if err != nil {
		return History{}, err
	}

	history := History{
		StressEvents:         stress,
		SuccessfulRecoveries: recoveries,
		TotalInteractions:    ledger.TotalInteractions(),
		LongestStreakDays:    longest,
	}
	for _, rec := range finalized {
		switch rec.Status {
		case milestones.StatusCompleted:
			history.MilestonesCompleted++
		case milestones.StatusSkipped:
			history.MilestonesSkipped++
		}
	}
	return history, nil
}

// Evaluate runs the pure evaluator against the horse's assembled history
func (s *Service) Evaluate(horseID string, groomBonus int) ([]Evaluation, domain.TraitBundle, error) {
	history, err := s.AssembleHistory(horseID)
	if err != nil {
		return nil, domain.TraitBundle{}, err
	}

	bundle, err := s.horses.GetBundle(horseID)
	if err != nil {
		return nil, domain.TraitBundle{}, err
	}

	return s.evaluator.EvaluateUltraRare(history, bundle, groomBonus), bundle, nil
}

// Draw rolls every eligible evaluation with the given roller and grants the
// winners into the horse's bundle. Ultra-rares are never hidden; they land in
// the positive set the moment they are won. Returns the granted trait ids in
// deterministic (sorted) order.
func (s *Service) Draw(horseID string, evaluations []Evaluation, bundle domain.TraitBundle, roller genetics.Roller) ([]string, error) {
	var granted []string
	for _, eval := range evaluations {
		if !eval.Eligible {
			continue
		}
		if roller.Draw(eval.AdjustedProbability) {
			bundle.Positive.Add(eval.TraitID)
			granted = append(granted, eval.TraitID)
		}
	}

	if len(granted) == 0 {
		return nil, nil
	}
	sort.Strings(granted)

	if err := s.horses.SaveBundle(horseID, bundle); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("horse_id", horseID).
		Strs("traits", granted).
		Msg("Ultra-rare traits granted")

	return granted, nil
}

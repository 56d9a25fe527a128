package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/milestones"
)

// HorseLister provides the ids of every horse in the stable
type HorseLister interface {
	ListIDs() ([]string, error)
	Get(id string) (*domain.Horse, error)
}

// MilestoneSweepJob runs the milestone evaluator over every horse. Its main
// purpose is closing overdue windows: a horse nobody looks at must still have
// its missed milestones finalized as skipped.
type MilestoneSweepJob struct {
	horses    HorseLister
	evaluator *milestones.Service
	clock     domain.Clock
	log       zerolog.Logger
}

// NewMilestoneSweepJob creates a new milestone sweep job
func NewMilestoneSweepJob(horses HorseLister, evaluator *milestones.Service, clock domain.Clock, log zerolog.Logger) *MilestoneSweepJob {
	return &MilestoneSweepJob{
		horses:    horses,
		evaluator: evaluator,
		clock:     clock,
		log:       log.With().Str("job", "milestone_sweep").Logger(),
	}
}

// Name returns the job name
func (j *MilestoneSweepJob) Name() string {
	return "milestone_sweep"
}

// Run evaluates milestones for every horse. One bad horse (a sequence fault)
// is logged and skipped rather than aborting the sweep.
func (j *MilestoneSweepJob) Run() error {
	start := time.Now()

	ids, err := j.horses.ListIDs()
	if err != nil {
		return err
	}

	now := j.clock.Now()
	evaluated, faults := 0, 0
	for _, id := range ids {
		horse, err := j.horses.Get(id)
		if err != nil || horse == nil {
			faults++
			j.log.Error().Err(err).Str("horse_id", id).Msg("Failed to load horse for sweep")
			continue
		}

		if _, err := j.evaluator.Evaluate(*horse, now); err != nil {
			faults++
			j.log.Error().Err(err).Str("horse_id", id).Msg("Sweep evaluation failed")
			continue
		}
		evaluated++
	}

	j.log.Info().
		Int("horses", len(ids)).
		Int("evaluated", evaluated).
		Int("faults", faults).
		Dur("elapsed", time.Since(start)).
		Msg("Milestone sweep finished")

	return nil
}

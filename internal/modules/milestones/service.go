package milestones

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/catalog"
	"github.com/rosehill/paddock/internal/modules/grooming"
)

// LedgerView exposes the interaction history the evaluator reads
type LedgerView interface {
	GetLedger(horseID string) (grooming.Ledger, error)
	GetStreak(horseID string, asOf time.Time) (int, error)
}

// BundleStore reads and writes trait bundles
type BundleStore interface {
	GetBundle(horseID string) (domain.TraitBundle, error)
	SaveBundle(horseID string, bundle domain.TraitBundle) error
}

// Service evaluates milestones strictly in index order. Terminal records are
// never revisited: a completed or skipped milestone keeps its outcome no
// matter how often the horse is re-evaluated.
type Service struct {
	repo    *Repository
	catalog *catalog.Catalog
	ledger  LedgerView
	bundles BundleStore
	log     zerolog.Logger
}

// NewService creates a new milestone evaluator
func NewService(repo *Repository, cat *catalog.Catalog, ledger LedgerView, bundles BundleStore, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		ledger:  ledger,
		bundles: bundles,
		log:     log.With().Str("service", "milestones").Logger(),
	}
}

// Evaluate walks every milestone for the horse at the given time. Overdue
// pending milestones are skipped (irreversibly forfeiting their grants),
// milestones inside their window are checked against the ledger, and any
// newly granted traits are merged into the horse's bundle.
func (s *Service) Evaluate(horse domain.Horse, at time.Time) (*Result, error) {
	ageDays := horse.AgeDays(at)

	finalized, err := s.repo.GetFinalized(horse.ID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStoredOrder(finalized); err != nil {
		return nil, err
	}

	ledger, err := s.ledger.GetLedger(horse.ID)
	if err != nil {
		return nil, err
	}
	streak, err := s.ledger.GetStreak(horse.ID, at)
	if err != nil {
		return nil, err
	}
	bundle, err := s.bundles.GetBundle(horse.ID)
	if err != nil {
		return nil, err
	}

	result := &Result{GrantedTraits: []string{}}
	bundleChanged := false
	prevTerminal := true

	for _, def := range s.catalog.Milestones() {
		if rec, done := finalized[def.Index]; done {
			result.Records = append(result.Records, rec)
			prevTerminal = true
			continue
		}

		switch {
		case def.WindowPassed(ageDays):
			if !prevTerminal {
				return nil, domain.NewSequenceError(
					"milestone %d reached while milestone %d is not terminal for horse %s",
					def.Index, def.Index-1, horse.ID,
				)
			}
			rec := s.finalize(horse.ID, def, StatusSkipped, ageDays, nil, at)
			if err := s.repo.SaveFinalized(rec); err != nil {
				return nil, err
			}
			result.Records = append(result.Records, rec)
			result.Skipped = append(result.Skipped, def.Index)
			prevTerminal = true

		case def.InWindow(ageDays):
			if !prevTerminal {
				return nil, domain.NewSequenceError(
					"milestone %d evaluated while milestone %d is not terminal for horse %s",
					def.Index, def.Index-1, horse.ID,
				)
			}
			if !thresholdsMet(def, ledger, streak) {
				result.Records = append(result.Records, s.pending(horse.ID, def, ageDays))
				prevTerminal = false
				continue
			}

			granted := s.applyGrants(def, bundle)
			if len(granted) > 0 {
				bundleChanged = true
			}
			rec := s.finalize(horse.ID, def, StatusCompleted, ageDays, granted, at)
			if err := s.repo.SaveFinalized(rec); err != nil {
				return nil, err
			}
			result.Records = append(result.Records, rec)
			result.Completed = append(result.Completed, def.Index)
			result.GrantedTraits = append(result.GrantedTraits, granted...)
			prevTerminal = true

		default:
			// Window not open yet
			result.Records = append(result.Records, s.pending(horse.ID, def, ageDays))
			prevTerminal = false
		}
	}

	if bundleChanged {
		if err := s.bundles.SaveBundle(horse.ID, bundle); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// checkStoredOrder verifies the persisted records respect the strict
// evaluation order. A later milestone finalized before an earlier one means a
// caller bypassed the evaluator; that is a fault, not a business rejection.
func (s *Service) checkStoredOrder(finalized map[int]Record) error {
	defs := s.catalog.Milestones()
	for i := 1; i < len(defs); i++ {
		_, curr := finalized[defs[i].Index]
		_, prev := finalized[defs[i-1].Index]
		if curr && !prev {
			return domain.NewSequenceError(
				"milestone %d is finalized but milestone %d is not",
				defs[i].Index, defs[i-1].Index,
			)
		}
	}
	return nil
}

// thresholdsMet checks the ledger against a milestone's requirements
func thresholdsMet(def catalog.MilestoneDefinition, ledger grooming.Ledger, streak int) bool {
	if streak < def.RequiredStreakDays {
		return false
	}
	for task, required := range def.RequiredTaskCounts {
		if ledger.TaskCounts[task] < required {
			return false
		}
	}
	return true
}

// applyGrants merges a milestone's trait grants into the bundle, returning
// the ids actually granted. Traits the horse already carries are not granted
// twice.
func (s *Service) applyGrants(def catalog.MilestoneDefinition, bundle domain.TraitBundle) []string {
	var granted []string
	for _, id := range def.GrantsTraits {
		if bundle.Has(id) {
			continue
		}
		traitDef, ok := s.catalog.Trait(id)
		if !ok {
			continue
		}
		switch {
		case traitDef.DiscoverableLater:
			bundle.Hidden.Add(id)
		case traitDef.Polarity == catalog.PolarityNegative:
			bundle.Negative.Add(id)
		default:
			bundle.Positive.Add(id)
		}
		granted = append(granted, id)
	}
	return granted
}

func (s *Service) pending(horseID string, def catalog.MilestoneDefinition, ageDays int) Record {
	return Record{
		HorseID:             horseID,
		MilestoneIndex:      def.Index,
		Status:              StatusPending,
		AgeAtEvaluationDays: ageDays,
		TraitsGranted:       []string{},
	}
}

func (s *Service) finalize(horseID string, def catalog.MilestoneDefinition, status Status, ageDays int, granted []string, at time.Time) Record {
	finalizedAt := at.UTC()
	if granted == nil {
		granted = []string{}
	}
	return Record{
		HorseID:             horseID,
		MilestoneIndex:      def.Index,
		Status:              status,
		AgeAtEvaluationDays: ageDays,
		TraitsGranted:       granted,
		FinalizedAt:         &finalizedAt,
	}
}

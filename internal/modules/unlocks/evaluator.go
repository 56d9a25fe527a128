package unlocks

import (
	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/catalog"
)

// Evaluator checks ultra-rare requirements against a horse's history
type Evaluator struct {
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// NewEvaluator creates a new ultra-rare evaluator
func NewEvaluator(cat *catalog.Catalog, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		catalog: cat,
		log:     log.With().Str("service", "unlocks").Logger(),
	}
}

// EvaluateUltraRare produces one evaluation per ultra-rare catalog entry, in
// catalog order. A trait the horse already carries, or whose requirements the
// history fails, comes back ineligible with probability 0; otherwise the
// probability is the base chance plus the groom bonus. The bonus is clamped
// to [0,100] so out-of-range caller input cannot lower the base chance or
// push the probability past certainty.
func (e *Evaluator) EvaluateUltraRare(history History, bundle domain.TraitBundle, groomBonus int) []Evaluation {
	if groomBonus < 0 {
		groomBonus = 0
	}
	if groomBonus > 100 {
		groomBonus = 100
	}

	defs := e.catalog.UltraRares()
	evaluations := make([]Evaluation, 0, len(defs))

	for _, def := range defs {
		eval := Evaluation{TraitID: def.TraitID}

		if !bundle.Has(def.TraitID) && meetsRequirements(def.Requirements, history) {
			eval.Eligible = true
			eval.AdjustedProbability = def.BaseProbability + float64(groomBonus)
			if eval.AdjustedProbability > 100 {
				eval.AdjustedProbability = 100
			}
		}

		evaluations = append(evaluations, eval)
	}
	return evaluations
}

func meetsRequirements(req catalog.UltraRareRequirements, h History) bool {
	if h.StressEvents < req.MinStressEvents {
		return false
	}
	if req.MaxStressEvents != nil && h.StressEvents > *req.MaxStressEvents {
		return false
	}
	if h.SuccessfulRecoveries < req.MinRecoveries {
		return false
	}
	if req.MaxMilestonesSkipped != nil && h.MilestonesSkipped > *req.MaxMilestonesSkipped {
		return false
	}
	if h.MilestonesCompleted < req.MinMilestonesCompleted {
		return false
	}
	if h.TotalInteractions < req.MinTotalInteractions {
		return false
	}
	if h.LongestStreakDays < req.MinStreakDays {
		return false
	}
	return true
}

package genetics

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/catalog"
)

// Resolver turns inheritance candidates into a newborn's trait bundle
type Resolver struct {
	catalog *catalog.Catalog
	balance Balance
	log     zerolog.Logger
}

// NewResolver creates a new birth trait resolver
func NewResolver(cat *catalog.Catalog, balance Balance, log zerolog.Logger) *Resolver {
	return &Resolver{
		catalog: cat,
		balance: balance,
		log:     log.With().Str("component", "birth_resolver").Logger(),
	}
}

// drawnTrait is a candidate that survived its Bernoulli draw
type drawnTrait struct {
	def      catalog.TraitDefinition
	adjusted float64
}

// ResolveBirthTraits draws each candidate independently against its
// care-adjusted probability and assembles the newborn bundle. Sparse input is
// fine (the mutation channel still proposes traits); only an out-of-range
// care context is an error, rejected before any draw.
func (r *Resolver) ResolveBirthTraits(candidates []Candidate, care CareContext, roller Roller) (domain.TraitBundle, error) {
	if care.StressLevel < 0 || care.StressLevel > 100 {
		return domain.TraitBundle{}, domain.NewValidationError("stress level must be in [0,100], got %d", care.StressLevel)
	}
	if care.FeedQuality < 0 || care.FeedQuality > 100 {
		return domain.TraitBundle{}, domain.NewValidationError("feed quality must be in [0,100], got %d", care.FeedQuality)
	}

	var drawn []drawnTrait
	for _, cand := range candidates {
		def, ok := r.catalog.Trait(cand.TraitID)
		if !ok {
			r.log.Warn().Str("trait", cand.TraitID).Msg("Skipping candidate not in catalog")
			continue
		}

		adjusted := r.AdjustProbability(cand.Probability, def.Polarity, care)
		if roller.Draw(adjusted) {
			drawn = append(drawn, drawnTrait{def: def, adjusted: adjusted})
		}
	}

	bundle := domain.NewTraitBundle()
	for _, d := range r.pruneConflicts(drawn) {
		placeTrait(bundle, d.def)
	}

	return bundle, nil
}

// AdjustProbability applies the care-context modifier for a trait of the
// given polarity. Good care (low stress, high feed quality) amplifies
// positive traits and suppresses negative ones; poor care does the inverse.
// Neutral traits are unaffected.
func (r *Resolver) AdjustProbability(probability float64, polarity catalog.Polarity, care CareContext) float64 {
	if polarity == catalog.PolarityNeutral {
		return clampProbability(probability)
	}

	delta := 0.0
	switch {
	case care.StressLevel < 30:
		delta += r.balance.CareModifier
	case care.StressLevel > 70:
		delta -= r.balance.CareModifier
	}
	switch {
	case care.FeedQuality > 70:
		delta += r.balance.CareModifier
	case care.FeedQuality < 30:
		delta -= r.balance.CareModifier
	}

	if polarity == catalog.PolarityNegative {
		delta = -delta
	}

	return clampProbability(probability + delta)
}

// pruneConflicts drops the weaker member of each drawn conflicting pair.
// Candidates are processed strongest-first (ties by trait id), so the kept
// trait of a pair is always the one with the higher adjusted probability.
func (r *Resolver) pruneConflicts(drawn []drawnTrait) []drawnTrait {
	sort.Slice(drawn, func(i, j int) bool {
		if drawn[i].adjusted != drawn[j].adjusted {
			return drawn[i].adjusted > drawn[j].adjusted
		}
		return drawn[i].def.ID < drawn[j].def.ID
	})

	kept := make([]drawnTrait, 0, len(drawn))
	for _, d := range drawn {
		conflicted := false
		for _, k := range kept {
			if r.catalog.Conflicts(d.def.ID, k.def.ID) {
				conflicted = true
				r.log.Debug().
					Str("dropped", d.def.ID).
					Str("kept", k.def.ID).
					Msg("Pruned conflicting birth trait")
				break
			}
		}
		if !conflicted {
			kept = append(kept, d)
		}
	}

	return kept
}

// placeTrait files a drawn trait into the correct bundle set
func placeTrait(bundle domain.TraitBundle, def catalog.TraitDefinition) {
	switch {
	case def.DiscoverableLater:
		bundle.Hidden.Add(def.ID)
	case def.Polarity == catalog.PolarityNegative:
		bundle.Negative.Add(def.ID)
	default:
		bundle.Positive.Add(def.ID)
	}
}

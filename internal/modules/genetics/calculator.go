package genetics

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/catalog"
)

// Calculator computes per-trait inheritance probabilities from two parent
// trait sets plus optional ancestor sets
type Calculator struct {
	catalog *catalog.Catalog
	balance Balance
	log     zerolog.Logger
}

// NewCalculator creates a new inheritance calculator
func NewCalculator(cat *catalog.Catalog, balance Balance, log zerolog.Logger) *Calculator {
	return &Calculator{
		catalog: cat,
		balance: balance,
		log:     log.With().Str("component", "inheritance").Logger(),
	}
}

// ComputeInheritance returns one candidate per trait reachable from the
// parents, the lineage, or the mutation channel. The result is sorted by
// probability descending, ties broken by trait id, so identical inputs always
// produce the identical list.
func (c *Calculator) ComputeInheritance(sire, dam domain.TraitSet, lineage domain.Lineage) []Candidate {
	union := make(domain.TraitSet)
	for id := range sire {
		union.Add(id)
	}
	for id := range dam {
		union.Add(id)
	}
	for _, ancestor := range lineage {
		for id := range ancestor {
			union.Add(id)
		}
	}

	candidates := make([]Candidate, 0, len(union))
	for id := range union {
		if _, known := c.catalog.Trait(id); !known {
			c.log.Warn().Str("trait", id).Msg("Skipping unknown trait in parent/lineage input")
			continue
		}
		candidates = append(candidates, c.scoreTrait(id, sire, dam, lineage))
	}

	// Mutation channel: catalog traits absent from every input may still
	// surface as spontaneous epigenetic variation. Acquired traits are only
	// grantable through milestones and exotic traits only through the unlock
	// evaluator, so neither participates.
	for _, def := range c.catalog.Traits() {
		if union.Has(def.ID) {
			continue
		}
		if def.Category == catalog.CategoryAcquired || def.Rarity == catalog.RarityExotic {
			continue
		}
		candidates = append(candidates, Candidate{
			TraitID:     def.ID,
			Probability: clampProbability(c.balance.MutationRate),
			Source:      SourceMutation,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Probability != candidates[j].Probability {
			return candidates[i].Probability > candidates[j].Probability
		}
		return candidates[i].TraitID < candidates[j].TraitID
	})

	return candidates
}

// scoreTrait assigns probability and source for a trait present in at least
// one input set
func (c *Calculator) scoreTrait(id string, sire, dam domain.TraitSet, lineage domain.Lineage) Candidate {
	inSire := sire.Has(id)
	inDam := dam.Has(id)
	carriers := lineage.CarrierCount(id)

	var probability float64
	var source Source

	switch {
	case inSire && inDam:
		probability = c.balance.SharedParentWeight
		// Both parents contribute equally; the tie goes to the sire.
		source = SourceSire
	case inSire:
		probability = c.balance.SingleParentWeight
		source = SourceSire
	case inDam:
		probability = c.balance.SingleParentWeight
		source = SourceDam
	default:
		probability = c.balance.LineageWeight
		source = SourceLineage
	}

	// Ancestors reinforce a parent-sourced trait; lineage-only traits already
	// carry the flat lineage weight.
	if source != SourceLineage && carriers > 0 {
		bonus := float64(carriers) * c.balance.LineageCarrierBonus
		if bonus > c.balance.LineageBonusCap {
			bonus = c.balance.LineageBonusCap
		}
		probability += bonus
	}

	return Candidate{
		TraitID:     id,
		Probability: clampProbability(probability),
		Source:      source,
	}
}

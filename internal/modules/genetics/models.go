// Package genetics implements the inheritance calculator and the birth trait
// resolver. Both are pure computations: the calculator is deterministic, and
// the resolver draws against an injected random source so outcomes are
// reproducible in tests.
package genetics

// Source attributes where an inherited trait candidate came from
type Source string

const (
	SourceSire     Source = "sire"
	SourceDam      Source = "dam"
	SourceLineage  Source = "lineage"
	SourceMutation Source = "mutation"
)

// Candidate is one trait proposal with its inheritance probability (percent)
type Candidate struct {
	TraitID     string  `json:"trait_id"`
	Probability float64 `json:"probability"`
	Source      Source  `json:"source"`
}

// CareContext carries the care-quality signals measured at the moment of
// birth. Both values are percentages in [0,100].
type CareContext struct {
	StressLevel int `json:"stress_level"`
	FeedQuality int `json:"feed_quality"`
}

// Balance holds the tunable game-balance parameters of the engine. The
// defaults encode the intended relationships (a shared trait weighs twice a
// single-parent trait, lineage is a bonus rather than a baseline source); the
// absolute numbers are balance knobs, not contracts.
type Balance struct {
	SharedParentWeight  float64 // trait present in both parents
	SingleParentWeight  float64 // trait present in exactly one parent
	LineageWeight       float64 // trait present only in ancestors
	LineageCarrierBonus float64 // per ancestor carrying a parent-sourced trait
	LineageBonusCap     float64 // cap on the accumulated carrier bonus
	MutationRate        float64 // spontaneous proposal for absent traits
	CareModifier        float64 // per care signal, applied by polarity
}

// DefaultBalance returns the shipped tuning
func DefaultBalance() Balance {
	return Balance{
		SharedParentWeight:  50,
		SingleParentWeight:  25,
		LineageWeight:       10,
		LineageCarrierBonus: 5,
		LineageBonusCap:     15,
		MutationRate:        2,
		CareModifier:        10,
	}
}

// clampProbability keeps a percentage inside [0,100]
func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

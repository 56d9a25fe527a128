// Package catalog provides the static trait, task and milestone definition
// tables the breeding engine evaluates against. The catalog is loaded once at
// startup and is read-only afterwards, so it is safe to share across
// concurrent evaluations.
package catalog

import "fmt"

// Category classifies how a trait is acquired
type Category string

const (
	CategoryGenetic    Category = "genetic"
	CategoryEpigenetic Category = "epigenetic"
	CategoryAcquired   Category = "acquired"
)

// IsValid checks if the category is one of the known values
func (c Category) IsValid() bool {
	return c == CategoryGenetic || c == CategoryEpigenetic || c == CategoryAcquired
}

// Rarity represents a trait's rarity tier
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityEpic     Rarity = "epic"
	RarityExotic   Rarity = "exotic"
)

// IsValid checks if the rarity is one of the known tiers
func (r Rarity) IsValid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityExotic:
		return true
	}
	return false
}

// Polarity marks whether a trait helps or hinders the horse
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
	PolarityNeutral  Polarity = "neutral"
)

// IsValid checks if the polarity is one of the known values
func (p Polarity) IsValid() bool {
	return p == PolarityPositive || p == PolarityNegative || p == PolarityNeutral
}

// TraitDefinition is an immutable trait catalog entry
type TraitDefinition struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Category          Category           `json:"category"`
	Rarity            Rarity             `json:"rarity"`
	Polarity          Polarity           `json:"polarity"`
	StatImpacts       map[string]float64 `json:"stat_impacts,omitempty"`
	DiscoverableLater bool               `json:"discoverable_later,omitempty"`
	ConflictsWith     []string           `json:"conflicts_with,omitempty"`
}

// TaskDefinition describes a caretaking task and the age band in which it may
// be performed. The window is half-open: [MinAgeDays, MaxAgeDays).
type TaskDefinition struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MinAgeDays int    `json:"min_age_days"`
	MaxAgeDays int    `json:"max_age_days"`
}

// EligibleAt reports whether the task may be performed at the given age
func (t TaskDefinition) EligibleAt(ageDays int) bool {
	return ageDays >= t.MinAgeDays && ageDays < t.MaxAgeDays
}

// WindowString renders the eligible age band for user-facing messages
func (t TaskDefinition) WindowString() string {
	return fmt.Sprintf("day %d to day %d", t.MinAgeDays, t.MaxAgeDays-1)
}

// MilestoneDefinition describes one age-gated development checkpoint
type MilestoneDefinition struct {
	Index              int            `json:"index"`
	Name               string         `json:"name"`
	WindowStartDays    int            `json:"window_start_days"`
	WindowEndDays      int            `json:"window_end_days"` // exclusive
	RequiredTaskCounts map[string]int `json:"required_task_counts"`
	RequiredStreakDays int            `json:"required_streak_days"`
	GrantsTraits       []string       `json:"grants_traits,omitempty"`
}

// InWindow reports whether the age falls inside the evaluation window
func (m MilestoneDefinition) InWindow(ageDays int) bool {
	return ageDays >= m.WindowStartDays && ageDays < m.WindowEndDays
}

// WindowPassed reports whether the window has closed at the given age
func (m MilestoneDefinition) WindowPassed(ageDays int) bool {
	return ageDays >= m.WindowEndDays
}

// UltraRareRequirements is the historical predicate gating an ultra-rare
// trait. Min fields default to zero (no requirement); nil Max fields mean
// unbounded.
type UltraRareRequirements struct {
	MinStressEvents          int  `json:"min_stress_events,omitempty"`
	MaxStressEvents          *int `json:"max_stress_events,omitempty"`
	MinRecoveries            int  `json:"min_recoveries,omitempty"`
	MaxMilestonesSkipped     *int `json:"max_milestones_skipped,omitempty"`
	MinMilestonesCompleted   int  `json:"min_milestones_completed,omitempty"`
	MinTotalInteractions     int  `json:"min_total_interactions,omitempty"`
	MinStreakDays            int  `json:"min_streak_days,omitempty"`
}

// UltraRareDefinition binds an exotic trait to its unlock predicate and base
// probability. The groom bonus is supplied by the caller at evaluation time.
type UltraRareDefinition struct {
	TraitID         string                `json:"trait_id"`
	BaseProbability float64               `json:"base_probability"`
	Requirements    UltraRareRequirements `json:"requirements"`
}

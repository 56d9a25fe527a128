// Package unlocks evaluates ultra-rare trait eligibility. The evaluator is a
// pure function over a horse's accumulated history; the caller performs the
// actual probability draw and grant.
package unlocks

// History summarizes everything an ultra-rare requirement can gate on,
// assembled from the interaction ledger, care events and milestone records.
type History struct {
	StressEvents         int `json:"stress_events"`
	SuccessfulRecoveries int `json:"successful_recoveries"`
	MilestonesSkipped    int `json:"milestones_skipped"`
	MilestonesCompleted  int `json:"milestones_completed"`
	TotalInteractions    int `json:"total_interactions"`
	LongestStreakDays    int `json:"longest_streak_days"`
}

// Evaluation is the eligibility verdict for one ultra-rare trait
type Evaluation struct {
	TraitID             string  `json:"trait_id"`
	Eligible            bool    `json:"eligible"`
	AdjustedProbability float64 `json:"adjusted_probability"`
}

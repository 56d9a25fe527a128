// Package milestones implements the age-gated development checkpoints. Each
// milestone is a one-way state machine: pending until its window closes or
// its thresholds are met, then terminal forever.
package milestones

import "time"

// Status is a milestone's lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// IsTerminal reports whether the status can no longer change
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// Record is the evaluation state of one milestone for one horse.
// Terminal records are immutable.
type Record struct {
	HorseID             string     `json:"horse_id"`
	MilestoneIndex      int        `json:"milestone_index"`
	Status              Status     `json:"status"`
	AgeAtEvaluationDays int        `json:"age_at_evaluation_days"`
	TraitsGranted       []string   `json:"traits_granted"`
	FinalizedAt         *time.Time `json:"finalized_at,omitempty"`
}

// Result is the outcome of one evaluation pass
type Result struct {
	Records       []Record `json:"records"`
	GrantedTraits []string `json:"granted_traits"`
	Completed     []int    `json:"completed"` // indices finalized as completed this pass
	Skipped       []int    `json:"skipped"`   // indices finalized as skipped this pass
}

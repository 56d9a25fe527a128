// Package grooming implements the per-horse interaction ledger: the bounded,
// per-day record of caretaking interactions with streak and cooldown
// bookkeeping.
package grooming

import "time"

// Ledger is the aggregated caretaking state for one horse. Task counts only
// ever increase; the daily cap is enforced at write time.
type Ledger struct {
	HorseID           string         `json:"horse_id"`
	TaskCounts        map[string]int `json:"task_counts"`
	LastInteractionAt *time.Time     `json:"last_interaction_at,omitempty"`
}

// TotalInteractions sums the per-task counters
func (l Ledger) TotalInteractions() int {
	total := 0
	for _, n := range l.TaskCounts {
		total += n
	}
	return total
}

// Interaction is one successful caretaking session
type Interaction struct {
	HorseID         string    `json:"horse_id"`
	GroomID         string    `json:"groom_id,omitempty"`
	Task            string    `json:"task"`
	DurationMinutes int       `json:"duration_minutes"`
	Day             string    `json:"day"` // timezone-normalized YYYY-MM-DD
	RecordedAt      time.Time `json:"recorded_at"`
}

// CareEventKind distinguishes stress events from recoveries
type CareEventKind string

const (
	CareEventStress   CareEventKind = "stress"
	CareEventRecovery CareEventKind = "recovery"
)

// IsValid checks if the kind is one of the known values
func (k CareEventKind) IsValid() bool {
	return k == CareEventStress || k == CareEventRecovery
}

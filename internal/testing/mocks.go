package testing

import "time"

// ScriptedRoller replays a fixed sequence of draw outcomes, then draws false.
// Used wherever a test needs to force exact trait-draw results.
type ScriptedRoller struct {
	Outcomes []bool
	next     int
}

// Draw returns the next scripted outcome
func (r *ScriptedRoller) Draw(probability float64) bool {
	if r.next >= len(r.Outcomes) {
		return false
	}
	out := r.Outcomes[r.next]
	r.next++
	return out
}

// AlwaysRoller draws true for every probability above zero
type AlwaysRoller struct{}

// Draw returns true unless the probability is zero
func (AlwaysRoller) Draw(probability float64) bool {
	return probability > 0
}

// NeverRoller draws false for every probability below 100
type NeverRoller struct{}

// Draw returns false unless the probability is 100
func (NeverRoller) Draw(probability float64) bool {
	return probability >= 100
}

// Day is shorthand for building a UTC timestamp on a given calendar day
func Day(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

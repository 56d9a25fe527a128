// Package events provides a lightweight in-process event bus for engine
// events. Modules emit events when state changes and the server fans them out
// to SSE and websocket subscribers.
package events

import "time"

// EventType identifies the kind of engine event
type EventType string

const (
	// FoalBorn is emitted after a foal and its birth trait bundle are persisted
	FoalBorn EventType = "FOAL_BORN"

	// InteractionRecorded is emitted after a groom interaction is accepted
	InteractionRecorded EventType = "INTERACTION_RECORDED"

	// MilestoneCompleted is emitted when a milestone finalizes as completed
	MilestoneCompleted EventType = "MILESTONE_COMPLETED"

	// MilestoneSkipped is emitted when a milestone window closes unmet
	MilestoneSkipped EventType = "MILESTONE_SKIPPED"

	// TraitDiscovered is emitted when a trait is added to a horse's bundle
	// after birth (milestone grants, hidden trait discoveries)
	TraitDiscovered EventType = "TRAIT_DISCOVERED"

	// UltraRareGranted is emitted when an ultra-rare draw succeeds
	UltraRareGranted EventType = "ULTRA_RARE_GRANTED"

	// SystemStatusChanged is emitted by the status monitor
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
)

// AllTypes lists every event type the stream endpoints subscribe to
func AllTypes() []EventType {
	return []EventType{
		FoalBorn,
		InteractionRecorded,
		MilestoneCompleted,
		MilestoneSkipped,
		TraitDiscovered,
		UltraRareGranted,
		SystemStatusChanged,
	}
}

// Event is a single engine event as delivered to subscribers
type Event struct {
	Type      EventType              `json:"type"`
	Module    string                 `json:"module"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

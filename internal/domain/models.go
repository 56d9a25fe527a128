// Package domain provides core domain models and types.
package domain

import (
	"sort"
	"time"
)

// Sex represents a horse's sex
type Sex string

const (
	SexStallion Sex = "STALLION"
	SexMare     Sex = "MARE"
)

// IsValid checks if the sex is one of the known values
func (s Sex) IsValid() bool {
	return s == SexStallion || s == SexMare
}

// Horse represents a horse record
type Horse struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Sex    Sex       `json:"sex"`
	BornAt time.Time `json:"born_at"`
	SireID string    `json:"sire_id,omitempty"`
	DamID  string    `json:"dam_id,omitempty"`
}

// AgeDays returns the horse's age in whole days as of the given time.
// A horse born later the same day is age 0.
func (h Horse) AgeDays(asOf time.Time) int {
	if asOf.Before(h.BornAt) {
		return 0
	}
	return int(asOf.Sub(h.BornAt).Hours() / 24)
}

// TraitSet is a set of trait identifiers
type TraitSet map[string]bool

// NewTraitSet builds a set from trait identifiers
func NewTraitSet(ids ...string) TraitSet {
	s := make(TraitSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Has reports whether the set contains a trait
func (s TraitSet) Has(id string) bool {
	return s[id]
}

// Add adds a trait to the set
func (s TraitSet) Add(id string) {
	s[id] = true
}

// Remove removes a trait from the set
func (s TraitSet) Remove(id string) {
	delete(s, id)
}

// Sorted returns the trait ids in lexical order
func (s TraitSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TraitBundle holds a horse's expressed and hidden traits.
// A trait id appears in at most one of the three sets.
type TraitBundle struct {
	Positive TraitSet `json:"positive"`
	Negative TraitSet `json:"negative"`
	Hidden   TraitSet `json:"hidden"`
}

// NewTraitBundle creates an empty bundle with initialized sets
func NewTraitBundle() TraitBundle {
	return TraitBundle{
		Positive: make(TraitSet),
		Negative: make(TraitSet),
		Hidden:   make(TraitSet),
	}
}

// Has reports whether the trait is present in any of the three sets
func (b TraitBundle) Has(id string) bool {
	return b.Positive.Has(id) || b.Negative.Has(id) || b.Hidden.Has(id)
}

// Discover moves a hidden trait into the expressed set matching the given
// polarity sign (true = positive). It is a no-op when the trait is not hidden.
func (b TraitBundle) Discover(id string, positive bool) {
	if !b.Hidden.Has(id) {
		return
	}
	b.Hidden.Remove(id)
	if positive {
		b.Positive.Add(id)
	} else {
		b.Negative.Add(id)
	}
}

// Lineage is the read-only list of ancestor trait sets supplied by the caller
type Lineage []TraitSet

// CarrierCount returns how many ancestors carry the given trait
func (l Lineage) CarrierCount(id string) int {
	n := 0
	for _, s := range l {
		if s.Has(id) {
			n++
		}
	}
	return n
}

// Has reports whether any ancestor carries the trait
func (l Lineage) Has(id string) bool {
	return l.CarrierCount(id) > 0
}

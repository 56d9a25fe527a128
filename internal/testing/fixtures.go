package testing

import (
	"time"

	"github.com/rosehill/paddock/internal/domain"
)

// NewTestHorse builds a horse born the given number of days before asOf.
// The id doubles as the name to keep fixtures readable.
func NewTestHorse(id string, ageDays int, asOf time.Time) domain.Horse {
	return domain.Horse{
		ID:     id,
		Name:   id,
		Sex:    domain.SexMare,
		BornAt: asOf.AddDate(0, 0, -ageDays),
	}
}

// NewTestBundle builds a trait bundle from explicit id lists
func NewTestBundle(positive, negative, hidden []string) domain.TraitBundle {
	bundle := domain.NewTraitBundle()
	for _, id := range positive {
		bundle.Positive.Add(id)
	}
	for _, id := range negative {
		bundle.Negative.Add(id)
	}
	for _, id := range hidden {
		bundle.Hidden.Add(id)
	}
	return bundle
}

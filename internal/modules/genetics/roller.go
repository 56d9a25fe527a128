package genetics

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Roller resolves a single Bernoulli draw against a probability expressed as
// a percentage. Production code uses the seeded gonum roller; tests inject a
// scripted implementation for exact assertions.
type Roller interface {
	Draw(probability float64) bool
}

// BernoulliRoller draws from a seeded PRNG. Not cryptographic, and not meant
// to be: the same seed must reproduce the same foal.
type BernoulliRoller struct {
	src rand.Source
}

// NewBernoulliRoller creates a roller seeded with the given value
func NewBernoulliRoller(seed uint64) *BernoulliRoller {
	return &BernoulliRoller{src: rand.NewSource(seed)}
}

// Draw returns true with the given percentage probability
func (r *BernoulliRoller) Draw(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 100 {
		return true
	}
	b := distuv.Bernoulli{P: probability / 100, Src: r.src}
	return b.Rand() == 1
}

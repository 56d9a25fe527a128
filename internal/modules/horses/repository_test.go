package horses

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosehill/paddock/internal/domain"
	paddocktest "github.com/rosehill/paddock/internal/testing"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, cleanup := paddocktest.NewTestDB(t, "stable")
	t.Cleanup(cleanup)
	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestCreateAndGetHorse(t *testing.T) {
	repo := newTestRepo(t)

	horse := domain.Horse{
		ID:     "foal-1",
		Name:   "Willow",
		Sex:    domain.SexMare,
		BornAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		SireID: "sire-1",
		DamID:  "dam-1",
	}

	require.NoError(t, repo.Create(horse))

	got, err := repo.Get("foal-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, horse.ID, got.ID)
	assert.Equal(t, horse.Name, got.Name)
	assert.Equal(t, horse.Sex, got.Sex)
	assert.True(t, horse.BornAt.Equal(got.BornAt))
	assert.Equal(t, "sire-1", got.SireID)
	assert.Equal(t, "dam-1", got.DamID)
}

func TestGetMissingHorseReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveAndGetBundle(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(domain.Horse{
		ID: "foal-1", Name: "Willow", Sex: domain.SexMare,
		BornAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}))

	bundle := paddocktest.NewTestBundle(
		[]string{"fast", "calm"},
		[]string{"stubborn"},
		[]string{"resilient"},
	)
	require.NoError(t, repo.SaveBundle("foal-1", bundle))

	got, err := repo.GetBundle("foal-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"calm", "fast"}, got.Positive.Sorted())
	assert.Equal(t, []string{"stubborn"}, got.Negative.Sorted())
	assert.Equal(t, []string{"resilient"}, got.Hidden.Sorted())
}

func TestSaveBundleOverwritesExisting(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(domain.Horse{
		ID: "foal-1", Name: "Willow", Sex: domain.SexMare,
		BornAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}))

	first := paddocktest.NewTestBundle([]string{"calm"}, nil, []string{"resilient"})
	require.NoError(t, repo.SaveBundle("foal-1", first))

	// Discovery moves resilient from hidden to positive
	second := paddocktest.NewTestBundle([]string{"calm", "resilient"}, nil, nil)
	require.NoError(t, repo.SaveBundle("foal-1", second))

	got, err := repo.GetBundle("foal-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"calm", "resilient"}, got.Positive.Sorted())
	assert.Empty(t, got.Hidden.Sorted())
}

func TestGetBundleMissingReturnsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetBundle("unknown")
	require.NoError(t, err)
	assert.Empty(t, got.Positive.Sorted())
	assert.Empty(t, got.Negative.Sorted())
	assert.Empty(t, got.Hidden.Sorted())
}

func TestTraitSetFlattensBundle(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(domain.Horse{
		ID: "sire-1", Name: "Ash", Sex: domain.SexStallion,
		BornAt: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, repo.SaveBundle("sire-1", paddocktest.NewTestBundle(
		[]string{"fast"}, []string{"stubborn"}, []string{"athletic"},
	)))

	set, err := repo.TraitSet("sire-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"athletic", "fast", "stubborn"}, set.Sorted())
}

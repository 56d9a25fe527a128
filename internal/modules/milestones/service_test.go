package milestones

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/catalog"
	"github.com/rosehill/paddock/internal/modules/grooming"
	paddocktest "github.com/rosehill/paddock/internal/testing"
)

// stubLedger serves a fixed ledger and streak
type stubLedger struct {
	ledger grooming.Ledger
	streak int
}

func (s *stubLedger) GetLedger(horseID string) (grooming.Ledger, error) {
	return s.ledger, nil
}

func (s *stubLedger) GetStreak(horseID string, asOf time.Time) (int, error) {
	return s.streak, nil
}

// stubBundles keeps the bundle in memory and records saves
type stubBundles struct {
	bundle domain.TraitBundle
	saves  int
}

func (s *stubBundles) GetBundle(horseID string) (domain.TraitBundle, error) {
	return s.bundle, nil
}

func (s *stubBundles) SaveBundle(horseID string, bundle domain.TraitBundle) error {
	s.bundle = bundle
	s.saves++
	return nil
}

type testEnv struct {
	svc     *Service
	repo    *Repository
	ledger  *stubLedger
	bundles *stubBundles
}

func newTestEnv(t *testing.T, cat *catalog.Catalog) *testEnv {
	t.Helper()

	db, cleanup := paddocktest.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)

	if cat == nil {
		loaded, err := catalog.Load()
		if err != nil {
			t.Fatalf("Failed to load catalog: %v", err)
		}
		cat = loaded
	}

	ledger := &stubLedger{ledger: grooming.Ledger{TaskCounts: map[string]int{}}}
	bundles := &stubBundles{bundle: domain.NewTraitBundle()}
	repo := NewRepository(db.Conn(), zerolog.Nop())

	return &testEnv{
		svc:     NewService(repo, cat, ledger, bundles, zerolog.Nop()),
		repo:    repo,
		ledger:  ledger,
		bundles: bundles,
	}
}

func recordAt(t *testing.T, result *Result, index int) Record {
	t.Helper()
	for _, rec := range result.Records {
		if rec.MilestoneIndex == index {
			return rec
		}
	}
	t.Fatalf("No record for milestone %d", index)
	return Record{}
}

func TestMilestonePendingBeforeThresholdsMet(t *testing.T) {
	env := newTestEnv(t, nil)
	now := paddocktest.Day(2026, 4, 10, 12)
	foal := paddocktest.NewTestHorse("foal-1", 2, now)

	result, err := env.svc.Evaluate(foal, now)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if got := recordAt(t, result, 0).Status; got != StatusPending {
		t.Errorf("Expected milestone 0 pending, got %s", got)
	}
	if len(result.Completed)+len(result.Skipped) != 0 {
		t.Error("Nothing should finalize for an unmet in-window milestone")
	}
}

func TestMilestoneCompletesAndGrantsTraits(t *testing.T) {
	env := newTestEnv(t, nil)
	now := paddocktest.Day(2026, 4, 10, 12)
	foal := paddocktest.NewTestHorse("foal-1", 4, now)

	// Imprinting needs trust_building x2, early_touch x1, streak 3
	env.ledger.ledger.TaskCounts = map[string]int{"trust_building": 2, "early_touch": 1}
	env.ledger.streak = 3

	result, err := env.svc.Evaluate(foal, now)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	rec := recordAt(t, result, 0)
	if rec.Status != StatusCompleted {
		t.Fatalf("Expected milestone 0 completed, got %s", rec.Status)
	}
	if len(result.GrantedTraits) != 1 || result.GrantedTraits[0] != "affectionate" {
		t.Errorf("Expected affectionate granted, got %v", result.GrantedTraits)
	}
	if !env.bundles.bundle.Positive.Has("affectionate") {
		t.Error("Expected granted trait merged into the bundle")
	}
	if env.bundles.saves != 1 {
		t.Errorf("Expected one bundle save, got %d", env.bundles.saves)
	}
	if rec.FinalizedAt == nil || !rec.FinalizedAt.Equal(now) {
		t.Errorf("Expected record finalized at the evaluation time %v, got %v", now, rec.FinalizedAt)
	}
}

func TestMilestoneStreakShortfallStaysPending(t *testing.T) {
	env := newTestEnv(t, nil)
	now := paddocktest.Day(2026, 4, 10, 12)
	foal := paddocktest.NewTestHorse("foal-1", 4, now)

	env.ledger.ledger.TaskCounts = map[string]int{"trust_building": 2, "early_touch": 1}
	env.ledger.streak = 2 // one short

	result, err := env.svc.Evaluate(foal, now)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if got := recordAt(t, result, 0).Status; got != StatusPending {
		t.Errorf("Expected pending on streak shortfall, got %s", got)
	}
}

func TestOverdueMilestoneIsSkipped(t *testing.T) {
	env := newTestEnv(t, nil)
	now := paddocktest.Day(2026, 5, 10, 12)
	foal := paddocktest.NewTestHorse("foal-1", 10, now) // window [0,7) has closed

	result, err := env.svc.Evaluate(foal, now)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	rec := recordAt(t, result, 0)
	if rec.Status != StatusSkipped {
		t.Fatalf("Expected milestone 0 skipped, got %s", rec.Status)
	}
	if len(rec.TraitsGranted) != 0 {
		t.Error("Skipped milestones must not grant traits")
	}
}

func TestSkippedMilestoneForfeitsGrantsPermanently(t *testing.T) {
	// One milestone with window [30,60); the horse is first seen at day 61.
	doc := `{
		"traits": [{"id": "well_mannered", "name": "Well Mannered", "category": "acquired", "rarity": "uncommon", "polarity": "positive"}],
		"tasks": [{"id": "trust_building", "name": "Trust Building", "min_age_days": 0, "max_age_days": 90}],
		"milestones": [{"index": 0, "name": "Handling", "window_start_days": 30, "window_end_days": 60,
			"required_task_counts": {"trust_building": 1}, "required_streak_days": 0, "grants_traits": ["well_mannered"]}]
	}`
	cat, err := catalog.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Failed to parse fixture catalog: %v", err)
	}
	env := newTestEnv(t, cat)

	now := paddocktest.Day(2026, 6, 1, 12)
	foal := paddocktest.NewTestHorse("foal-1", 61, now)

	result, err := env.svc.Evaluate(foal, now)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if got := recordAt(t, result, 0).Status; got != StatusSkipped {
		t.Fatalf("Expected skipped at day 61, got %s", got)
	}

	// Later the thresholds are abundantly met, but the outcome is locked in
	env.ledger.ledger.TaskCounts = map[string]int{"trust_building": 10}
	env.ledger.streak = 30

	later, err := env.svc.Evaluate(foal, now.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("Re-evaluation returned error: %v", err)
	}
	if got := recordAt(t, later, 0).Status; got != StatusSkipped {
		t.Errorf("Skipped must be terminal, got %s", got)
	}
	if env.bundles.bundle.Has("well_mannered") {
		t.Error("Forfeited trait must never be granted")
	}
}

func TestCompletedMilestoneIsImmutable(t *testing.T) {
	env := newTestEnv(t, nil)
	now := paddocktest.Day(2026, 4, 10, 12)
	foal := paddocktest.NewTestHorse("foal-1", 4, now)

	env.ledger.ledger.TaskCounts = map[string]int{"trust_building": 2, "early_touch": 1}
	env.ledger.streak = 3

	if _, err := env.svc.Evaluate(foal, now); err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	// The ledger regresses (which real counters cannot do) - the completed
	// record must still stand on re-evaluation at a later age.
	env.ledger.ledger.TaskCounts = map[string]int{}
	env.ledger.streak = 0

	later, err := env.svc.Evaluate(foal, now.AddDate(0, 0, 20))
	if err != nil {
		t.Fatalf("Re-evaluation returned error: %v", err)
	}
	rec := recordAt(t, later, 0)
	if rec.Status != StatusCompleted {
		t.Errorf("Completed must be terminal, got %s", rec.Status)
	}
	if len(later.Completed) != 0 {
		t.Error("Already-terminal milestones must not re-finalize")
	}
}

func TestGrantsAreNotDuplicated(t *testing.T) {
	env := newTestEnv(t, nil)
	now := paddocktest.Day(2026, 4, 10, 12)
	foal := paddocktest.NewTestHorse("foal-1", 4, now)

	// The horse was born with the trait milestone 0 would grant
	env.bundles.bundle.Positive.Add("affectionate")
	env.ledger.ledger.TaskCounts = map[string]int{"trust_building": 2, "early_touch": 1}
	env.ledger.streak = 3

	result, err := env.svc.Evaluate(foal, now)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if len(result.GrantedTraits) != 0 {
		t.Errorf("Expected no new grants, got %v", result.GrantedTraits)
	}
	if env.bundles.saves != 0 {
		t.Error("Bundle must not be rewritten when nothing changed")
	}
}

func TestOutOfOrderStoredRecordsRaiseSequenceError(t *testing.T) {
	env := newTestEnv(t, nil)
	now := paddocktest.Day(2026, 4, 10, 12)
	foal := paddocktest.NewTestHorse("foal-1", 10, now)

	// Simulate a caller that bypassed the evaluator and finalized milestone 1
	// without milestone 0 being terminal.
	finalized := paddocktest.Day(2026, 4, 8, 12)
	err := env.repo.SaveFinalized(Record{
		HorseID:             "foal-1",
		MilestoneIndex:      1,
		Status:              StatusCompleted,
		AgeAtEvaluationDays: 8,
		TraitsGranted:       []string{},
		FinalizedAt:         &finalized,
	})
	if err != nil {
		t.Fatalf("SaveFinalized returned error: %v", err)
	}

	_, err = env.svc.Evaluate(foal, now)
	if !domain.IsKind(err, domain.KindSequence) {
		t.Errorf("Expected SequenceError, got %v", err)
	}
}

func TestRepositoryKeepsFirstOutcome(t *testing.T) {
	env := newTestEnv(t, nil)

	finalized := paddocktest.Day(2026, 4, 8, 12)
	first := Record{
		HorseID: "foal-1", MilestoneIndex: 0, Status: StatusSkipped,
		AgeAtEvaluationDays: 8, TraitsGranted: []string{},
		FinalizedAt: &finalized,
	}
	if err := env.repo.SaveFinalized(first); err != nil {
		t.Fatalf("SaveFinalized returned error: %v", err)
	}

	// A conflicting second write is silently ignored
	second := first
	second.Status = StatusCompleted
	if err := env.repo.SaveFinalized(second); err != nil {
		t.Fatalf("SaveFinalized returned error: %v", err)
	}

	stored, err := env.repo.GetFinalized("foal-1")
	if err != nil {
		t.Fatalf("GetFinalized returned error: %v", err)
	}
	if stored[0].Status != StatusSkipped {
		t.Errorf("Expected first outcome to stand, got %s", stored[0].Status)
	}
}

func TestRepositoryRejectsPendingRecords(t *testing.T) {
	env := newTestEnv(t, nil)

	err := env.repo.SaveFinalized(Record{
		HorseID: "foal-1", MilestoneIndex: 0, Status: StatusPending,
	})
	if err == nil {
		t.Error("Expected error when persisting a pending record")
	}
}

func TestRepositoryRejectsRecordsWithoutFinalizationTime(t *testing.T) {
	env := newTestEnv(t, nil)

	err := env.repo.SaveFinalized(Record{
		HorseID: "foal-1", MilestoneIndex: 0, Status: StatusSkipped,
		AgeAtEvaluationDays: 8, TraitsGranted: []string{},
	})
	if err == nil {
		t.Error("Expected error when persisting a record without a finalization time")
	}
}

package grooming

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/catalog"
	paddocktest "github.com/rosehill/paddock/internal/testing"
)

// stubHorses serves fixed horse records
type stubHorses struct {
	horses map[string]domain.Horse
}

func (s *stubHorses) Get(id string) (*domain.Horse, error) {
	h, ok := s.horses[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func newTestService(t *testing.T, horses ...domain.Horse) *Service {
	t.Helper()

	db, cleanup := paddocktest.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	stub := &stubHorses{horses: make(map[string]domain.Horse)}
	for _, h := range horses {
		stub.horses[h.ID] = h
	}

	repo := NewRepository(db.Conn(), zerolog.Nop())
	return NewService(repo, stub, cat, time.UTC, zerolog.Nop())
}

func TestFirstInteractionCreatesLedger(t *testing.T) {
	now := paddocktest.Day(2026, 4, 1, 10)
	foal := paddocktest.NewTestHorse("foal-1", 0, now)
	svc := newTestService(t, foal)

	ledger, err := svc.RecordInteraction("foal-1", "groom-1", "trust_building", 30, now)
	if err != nil {
		t.Fatalf("RecordInteraction returned error: %v", err)
	}

	if got := ledger.TaskCounts["trust_building"]; got != 1 {
		t.Errorf("Expected trust_building count 1, got %d", got)
	}
	if ledger.LastInteractionAt == nil {
		t.Error("Expected last interaction timestamp to be set")
	}
}

func TestSecondInteractionSameDayIsRejected(t *testing.T) {
	now := paddocktest.Day(2026, 4, 1, 10)
	foal := paddocktest.NewTestHorse("foal-1", 0, now)
	svc := newTestService(t, foal)

	if _, err := svc.RecordInteraction("foal-1", "groom-1", "trust_building", 30, now); err != nil {
		t.Fatalf("First interaction failed: %v", err)
	}

	// Different task, same calendar day: still rejected, counters untouched
	_, err := svc.RecordInteraction("foal-1", "groom-1", "desensitization", 20, now.Add(2*time.Hour))
	if !domain.IsKind(err, domain.KindDailyLimit) {
		t.Fatalf("Expected DailyLimitExceeded, got %v", err)
	}

	ledger, err := svc.GetLedger("foal-1")
	if err != nil {
		t.Fatalf("GetLedger returned error: %v", err)
	}
	if got := ledger.TaskCounts["trust_building"]; got != 1 {
		t.Errorf("Expected trust_building count to stay 1, got %d", got)
	}
	if _, present := ledger.TaskCounts["desensitization"]; present {
		t.Error("Rejected interaction must not create a counter")
	}
}

func TestSameCallTwiceIsIdempotent(t *testing.T) {
	now := paddocktest.Day(2026, 4, 1, 10)
	foal := paddocktest.NewTestHorse("foal-1", 0, now)
	svc := newTestService(t, foal)

	if _, err := svc.RecordInteraction("foal-1", "groom-1", "trust_building", 30, now); err != nil {
		t.Fatalf("First interaction failed: %v", err)
	}

	_, err := svc.RecordInteraction("foal-1", "groom-1", "trust_building", 30, now)
	if !domain.IsKind(err, domain.KindDailyLimit) {
		t.Fatalf("Expected DailyLimitExceeded on replay, got %v", err)
	}

	ledger, _ := svc.GetLedger("foal-1")
	if got := ledger.TaskCounts["trust_building"]; got != 1 {
		t.Errorf("Replay must not double-count: got %d", got)
	}
}

func TestUniqueConstraintBackstopClassifiesAsDailyLimit(t *testing.T) {
	now := paddocktest.Day(2026, 4, 1, 10)
	foal := paddocktest.NewTestHorse("foal-1", 0, now)
	svc := newTestService(t, foal)

	// Write through the repository directly, simulating a second writer that
	// raced past the service-level existence check.
	row := Interaction{
		HorseID:         "foal-1",
		Task:            "trust_building",
		GroomID:         "groom-1",
		DurationMinutes: 30,
		Day:             svc.DayKey(now),
		RecordedAt:      now,
	}
	if err := svc.repo.RecordInteraction(row); err != nil {
		t.Fatalf("First repository write failed: %v", err)
	}

	err := svc.repo.RecordInteraction(row)
	if !domain.IsKind(err, domain.KindDailyLimit) {
		t.Fatalf("Expected DailyLimitExceeded from the constraint backstop, got %v", err)
	}

	ledger, err := svc.GetLedger("foal-1")
	if err != nil {
		t.Fatalf("GetLedger returned error: %v", err)
	}
	if got := ledger.TaskCounts["trust_building"]; got != 1 {
		t.Errorf("Constraint-rejected write must not bump counters: got %d", got)
	}
}

func TestTaskOutsideAgeBandIsRejected(t *testing.T) {
	now := paddocktest.Day(2026, 4, 10, 10)
	foal := paddocktest.NewTestHorse("foal-1", 3, now) // hoof_handling opens at day 7
	svc := newTestService(t, foal)

	_, err := svc.RecordInteraction("foal-1", "groom-1", "hoof_handling", 30, now)
	if !domain.IsKind(err, domain.KindTaskNotEligible) {
		t.Fatalf("Expected TaskNotEligible, got %v", err)
	}

	ledger, _ := svc.GetLedger("foal-1")
	if ledger.TotalInteractions() != 0 {
		t.Error("Rejected interaction must not mutate the ledger")
	}
}

func TestValidationRejections(t *testing.T) {
	now := paddocktest.Day(2026, 4, 1, 10)
	foal := paddocktest.NewTestHorse("foal-1", 0, now)
	svc := newTestService(t, foal)

	tests := []struct {
		name     string
		horseID  string
		task     string
		duration int
	}{
		{"zero duration", "foal-1", "trust_building", 0},
		{"negative duration", "foal-1", "trust_building", -10},
		{"unknown task", "foal-1", "lunging", 30},
		{"unknown horse", "ghost", "trust_building", 30},
		{"empty horse id", "", "trust_building", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordInteraction(tt.horseID, "groom-1", tt.task, tt.duration, now)
			if !domain.IsKind(err, domain.KindValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestCountersAccumulateAcrossDays(t *testing.T) {
	start := paddocktest.Day(2026, 4, 1, 10)
	foal := paddocktest.NewTestHorse("foal-1", 0, start)
	svc := newTestService(t, foal)

	for day := 0; day < 3; day++ {
		at := start.AddDate(0, 0, day)
		if _, err := svc.RecordInteraction("foal-1", "groom-1", "trust_building", 30, at); err != nil {
			t.Fatalf("Day %d interaction failed: %v", day, err)
		}
	}

	ledger, err := svc.GetLedger("foal-1")
	if err != nil {
		t.Fatalf("GetLedger returned error: %v", err)
	}
	if got := ledger.TaskCounts["trust_building"]; got != 3 {
		t.Errorf("Expected count 3 after three days, got %d", got)
	}
}

func TestGetStreak(t *testing.T) {
	start := paddocktest.Day(2026, 4, 1, 10)
	foal := paddocktest.NewTestHorse("foal-1", 0, start)
	svc := newTestService(t, foal)

	// Interactions on days 0, 1, 2 then a gap on day 3, then day 4
	for _, day := range []int{0, 1, 2, 4} {
		at := start.AddDate(0, 0, day)
		if _, err := svc.RecordInteraction("foal-1", "groom-1", "trust_building", 30, at); err != nil {
			t.Fatalf("Day %d interaction failed: %v", day, err)
		}
	}

	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{"end of initial run", start.AddDate(0, 0, 2), 3},
		{"gap day still credits yesterday's run", start.AddDate(0, 0, 3), 3},
		{"after gap only the new run counts", start.AddDate(0, 0, 4), 1},
		{"two idle days break the streak", start.AddDate(0, 0, 6), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetStreak("foal-1", tt.asOf)
			if err != nil {
				t.Fatalf("GetStreak returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("GetStreak(%s) = %d, want %d", tt.asOf.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestGetStreakEmptyLedger(t *testing.T) {
	now := paddocktest.Day(2026, 4, 1, 10)
	svc := newTestService(t, paddocktest.NewTestHorse("foal-1", 0, now))

	streak, err := svc.GetStreak("foal-1", now)
	if err != nil {
		t.Fatalf("GetStreak returned error: %v", err)
	}
	if streak != 0 {
		t.Errorf("Expected streak 0 for empty ledger, got %d", streak)
	}
}

func TestLongestStreak(t *testing.T) {
	start := paddocktest.Day(2026, 4, 1, 10)
	foal := paddocktest.NewTestHorse("foal-1", 0, start)
	svc := newTestService(t, foal)

	// Runs of length 2 (days 0-1), 4 (days 3-6), and 1 (day 9)
	for _, day := range []int{0, 1, 3, 4, 5, 6, 9} {
		at := start.AddDate(0, 0, day)
		if _, err := svc.RecordInteraction("foal-1", "groom-1", "trust_building", 30, at); err != nil {
			t.Fatalf("Day %d interaction failed: %v", day, err)
		}
	}

	got, err := svc.LongestStreak("foal-1")
	if err != nil {
		t.Fatalf("LongestStreak returned error: %v", err)
	}
	if got != 4 {
		t.Errorf("LongestStreak = %d, want 4", got)
	}
}

func TestLongestStreakEmptyLedger(t *testing.T) {
	now := paddocktest.Day(2026, 4, 1, 10)
	svc := newTestService(t, paddocktest.NewTestHorse("foal-1", 0, now))

	got, err := svc.LongestStreak("foal-1")
	if err != nil {
		t.Fatalf("LongestStreak returned error: %v", err)
	}
	if got != 0 {
		t.Errorf("LongestStreak = %d, want 0 for empty ledger", got)
	}
}

func TestDayBoundaryFollowsLedgerTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}

	db, cleanup := paddocktest.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	first := time.Date(2026, 4, 1, 23, 30, 0, 0, loc)
	foal := paddocktest.NewTestHorse("foal-1", 0, first)
	stub := &stubHorses{horses: map[string]domain.Horse{"foal-1": foal}}
	svc := NewService(NewRepository(db.Conn(), zerolog.Nop()), stub, cat, loc, zerolog.Nop())

	if _, err := svc.RecordInteraction("foal-1", "groom-1", "trust_building", 30, first); err != nil {
		t.Fatalf("First interaction failed: %v", err)
	}

	// One hour later it is the next local day, so a new interaction is allowed
	second := first.Add(time.Hour)
	if _, err := svc.RecordInteraction("foal-1", "groom-1", "trust_building", 30, second); err != nil {
		t.Fatalf("Expected next-local-day interaction to pass, got %v", err)
	}
}

func TestCareEvents(t *testing.T) {
	now := paddocktest.Day(2026, 4, 1, 10)
	foal := paddocktest.NewTestHorse("foal-1", 0, now)
	svc := newTestService(t, foal)

	if err := svc.RecordCareEvent("foal-1", CareEventStress, "thunderstorm", now); err != nil {
		t.Fatalf("RecordCareEvent returned error: %v", err)
	}
	if err := svc.RecordCareEvent("foal-1", CareEventRecovery, "", now.Add(time.Hour)); err != nil {
		t.Fatalf("RecordCareEvent returned error: %v", err)
	}
	if err := svc.RecordCareEvent("foal-1", CareEventKind("panic"), "", now); !domain.IsKind(err, domain.KindValidation) {
		t.Errorf("Expected validation error for unknown kind, got %v", err)
	}

	stress, recoveries, err := svc.CareEventCounts("foal-1")
	if err != nil {
		t.Fatalf("CareEventCounts returned error: %v", err)
	}
	if stress != 1 || recoveries != 1 {
		t.Errorf("Expected 1 stress / 1 recovery, got %d / %d", stress, recoveries)
	}
}

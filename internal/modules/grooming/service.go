package grooming

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/catalog"
)

// HorseFetcher provides horse records for age checks
type HorseFetcher interface {
	Get(id string) (*domain.Horse, error)
}

// Service enforces the interaction rules: one interaction per calendar day,
// task eligibility by age band, monotonic counters. Callers must serialize
// operations per horse; operations on different horses are independent.
type Service struct {
	repo    *Repository
	horses  HorseFetcher
	catalog *catalog.Catalog
	loc     *time.Location
	log     zerolog.Logger
}

// NewService creates a new grooming service. The location defines the
// calendar used for day-boundary normalization.
func NewService(repo *Repository, horses HorseFetcher, cat *catalog.Catalog, loc *time.Location, log zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:    repo,
		horses:  horses,
		catalog: cat,
		loc:     loc,
		log:     log.With().Str("service", "grooming").Logger(),
	}
}

// DayKey normalizes a timestamp to the ledger's calendar day
func (s *Service) DayKey(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

// RecordInteraction validates and records one caretaking interaction.
// Rejections come back as classified domain errors: the daily cap and age
// band are business rules, not faults, and no rejection mutates state.
// Calling twice with the same horse and day is rejected by the daily cap, so
// the operation is idempotent per day.
func (s *Service) RecordInteraction(horseID, groomID, taskType string, durationMinutes int, at time.Time) (*Ledger, error) {
	if horseID == "" {
		return nil, domain.NewValidationError("horse id is required")
	}
	if durationMinutes <= 0 {
		return nil, domain.NewValidationError("duration must be positive, got %d", durationMinutes)
	}

	task, ok := s.catalog.Task(taskType)
	if !ok {
		return nil, domain.NewValidationError("unknown interaction type %q", taskType)
	}

	horse, err := s.horses.Get(horseID)
	if err != nil {
		return nil, err
	}
	if horse == nil {
		return nil, domain.NewValidationError("horse %s not found", horseID)
	}

	day := s.DayKey(at)
	exists, err := s.repo.HasInteractionOn(horseID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewDailyLimitError("horse %s already had an interaction on %s", horseID, day)
	}

	ageDays := horse.AgeDays(at)
	if !task.EligibleAt(ageDays) {
		return nil, domain.NewTaskNotEligibleError(
			"%s is only eligible from %s; horse %s is %d days old",
			task.Name, task.WindowString(), horseID, ageDays,
		)
	}

	err = s.repo.RecordInteraction(Interaction{
		HorseID:         horseID,
		GroomID:         groomID,
		Task:            taskType,
		DurationMinutes: durationMinutes,
		Day:             day,
		RecordedAt:      at,
	})
	if err != nil {
		return nil, err
	}

	ledger, err := s.repo.GetLedger(horseID)
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

// GetLedger returns the horse's aggregated ledger state
func (s *Service) GetLedger(horseID string) (Ledger, error) {
	return s.repo.GetLedger(horseID)
}

// GetStreak counts consecutive calendar days with an interaction, walking
// back from asOf. The asOf day itself may still be pending (no interaction
// yet today does not break the streak); the first true gap stops the count.
func (s *Service) GetStreak(horseID string, asOf time.Time) (int, error) {
	days, err := s.repo.InteractionDays(horseID)
	if err != nil {
		return 0, err
	}
	if len(days) == 0 {
		return 0, nil
	}

	cursor := asOf.In(s.loc)
	if !days[s.DayKey(cursor)] {
		// Today has no interaction yet; the streak, if any, ended yesterday
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for days[s.DayKey(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak, nil
}

// LongestStreak returns the longest run of consecutive interaction days in
// the horse's whole history, independent of the current date.
func (s *Service) LongestStreak(horseID string) (int, error) {
	days, err := s.repo.InteractionDays(horseID)
	if err != nil {
		return 0, err
	}

	longest := 0
	for day := range days {
		start, err := time.ParseInLocation("2006-01-02", day, s.loc)
		if err != nil {
			return 0, err
		}
		// Only count runs from their first day
		if days[s.DayKey(start.AddDate(0, 0, -1))] {
			continue
		}

		length := 0
		for cursor := start; days[s.DayKey(cursor)]; cursor = cursor.AddDate(0, 0, 1) {
			length++
		}
		if length > longest {
			longest = length
		}
	}
	return longest, nil
}

// RecordCareEvent appends a stress or recovery event to the horse's history
func (s *Service) RecordCareEvent(horseID string, kind CareEventKind, note string, at time.Time) error {
	if !kind.IsValid() {
		return domain.NewValidationError("unknown care event kind %q", kind)
	}
	horse, err := s.horses.Get(horseID)
	if err != nil {
		return err
	}
	if horse == nil {
		return domain.NewValidationError("horse %s not found", horseID)
	}
	return s.repo.RecordCareEvent(horseID, kind, note, at)
}

// CareEventCounts returns stress and recovery totals for the horse
func (s *Service) CareEventCounts(horseID string) (stress, recoveries int, err error) {
	return s.repo.CareEventCounts(horseID)
}

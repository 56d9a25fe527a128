package grooming

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
)

// Repository handles interaction ledger database operations against ledger.db
type Repository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewRepository creates a new grooming repository
func NewRepository(ledgerDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "grooming").Logger(),
	}
}

// GetLedger retrieves a horse's aggregated ledger state. Returns an empty
// ledger when the horse has never been interacted with (rows are created
// lazily on first interaction).
func (r *Repository) GetLedger(horseID string) (Ledger, error) {
	query := `SELECT task_counts, last_interaction_at FROM ledger_state WHERE horse_id = ?`

	ledger := Ledger{HorseID: horseID, TaskCounts: make(map[string]int)}

	var counts string
	var lastAt sql.NullString
	err := r.ledgerDB.QueryRow(query, horseID).Scan(&counts, &lastAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger, nil
	}
	if err != nil {
		return Ledger{}, fmt.Errorf("failed to get ledger state: %w", err)
	}

	if err := json.Unmarshal([]byte(counts), &ledger.TaskCounts); err != nil {
		return Ledger{}, fmt.Errorf("failed to parse task counts: %w", err)
	}
	if lastAt.Valid {
		parsed, err := time.Parse(time.RFC3339, lastAt.String)
		if err != nil {
			return Ledger{}, fmt.Errorf("failed to parse last_interaction_at: %w", err)
		}
		ledger.LastInteractionAt = &parsed
	}

	return ledger, nil
}

// HasInteractionOn reports whether an interaction is already recorded for the
// given normalized day
func (r *Repository) HasInteractionOn(horseID, day string) (bool, error) {
	query := `SELECT 1 FROM groom_interactions WHERE horse_id = ? AND day = ? LIMIT 1`

	var exists int
	err := r.ledgerDB.QueryRow(query, horseID, day).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check interaction existence: %w", err)
	}
	return true, nil
}

// RecordInteraction appends the interaction row and bumps the aggregated
// counters in a single transaction. The UNIQUE(horse_id, day) constraint is
// the hard backstop for the daily cap when two writers race the service-level
// check.
func (r *Repository) RecordInteraction(interaction Interaction) error {
	tx, err := r.ledgerDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO groom_interactions (horse_id, task, groom_id, duration_minutes, day, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		interaction.HorseID,
		interaction.Task,
		nullString(interaction.GroomID),
		interaction.DurationMinutes,
		interaction.Day,
		interaction.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return domain.NewDailyLimitError("interaction already recorded for horse %s on %s", interaction.HorseID, interaction.Day)
		}
		return fmt.Errorf("failed to insert interaction: %w", err)
	}

	// Read-modify-write of the counters is safe inside the transaction
	var counts string
	err = tx.QueryRow(`SELECT task_counts FROM ledger_state WHERE horse_id = ?`, interaction.HorseID).Scan(&counts)
	taskCounts := make(map[string]int)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First interaction for this horse, state row created below
	case err != nil:
		return fmt.Errorf("failed to read ledger state: %w", err)
	default:
		if err := json.Unmarshal([]byte(counts), &taskCounts); err != nil {
			return fmt.Errorf("failed to parse task counts: %w", err)
		}
	}

	taskCounts[interaction.Task]++
	updated, err := json.Marshal(taskCounts)
	if err != nil {
		return fmt.Errorf("failed to marshal task counts: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO ledger_state (horse_id, task_counts, last_interaction_at)
		VALUES (?, ?, ?)
		ON CONFLICT(horse_id) DO UPDATE SET
			task_counts = excluded.task_counts,
			last_interaction_at = excluded.last_interaction_at
	`,
		interaction.HorseID,
		string(updated),
		interaction.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit interaction: %w", err)
	}

	r.log.Info().
		Str("horse_id", interaction.HorseID).
		Str("task", interaction.Task).
		Str("day", interaction.Day).
		Msg("Interaction recorded")

	return nil
}

// InteractionDays returns the set of normalized days on which the horse was
// interacted with
func (r *Repository) InteractionDays(horseID string) (map[string]bool, error) {
	rows, err := r.ledgerDB.Query(`SELECT day FROM groom_interactions WHERE horse_id = ?`, horseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction days: %w", err)
	}
	defer rows.Close()

	days := make(map[string]bool)
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan interaction day: %w", err)
		}
		days[day] = true
	}
	return days, rows.Err()
}

// RecordCareEvent appends a stress or recovery event
func (r *Repository) RecordCareEvent(horseID string, kind CareEventKind, note string, at time.Time) error {
	_, err := r.ledgerDB.Exec(`
		INSERT INTO care_events (horse_id, kind, note, recorded_at)
		VALUES (?, ?, ?, ?)
	`, horseID, string(kind), nullString(note), at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record care event: %w", err)
	}
	return nil
}

// CareEventCounts returns the number of stress events and recoveries recorded
// for the horse
func (r *Repository) CareEventCounts(horseID string) (stress, recoveries int, err error) {
	rows, err := r.ledgerDB.Query(`
		SELECT kind, COUNT(*) FROM care_events WHERE horse_id = ? GROUP BY kind
	`, horseID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count care events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return 0, 0, fmt.Errorf("failed to scan care event count: %w", err)
		}
		switch CareEventKind(kind) {
		case CareEventStress:
			stress = count
		case CareEventRecovery:
			recoveries = count
		}
	}
	return stress, recoveries, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

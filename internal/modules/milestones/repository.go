package milestones

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository persists finalized milestone records in ledger.db. Pending is
// the implicit default state, so only terminal records are stored; the
// primary key on (horse_id, milestone_index) plus insert-only writes keep
// finalized records immutable.
type Repository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewRepository creates a new milestone repository
func NewRepository(ledgerDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "milestones").Logger(),
	}
}

// GetFinalized returns the horse's terminal milestone records keyed by index
func (r *Repository) GetFinalized(horseID string) (map[int]Record, error) {
	rows, err := r.ledgerDB.Query(`
		SELECT milestone_index, status, age_at_evaluation_days, traits_granted, finalized_at
		FROM milestones WHERE horse_id = ?
	`, horseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	records := make(map[int]Record)
	for rows.Next() {
		rec := Record{HorseID: horseID}
		var status, granted string
		var finalizedAt sql.NullString

		if err := rows.Scan(&rec.MilestoneIndex, &status, &rec.AgeAtEvaluationDays, &granted, &finalizedAt); err != nil {
			return nil, fmt.Errorf("failed to scan milestone record: %w", err)
		}
		rec.Status = Status(status)
		if err := json.Unmarshal([]byte(granted), &rec.TraitsGranted); err != nil {
			return nil, fmt.Errorf("failed to parse granted traits: %w", err)
		}
		if finalizedAt.Valid {
			parsed, err := time.Parse(time.RFC3339, finalizedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse finalized_at: %w", err)
			}
			rec.FinalizedAt = &parsed
		}
		records[rec.MilestoneIndex] = rec
	}
	return records, rows.Err()
}

// SaveFinalized inserts a terminal record. A record that already exists is
// left untouched, so concurrent sweeps and evaluations cannot rewrite an
// outcome.
func (r *Repository) SaveFinalized(rec Record) error {
	if !rec.Status.IsTerminal() {
		return fmt.Errorf("refusing to persist non-terminal milestone %d for horse %s", rec.MilestoneIndex, rec.HorseID)
	}
	if rec.FinalizedAt == nil {
		return fmt.Errorf("refusing to persist milestone %d for horse %s without a finalization time", rec.MilestoneIndex, rec.HorseID)
	}

	granted := rec.TraitsGranted
	if granted == nil {
		granted = []string{}
	}
	grantedJSON, err := json.Marshal(granted)
	if err != nil {
		return fmt.Errorf("failed to marshal granted traits: %w", err)
	}

	_, err = r.ledgerDB.Exec(`
		INSERT INTO milestones (horse_id, milestone_index, status, age_at_evaluation_days, traits_granted, finalized_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(horse_id, milestone_index) DO NOTHING
	`,
		rec.HorseID,
		rec.MilestoneIndex,
		string(rec.Status),
		rec.AgeAtEvaluationDays,
		string(grantedJSON),
		rec.FinalizedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save milestone record: %w", err)
	}

	r.log.Info().
		Str("horse_id", rec.HorseID).
		Int("milestone", rec.MilestoneIndex).
		Str("status", string(rec.Status)).
		Msg("Milestone finalized")

	return nil
}

// Package horses provides persistence for horse records and trait bundles.
package horses

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
)

// Repository handles horse and trait-bundle database operations
type Repository struct {
	stableDB *sql.DB // stable.db - horses, trait_bundles tables
	log      zerolog.Logger
}

// NewRepository creates a new horse repository
func NewRepository(stableDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		stableDB: stableDB,
		log:      log.With().Str("repo", "horses").Logger(),
	}
}

// Create inserts a new horse record
func (r *Repository) Create(horse domain.Horse) error {
	query := `
		INSERT INTO horses (id, name, sex, born_at, sire_id, dam_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.stableDB.Exec(query,
		horse.ID,
		horse.Name,
		string(horse.Sex),
		horse.BornAt.UTC().Format(time.RFC3339),
		nullString(horse.SireID),
		nullString(horse.DamID),
	)
	if err != nil {
		return fmt.Errorf("failed to create horse: %w", err)
	}

	r.log.Info().
		Str("horse_id", horse.ID).
		Str("name", horse.Name).
		Msg("Horse created")

	return nil
}

// Get retrieves a horse by id, returning nil when it does not exist
func (r *Repository) Get(id string) (*domain.Horse, error) {
	query := `
		SELECT id, name, sex, born_at, sire_id, dam_id
		FROM horses WHERE id = ?
	`

	var horse domain.Horse
	var sex, bornAt string
	var sireID, damID sql.NullString

	err := r.stableDB.QueryRow(query, id).Scan(
		&horse.ID, &horse.Name, &sex, &bornAt, &sireID, &damID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get horse: %w", err)
	}

	horse.Sex = domain.Sex(sex)
	horse.BornAt, err = time.Parse(time.RFC3339, bornAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse born_at for horse %s: %w", id, err)
	}
	horse.SireID = sireID.String
	horse.DamID = damID.String

	return &horse, nil
}

// ListIDs returns every horse id, oldest first. Batch jobs that sweep the
// whole stable use this rather than loading full records.
func (r *Repository) ListIDs() ([]string, error) {
	rows, err := r.stableDB.Query(`SELECT id FROM horses ORDER BY born_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list horses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan horse id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveBundle upserts a horse's trait bundle
func (r *Repository) SaveBundle(horseID string, bundle domain.TraitBundle) error {
	positive, err := json.Marshal(bundle.Positive.Sorted())
	if err != nil {
		return fmt.Errorf("failed to marshal positive traits: %w", err)
	}
	negative, err := json.Marshal(bundle.Negative.Sorted())
	if err != nil {
		return fmt.Errorf("failed to marshal negative traits: %w", err)
	}
	hidden, err := json.Marshal(bundle.Hidden.Sorted())
	if err != nil {
		return fmt.Errorf("failed to marshal hidden traits: %w", err)
	}

	query := `
		INSERT INTO trait_bundles (horse_id, positive, negative, hidden, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(horse_id) DO UPDATE SET
			positive = excluded.positive,
			negative = excluded.negative,
			hidden = excluded.hidden,
			updated_at = excluded.updated_at
	`

	_, err = r.stableDB.Exec(query,
		horseID,
		string(positive),
		string(negative),
		string(hidden),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save trait bundle: %w", err)
	}

	return nil
}

// GetBundle retrieves a horse's trait bundle, returning an empty bundle when
// none has been stored yet
func (r *Repository) GetBundle(horseID string) (domain.TraitBundle, error) {
	query := `SELECT positive, negative, hidden FROM trait_bundles WHERE horse_id = ?`

	var positive, negative, hidden string
	err := r.stableDB.QueryRow(query, horseID).Scan(&positive, &negative, &hidden)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewTraitBundle(), nil
	}
	if err != nil {
		return domain.TraitBundle{}, fmt.Errorf("failed to get trait bundle: %w", err)
	}

	bundle := domain.NewTraitBundle()
	if err := unmarshalSet(positive, bundle.Positive); err != nil {
		return domain.TraitBundle{}, fmt.Errorf("failed to parse positive traits: %w", err)
	}
	if err := unmarshalSet(negative, bundle.Negative); err != nil {
		return domain.TraitBundle{}, fmt.Errorf("failed to parse negative traits: %w", err)
	}
	if err := unmarshalSet(hidden, bundle.Hidden); err != nil {
		return domain.TraitBundle{}, fmt.Errorf("failed to parse hidden traits: %w", err)
	}

	return bundle, nil
}

// TraitSet loads a horse's expressed traits (positive + negative + hidden) as
// a flat set, the shape the inheritance calculator consumes for a parent.
func (r *Repository) TraitSet(horseID string) (domain.TraitSet, error) {
	bundle, err := r.GetBundle(horseID)
	if err != nil {
		return nil, err
	}

	set := make(domain.TraitSet)
	for _, group := range []domain.TraitSet{bundle.Positive, bundle.Negative, bundle.Hidden} {
		for id := range group {
			set.Add(id)
		}
	}
	return set, nil
}

func unmarshalSet(data string, into domain.TraitSet) error {
	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return err
	}
	for _, id := range ids {
		into.Add(id)
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

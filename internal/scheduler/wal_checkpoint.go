package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/database"
)

// WALCheckpointJob truncates the WAL of every database. WAL files otherwise
// grow unbounded on a write-heavy ledger.
type WALCheckpointJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(databases []*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints every database, continuing past individual failures
func (j *WALCheckpointJob) Run() error {
	var lastErr error
	for _, db := range j.databases {
		if err := db.Checkpoint(); err != nil {
			lastErr = err
			j.log.Error().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			continue
		}
		j.log.Debug().Str("database", db.Name()).Msg("WAL checkpoint done")
	}
	return lastErr
}

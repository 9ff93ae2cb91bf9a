package db

import (
	"context"
	"fmt"
	"time"
)

// RunRecord is one finished simulation run.
type RunRecord struct {
	Seed              uint64
	StartedAt         time.Time
	FinishedAt        time.Time
	SimSeconds        float64
	Victory           bool
	WavesCleared      int
	HostilesDestroyed int
	RewardEarned      int64
	ObjectiveDamage   float64
	ObjectiveHealth   float64

	Waves []WaveRecord
}

// WaveRecord is the per-wave breakdown of a run.
// ClearedAt is nil for waves still uncleared when the run ended.
type WaveRecord struct {
	Index             int
	HostilesSpawned   int
	HostilesDestroyed int
	ClearedAt         *float64 // simulation seconds
}

// RunRepository persists run summaries.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a repository over the shared DB handle.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun inserts a run and its per-wave rows in one transaction and
// returns the new run id.
func (r *RunRepository) SaveRun(ctx context.Context, rec RunRecord) (int64, error) {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning run insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var runID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO runs (seed, started_at, finished_at, sim_seconds, victory,
		                   waves_cleared, hostiles_destroyed, reward_earned,
		                   objective_damage, objective_health)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		int64(rec.Seed), rec.StartedAt, rec.FinishedAt, rec.SimSeconds, rec.Victory,
		rec.WavesCleared, rec.HostilesDestroyed, rec.RewardEarned,
		rec.ObjectiveDamage, rec.ObjectiveHealth,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	for _, w := range rec.Waves {
		_, err = tx.Exec(ctx,
			`INSERT INTO run_waves (run_id, wave_index, hostiles_spawned,
			                        hostiles_destroyed, cleared_at_seconds)
			 VALUES ($1, $2, $3, $4, $5)`,
			runID, w.Index, w.HostilesSpawned, w.HostilesDestroyed, w.ClearedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting run wave %d: %w", w.Index, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing run insert: %w", err)
	}
	return runID, nil
}

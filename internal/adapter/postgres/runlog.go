package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/ganttboard/internal/domain/ingest"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
)

// RunStore implements runlog.Store on the ingest_runs table.
type RunStore struct {
	pool *pgxpool.Pool
}

// NewRunStore creates a run ledger backed by the given pool.
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Record inserts one run.
func (s *RunStore) Record(ctx context.Context, run *ingest.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ingest_runs
		   (id, snapshot_id, trigger, source, outcome, error_kind, error,
		    total, admitted, excluded, imputed, started_at, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID, run.SnapshotID, string(run.Trigger), run.Source, string(run.Outcome),
		nullIfEmpty(run.ErrorKind), nullIfEmpty(run.Error),
		run.Total, run.Admitted, run.Excluded, run.Imputed,
		run.StartedAt, run.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *RunStore) Recent(ctx context.Context, limit int) ([]ingest.Run, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	limit = min(limit, maxRecentLimit)

	rows, err := s.pool.Query(ctx,
		`SELECT id, snapshot_id, trigger, source, outcome, error_kind, error,
		        total, admitted, excluded, imputed, started_at, duration_ms
		 FROM ingest_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	runs := []ingest.Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(row scannable) (ingest.Run, error) {
	var (
		r                   ingest.Run
		trigger, outcome    string
		errorKind, errorMsg *string
		durationMS          int64
	)
	err := row.Scan(&r.ID, &r.SnapshotID, &trigger, &r.Source, &outcome, &errorKind, &errorMsg,
		&r.Total, &r.Admitted, &r.Excluded, &r.Imputed, &r.StartedAt, &durationMS)
	if err != nil {
		return ingest.Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.Trigger = ingest.Trigger(trigger)
	r.Outcome = ingest.Outcome(outcome)
	r.ErrorKind = derefString(errorKind)
	r.Error = derefString(errorMsg)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}

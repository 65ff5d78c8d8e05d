package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RunRecord is one row of the run audit trail.
type RunRecord struct {
	ID              int64          `db:"id" json:"id"`
	RunID           string         `db:"run_id" json:"run_id"`
	Mode            string         `db:"mode" json:"mode"`
	Status          string         `db:"status" json:"status"`
	FinalizeAttempt int            `db:"finalize_attempt" json:"finalize_attempt"`
	SourceCount     int            `db:"source_count" json:"source_count"`
	CandidateCount  int            `db:"candidate_count" json:"candidate_count"`
	RejectedCount   int            `db:"rejected_count" json:"rejected_count"`
	AddedIDs        pq.StringArray `db:"added_ids" json:"added_ids"`
	DatasetVersion  int            `db:"dataset_version" json:"dataset_version"`
	SnapshotURL     string         `db:"snapshot_url" json:"snapshot_url"`
	Error           string         `db:"error" json:"error,omitempty"`
	RecordedAt      time.Time      `db:"recorded_at" json:"recorded_at"`
}

// Repository handles database operations for the run audit trail.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new run history repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new run history record.
func (r *Repository) Create(ctx context.Context, rec *RunRecord) error {
	query := `
		INSERT INTO run_history (
			run_id, mode, status, finalize_attempt, source_count,
			candidate_count, rejected_count, added_ids, dataset_version,
			snapshot_url, error
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, recorded_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		rec.RunID,
		rec.Mode,
		rec.Status,
		rec.FinalizeAttempt,
		rec.SourceCount,
		rec.CandidateCount,
		rec.RejectedCount,
		rec.AddedIDs,
		rec.DatasetVersion,
		rec.SnapshotURL,
		rec.Error,
	).Scan(&rec.ID, &rec.RecordedAt)

	if err != nil {
		return fmt.Errorf("failed to create run history record: %w", err)
	}

	return nil
}

// GetByRunID retrieves the most recent record for a run.
func (r *Repository) GetByRunID(ctx context.Context, runID string) (*RunRecord, error) {
	var rec RunRecord
	query := `
		SELECT id, run_id, mode, status, finalize_attempt, source_count,
		       candidate_count, rejected_count, added_ids, dataset_version,
		       snapshot_url, error, recorded_at
		FROM run_history
		WHERE run_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &rec, query, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run history not found: %s", runID)
		}
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}

	return &rec, nil
}

// Recent retrieves the latest run records, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var recs []*RunRecord
	query := `
		SELECT id, run_id, mode, status, finalize_attempt, source_count,
		       candidate_count, rejected_count, added_ids, dataset_version,
		       snapshot_url, error, recorded_at
		FROM run_history
		ORDER BY recorded_at DESC
		LIMIT $1
	`

	if err := r.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list run history: %w", err)
	}

	return recs, nil
}

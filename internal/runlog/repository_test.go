package runlog_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/runlog"
)

func newRepo(t *testing.T) (*runlog.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return runlog.NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func recordColumns() []string {
	return []string{
		"id", "run_id", "mode", "status", "finalize_attempt", "source_count",
		"candidate_count", "rejected_count", "added_ids", "dataset_version",
		"snapshot_url", "error", "recorded_at",
	}
}

func TestCreateRunRecord(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	rec := &runlog.RunRecord{
		RunID:           "run-1",
		Mode:            "strict",
		Status:          "published",
		FinalizeAttempt: 2,
		SourceCount:     8,
		CandidateCount:  3,
		RejectedCount:   1,
		AddedIDs:        pq.StringArray{"2026-08-01-bot"},
		DatasetVersion:  4,
		SnapshotURL:     "datasets/run-1/dataset.json",
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO run_history")).
		WithArgs(
			rec.RunID, rec.Mode, rec.Status, rec.FinalizeAttempt, rec.SourceCount,
			rec.CandidateCount, rec.RejectedCount, rec.AddedIDs, rec.DatasetVersion,
			rec.SnapshotURL, rec.Error,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recorded_at"}).AddRow(int64(7), now))

	require.NoError(t, repo.Create(context.Background(), rec))
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, now, rec.RecordedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRunRecordError(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO run_history")).
		WillReturnError(assert.AnError)

	err := repo.Create(context.Background(), &runlog.RunRecord{RunID: "run-1"})
	assert.ErrorContains(t, err, "failed to create run history record")
}

func TestGetByRunID(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM run_history")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(recordColumns()).AddRow(
			int64(7), "run-1", "strict", "published", 2, 8,
			3, 1, pq.StringArray{"2026-08-01-bot"}, 4,
			"datasets/run-1/dataset.json", "", now,
		))

	rec, err := repo.GetByRunID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "published", rec.Status)
	assert.Equal(t, pq.StringArray{"2026-08-01-bot"}, rec.AddedIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRunIDNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM run_history")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(recordColumns()))

	_, err := repo.GetByRunID(context.Background(), "missing")
	assert.ErrorContains(t, err, "run history not found")
}

func TestRecentDefaultsLimit(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY recorded_at DESC")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(recordColumns()).
			AddRow(int64(2), "run-2", "strict", "no_change", 1, 5, 0, 0, pq.StringArray{}, 0, "", "", now).
			AddRow(int64(1), "run-1", "strict", "published", 1, 6, 2, 0, pq.StringArray{"a"}, 1, "s", "", now.Add(-time.Hour)),
		)

	recs, err := repo.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "run-2", recs[0].RunID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

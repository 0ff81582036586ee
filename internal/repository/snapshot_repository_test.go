package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/journal-desk-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var snapshotColumns = []string{"id", "scope", "mode", "buckets", "total", "peak", "average", "captured_at"}

func TestSnapshotCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	mock.ExpectExec("INSERT INTO trend_snapshots").
		WithArgs(sqlmock.AnyArg(), "global", "daily", []byte(`[{"key":"2026-10-14","label":"14","count":3}]`), 3, 3, 0.4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	snapshot := &models.TrendSnapshot{
		Scope:      "global",
		Mode:       models.TrendDaily,
		Buckets:    []models.Bucket{{Key: "2026-10-14", Label: "14", Count: 3}},
		Total:      3,
		Peak:       3,
		Average:    0.4,
		CapturedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), snapshot))
	assert.NotEmpty(t, snapshot.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotListFiltersAndDecodes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(snapshotColumns).
		AddRow("snap-1", "global", "monthly", []byte(`[{"key":"2026-10","label":"Oct","count":12}]`), 12, 12, 1.0, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, scope, mode, buckets, total, peak, average, captured_at FROM trend_snapshots WHERE scope = $1 AND mode = $2 ORDER BY captured_at DESC LIMIT 5")).
		WithArgs("global", models.TrendMonthly).
		WillReturnRows(rows)

	snapshots, err := repo.List(context.Background(), models.SnapshotFilter{Scope: "global", Mode: models.TrendMonthly, Limit: 5})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "snap-1", snapshots[0].ID)
	require.Len(t, snapshots[0].Buckets, 1)
	assert.Equal(t, "Oct", snapshots[0].Buckets[0].Label)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotLatestEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	mock.ExpectQuery("FROM trend_snapshots WHERE scope = \\$1 AND mode = \\$2 ORDER BY captured_at DESC LIMIT 1").
		WithArgs("global", models.TrendDaily).
		WillReturnRows(sqlmock.NewRows(snapshotColumns))

	latest, err := repo.Latest(context.Background(), "global", models.TrendDaily)
	require.NoError(t, err)
	assert.Nil(t, latest)
	require.NoError(t, mock.ExpectationsWereMet())
}

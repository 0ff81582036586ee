package repository

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/journal-desk-api/internal/models"
)

const (
	defaultSnapshotLimit = 30
	maxSnapshotLimit     = 365
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SnapshotRepository persists trend snapshots in PostgreSQL.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts snapshot, assigning an id when empty.
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *models.TrendSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	buckets, err := json.Marshal(snapshot.Buckets)
	if err != nil {
		return fmt.Errorf("marshal snapshot buckets: %w", err)
	}
	snapshot.RawBuckets = buckets

	const query = `INSERT INTO trend_snapshots (id, scope, mode, buckets, total, peak, average, captured_at)
VALUES (:id, :scope, :mode, :buckets, :total, :peak, :average, :captured_at)`
	if _, err := r.db.NamedExecContext(ctx, query, snapshot); err != nil {
		return fmt.Errorf("insert trend snapshot: %w", err)
	}
	return nil
}

// List returns snapshots matching filter, newest first.
func (r *SnapshotRepository) List(ctx context.Context, filter models.SnapshotFilter) ([]models.TrendSnapshot, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}
	if limit > maxSnapshotLimit {
		limit = maxSnapshotLimit
	}

	builder := psql.Select("id", "scope", "mode", "buckets", "total", "peak", "average", "captured_at").
		From("trend_snapshots").
		OrderBy("captured_at DESC").
		Limit(uint64(limit))
	if filter.Scope != "" {
		builder = builder.Where(sq.Eq{"scope": filter.Scope})
	}
	if filter.Mode != "" {
		builder = builder.Where(sq.Eq{"mode": filter.Mode})
	}
	if filter.Since != nil {
		builder = builder.Where(sq.GtOrEq{"captured_at": *filter.Since})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshot query: %w", err)
	}

	var snapshots []models.TrendSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, args...); err != nil {
		return nil, fmt.Errorf("list trend snapshots: %w", err)
	}
	for i := range snapshots {
		if len(snapshots[i].RawBuckets) == 0 {
			snapshots[i].Buckets = []models.Bucket{}
			continue
		}
		if err := json.Unmarshal(snapshots[i].RawBuckets, &snapshots[i].Buckets); err != nil {
			return nil, fmt.Errorf("decode buckets of snapshot %s: %w", snapshots[i].ID, err)
		}
	}
	if snapshots == nil {
		snapshots = []models.TrendSnapshot{}
	}
	return snapshots, nil
}

// Latest returns the newest snapshot for scope and mode, or nil.
func (r *SnapshotRepository) Latest(ctx context.Context, scope string, mode models.TrendMode) (*models.TrendSnapshot, error) {
	snapshots, err := r.List(ctx, models.SnapshotFilter{Scope: scope, Mode: mode, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return &snapshots[0], nil
}

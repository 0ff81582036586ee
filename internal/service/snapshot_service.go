package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/internal/validation"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
	"github.com/noah-isme/journal-desk-api/pkg/jobs"
)

// ScopeGlobal is the snapshot scope covering every article.
const ScopeGlobal = "global"

const jobTypeSnapshot = "trend.snapshot"

type snapshotStore interface {
	Create(ctx context.Context, snapshot *models.TrendSnapshot) error
	List(ctx context.Context, filter models.SnapshotFilter) ([]models.TrendSnapshot, error)
}

type trendSource interface {
	Trends(ctx context.Context, sess *session.Session, mode models.TrendMode) (*dto.TrendResponse, error)
}

// SnapshotServiceConfig tunes snapshot capture.
type SnapshotServiceConfig struct {
	Cron         string
	ServiceToken string
	Workers      int
	Retries      int
	RetryDelay   time.Duration
	Location     *time.Location
}

// SnapshotService captures trend summaries on a queue, either on demand or
// on a cron schedule, and persists them.
type SnapshotService struct {
	store     snapshotStore
	trends    trendSource
	queue     *jobs.Queue
	cron      *cron.Cron
	metrics   *MetricsService
	validator *validation.Validator
	logger    *zap.Logger
	cfg       SnapshotServiceConfig
	now       func() time.Time
}

type snapshotJob struct {
	Mode  models.TrendMode
	Scope string
	Sess  *session.Session
}

// NewSnapshotService constructs a SnapshotService. Call Start before Enqueue.
func NewSnapshotService(store snapshotStore, trends trendSource, metrics *MetricsService, validator *validation.Validator, cfg SnapshotServiceConfig, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.New(validation.FileLimits{})
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	s := &SnapshotService{
		store:     store,
		trends:    trends,
		metrics:   metrics,
		validator: validator,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		cron:      cron.New(cron.WithLocation(cfg.Location)),
	}
	s.queue = jobs.NewQueue("snapshots", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnExhausted: func(job jobs.Job, err error) {
			if payload, ok := job.Payload.(snapshotJob); ok {
				s.metrics.RecordSnapshot(string(payload.Mode), err)
			}
		},
	})
	return s
}

// Start runs the worker pool and, when a schedule and service token are
// configured, the capture schedule.
func (s *SnapshotService) Start(ctx context.Context) error {
	s.queue.Start(ctx)
	if s.cfg.Cron == "" {
		return nil
	}
	if s.cfg.ServiceToken == "" {
		s.logger.Warn("snapshot schedule disabled: no service token configured")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.Cron, s.scheduled); err != nil {
		return fmt.Errorf("schedule snapshots %q: %w", s.cfg.Cron, err)
	}
	s.cron.Start()
	s.logger.Info("snapshot schedule started", zap.String("cron", s.cfg.Cron))
	return nil
}

// Stop halts the schedule, waits for a running tick and drains the workers.
func (s *SnapshotService) Stop() {
	<-s.cron.Stop().Done()
	s.queue.Stop()
}

func (s *SnapshotService) serviceSession() *session.Session {
	return session.New("system", models.RoleSuperAdmin, "", s.cfg.ServiceToken)
}

func (s *SnapshotService) scheduled() {
	sess := s.serviceSession()
	for _, mode := range []models.TrendMode{models.TrendDaily, models.TrendMonthly} {
		if _, err := s.queue.Enqueue(jobs.Job{Type: jobTypeSnapshot, Payload: snapshotJob{Mode: mode, Scope: ScopeGlobal, Sess: sess}}); err != nil {
			s.logger.Error("scheduled snapshot not queued", zap.String("mode", string(mode)), zap.Error(err))
		}
	}
}

func (s *SnapshotService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(snapshotJob)
	if !ok {
		return fmt.Errorf("unexpected snapshot payload %T", job.Payload)
	}
	_, err := s.Capture(ctx, payload.Sess, payload.Mode)
	if err == nil {
		s.metrics.RecordSnapshot(string(payload.Mode), nil)
	}
	return err
}

// Capture computes the trend visible to sess and persists it. Sections with
// no fresh data are not persisted.
func (s *SnapshotService) Capture(ctx context.Context, sess *session.Session, mode models.TrendMode) (*models.TrendSnapshot, error) {
	trend, err := s.trends.Trends(ctx, sess, mode)
	if err != nil {
		return nil, err
	}
	if trend.Failed() {
		return nil, appErrors.Clone(appErrors.ErrFetchFailed, trend.Error)
	}
	snapshot := &models.TrendSnapshot{
		Scope:      ScopeGlobal,
		Mode:       trend.Mode,
		Buckets:    trend.Buckets,
		Total:      trend.Total,
		Peak:       trend.Peak,
		Average:    trend.Average,
		CapturedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	s.logger.Info("trend snapshot captured",
		zap.String("id", snapshot.ID),
		zap.String("mode", string(snapshot.Mode)),
		zap.Int("total", snapshot.Total),
	)
	return snapshot, nil
}

// Enqueue queues an immediate capture on behalf of a super admin.
func (s *SnapshotService) Enqueue(ctx context.Context, sess *session.Session, req dto.SnapshotCaptureRequest) (*dto.SnapshotCaptureResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(models.RoleSuperAdmin) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	mode, _ := models.ParseTrendMode(string(req.Mode))
	id, err := s.queue.Enqueue(jobs.Job{Type: jobTypeSnapshot, Payload: snapshotJob{Mode: mode, Scope: ScopeGlobal, Sess: sess}})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "snapshot could not be queued")
	}
	return &dto.SnapshotCaptureResponse{JobID: id, Mode: mode, Scope: ScopeGlobal}, nil
}

// List returns persisted snapshots, newest first.
func (s *SnapshotService) List(ctx context.Context, sess *session.Session, req dto.SnapshotListRequest) ([]models.TrendSnapshot, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(models.RoleSuperAdmin) {
		return nil, appErrors.ErrForbidden
	}
	filter := models.SnapshotFilter{Scope: req.Scope, Limit: req.Limit}
	if req.Mode != "" {
		mode, ok := models.ParseTrendMode(req.Mode)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "mode must be one of: daily monthly")
		}
		filter.Mode = mode
	}
	snapshots, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list snapshots")
	}
	return snapshots, nil
}

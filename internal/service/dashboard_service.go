package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/journal-desk-api/internal/aggregate"
	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/filter"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

// Dashboard sources.
const (
	SourceJournals      = "journals"
	SourceArticles      = "articles"
	SourceNotifications = "notifications"
	SourceLogs          = "logs"
)

const defaultRecentLimit = 5

type dashboardBackend interface {
	articleSource
	journalSource
	notificationSource
	auditSource
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	// CacheTTL is how long a last-known-good copy of each source is kept.
	CacheTTL time.Duration
	// StrictJoin fails the whole request when any source fails.
	StrictJoin  bool
	Location    *time.Location
	RecentLimit int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Backend dashboardBackend
	Cache   *CacheService
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  DashboardServiceConfig
	Now     func() time.Time
}

// DashboardService composes the role-scoped overview from concurrently
// fetched backend sources.
type DashboardService struct {
	backend dashboardBackend
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	cfg     DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecentLimit
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &DashboardService{
		backend: params.Backend,
		cache:   params.Cache,
		metrics: params.Metrics,
		logger:  logger,
		now:     now,
		cfg:     cfg,
	}
}

// SourceResult is the outcome of fetching one dashboard source.
type SourceResult[T any] struct {
	Items []T
	Err   error
	Stale bool
}

// State converts the result into the section indicator.
func (r SourceResult[T]) State() dto.SectionState {
	state := dto.SectionState{Stale: r.Stale}
	if r.Err != nil {
		state.Error = appErrors.FromError(r.Err).Message
	}
	return state
}

func lkgKey(userID models.ID, source string) string {
	return fmt.Sprintf("dash:lkg:%s:%s", userID, source)
}

// lkgPattern matches the last-known-good copies of source for every user.
func lkgPattern(source string) string {
	return fmt.Sprintf("dash:lkg:*:%s", source)
}

// fetchSource loads one source. In partial mode a failed fetch falls back to
// the last-known-good copy; Err stays set so the section can report it.
func fetchSource[T any](ctx context.Context, s *DashboardService, sess *session.Session, name string, fetch func(context.Context, string) ([]T, error)) SourceResult[T] {
	items, err := fetch(ctx, sess.Token)
	if err == nil {
		if items == nil {
			items = []T{}
		}
		if cacheErr := s.cache.Set(ctx, lkgKey(sess.UserID, name), items, s.cfg.CacheTTL); cacheErr != nil {
			s.logger.Debug("last-known-good not stored", zap.String("source", name), zap.Error(cacheErr))
		}
		return SourceResult[T]{Items: items}
	}

	s.logger.Warn("dashboard source failed", zap.String("source", name), zap.Error(err))
	result := SourceResult[T]{Items: []T{}, Err: err}
	if s.cfg.StrictJoin || errors.Is(err, appErrors.ErrSessionExpired) {
		s.metrics.RecordSectionFailure(name, false)
		return result
	}
	var cached []T
	if hit, _ := s.cache.Get(ctx, lkgKey(sess.UserID, name), &cached); hit {
		result.Items = cached
		result.Stale = true
	}
	s.metrics.RecordSectionFailure(name, result.Stale)
	return result
}

// group returns a plain group in partial mode so one failure does not cancel
// the other fetches.
func (s *DashboardService) group(ctx context.Context) (*errgroup.Group, context.Context) {
	if s.cfg.StrictJoin {
		return errgroup.WithContext(ctx)
	}
	return new(errgroup.Group), ctx
}

func (s *DashboardService) joinErr(err error) error {
	if s.cfg.StrictJoin {
		return err
	}
	return nil
}

func expired(errs ...error) error {
	for _, err := range errs {
		if err != nil && errors.Is(err, appErrors.ErrSessionExpired) {
			return err
		}
	}
	return nil
}

// Overview builds the dashboard for sess. Logs are fetched for super admins only.
func (s *DashboardService) Overview(ctx context.Context, sess *session.Session) (*dto.DashboardResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	withLogs := sess.HasRole(models.RoleSuperAdmin)

	var (
		journals      SourceResult[models.Journal]
		articles      SourceResult[models.Article]
		notifications SourceResult[models.Notification]
		logs          SourceResult[models.AuditLog]
	)
	g, gctx := s.group(ctx)
	g.Go(func() error {
		journals = fetchSource(gctx, s, sess, SourceJournals, s.backend.Journals)
		return s.joinErr(journals.Err)
	})
	g.Go(func() error {
		articles = fetchSource(gctx, s, sess, SourceArticles, s.backend.Articles)
		return s.joinErr(articles.Err)
	})
	g.Go(func() error {
		notifications = fetchSource(gctx, s, sess, SourceNotifications, s.backend.Notifications)
		return s.joinErr(notifications.Err)
	})
	if withLogs {
		g.Go(func() error {
			logs = fetchSource(gctx, s, sess, SourceLogs, s.backend.AuditLogs)
			return s.joinErr(logs.Err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, invalidateOnExpiry(sess, err)
	}
	if err := expired(journals.Err, articles.Err, notifications.Err, logs.Err); err != nil {
		return nil, invalidateOnExpiry(sess, err)
	}

	now := s.now()
	resp := &dto.DashboardResponse{
		Role:          sess.Role,
		Journals:      s.journalsSection(sess, journals),
		Articles:      s.articlesSection(sess, journals, articles, now),
		Notifications: s.notificationsSection(sess, notifications),
		GeneratedAt:   now.UTC(),
	}
	if withLogs {
		resp.Activity = s.activitySection(logs)
	}
	return resp, nil
}

func (s *DashboardService) journalsSection(sess *session.Session, journals SourceResult[models.Journal]) dto.JournalsSection {
	scoped := scopeJournals(sess, journals.Items)
	return dto.JournalsSection{
		SectionState: journals.State(),
		Total:        len(scoped),
		Counts:       filter.Counts(scoped, func(j models.Journal) string { return j.Status }, filter.StatusTabs),
	}
}

// scopeResult applies the role scope. A journal admin's articles cannot be
// scoped without the journal list, so a journal failure fails the section too.
func scopeResult(sess *session.Session, journals SourceResult[models.Journal], articles SourceResult[models.Article]) ([]models.Article, dto.SectionState) {
	state := articles.State()
	if needsJournals(sess) {
		if journals.Err != nil && !journals.Stale && state.Error == "" {
			state.Error = journals.State().Error
		}
		state.Stale = state.Stale || journals.Stale
	}
	return scopeArticles(sess, journals.Items, articles.Items), state
}

func (s *DashboardService) articlesSection(sess *session.Session, journals SourceResult[models.Journal], articles SourceResult[models.Article], now time.Time) dto.ArticlesSection {
	scoped, state := scopeResult(sess, journals, articles)
	rate := aggregate.RateOf(scoped, func(a models.Article) bool { return bool(a.APCPaid) })

	recent := make([]models.Article, len(scoped))
	copy(recent, scoped)
	sortNewestFirst(recent)

	return dto.ArticlesSection{
		SectionState:     state,
		Total:            len(scoped),
		ByStatus:         aggregate.CountByStatus(scoped),
		Daily:            s.summary(models.TrendDaily, scoped, now),
		Monthly:          s.summary(models.TrendMonthly, scoped, now),
		PaymentRate:      rate,
		PaymentRateLabel: aggregate.FormatPercent(rate),
		Recent:           head(recent, s.cfg.RecentLimit),
	}
}

func (s *DashboardService) notificationsSection(sess *session.Session, notifications SourceResult[models.Notification]) dto.NotificationsSection {
	items := scopeNotifications(sess, notifications.Items)
	sortNewestFirst(items)
	unread := 0
	for _, item := range items {
		if !item.IsRead() {
			unread++
		}
	}
	return dto.NotificationsSection{
		SectionState: notifications.State(),
		Unread:       unread,
		Recent:       head(items, s.cfg.RecentLimit),
	}
}

func (s *DashboardService) activitySection(logs SourceResult[models.AuditLog]) *dto.ActivitySection {
	items := make([]models.AuditLog, len(logs.Items))
	copy(items, logs.Items)
	sortNewestFirst(items)
	return &dto.ActivitySection{SectionState: logs.State(), Recent: head(items, s.cfg.RecentLimit)}
}

func (s *DashboardService) summary(mode models.TrendMode, articles []models.Article, now time.Time) models.TrendSummary {
	buckets := aggregate.Trend(mode, articles, models.Article.Timestamp, now, s.cfg.Location)
	return aggregate.Summarize(mode, buckets)
}

// Trends returns the scoped article trend for one mode.
func (s *DashboardService) Trends(ctx context.Context, sess *session.Session, mode models.TrendMode) (*dto.TrendResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var (
		journals SourceResult[models.Journal]
		articles SourceResult[models.Article]
	)
	g, gctx := s.group(ctx)
	g.Go(func() error {
		articles = fetchSource(gctx, s, sess, SourceArticles, s.backend.Articles)
		return s.joinErr(articles.Err)
	})
	if needsJournals(sess) {
		g.Go(func() error {
			journals = fetchSource(gctx, s, sess, SourceJournals, s.backend.Journals)
			return s.joinErr(journals.Err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, invalidateOnExpiry(sess, err)
	}
	if err := expired(journals.Err, articles.Err); err != nil {
		return nil, invalidateOnExpiry(sess, err)
	}

	scoped, state := scopeResult(sess, journals, articles)
	return &dto.TrendResponse{
		SectionState: state,
		TrendSummary: s.summary(mode, scoped, s.now()),
	}, nil
}

func head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

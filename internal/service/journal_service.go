package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/filter"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/internal/validation"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

type journalBackend interface {
	journalSource
	UpdateJournalStatus(ctx context.Context, token, journalID, status string) error
}

// JournalService lists journals with status tabs and applies super-admin
// status transitions.
type JournalService struct {
	backend   journalBackend
	cache     *CacheService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewJournalService constructs a JournalService. cache may be nil.
func NewJournalService(backend journalBackend, cache *CacheService, validator *validation.Validator, logger *zap.Logger) *JournalService {
	if validator == nil {
		validator = validation.New(validation.FileLimits{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{backend: backend, cache: cache, validator: validator, logger: logger}
}

func journalFields(j models.Journal) []string {
	return append([]string{j.Name, j.Slug, j.ISSN, j.SubjectArea}, j.Languages...)
}

func journalStatus(j models.Journal) string {
	return j.Status
}

// List returns the journals in scope filtered by query and tab, plus tab
// counts computed over the whole scope.
func (s *JournalService) List(ctx context.Context, sess *session.Session, req dto.JournalListRequest) (*dto.JournalListResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	journals, err := s.backend.Journals(ctx, sess.Token)
	if err != nil {
		return nil, invalidateOnExpiry(sess, err)
	}
	scoped := scopeJournals(sess, journals)

	items := filter.Apply(scoped, filter.Options[models.Journal]{
		Query:    req.Query,
		Fields:   journalFields,
		Tab:      req.Tab,
		TabValue: journalStatus,
		Tabs:     filter.StatusTabs,
	})
	return &dto.JournalListResponse{
		Items:  items,
		Counts: filter.Counts(scoped, journalStatus, filter.StatusTabs),
		Tabs:   filter.StatusTabs.Tabs(),
	}, nil
}

// UpdateStatus approves, disables or reactivates a journal.
func (s *JournalService) UpdateStatus(ctx context.Context, sess *session.Session, journalID string, req models.JournalStatusRequest) (*dto.JournalStatusResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(models.RoleSuperAdmin) {
		return nil, appErrors.ErrForbidden
	}
	journalID = strings.TrimSpace(journalID)
	if journalID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "journal id is required")
	}
	req.Action = models.JournalAction(strings.ToLower(strings.TrimSpace(string(req.Action))))
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	status, ok := req.Action.TargetStatus()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported journal action")
	}
	if err := s.backend.UpdateJournalStatus(ctx, sess.Token, journalID, status); err != nil {
		return nil, invalidateOnExpiry(sess, err)
	}
	// Dashboard fallbacks must not resurrect the previous status.
	if err := s.cache.Invalidate(ctx, lkgPattern(SourceJournals)); err != nil {
		s.logger.Warn("journal fallbacks not invalidated", zap.String("journal_id", journalID), zap.Error(err))
	}
	s.logger.Info("journal status changed",
		zap.String("journal_id", journalID),
		zap.String("action", string(req.Action)),
		zap.String("status", status),
		zap.String("actor", string(sess.UserID)),
	)
	return &dto.JournalStatusResponse{JournalID: models.ID(journalID), Action: req.Action, Status: status}, nil
}

package service

import (
	"context"
	"sort"
	"strings"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/filter"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

// AuditService exposes the backend activity log to super admins.
type AuditService struct {
	backend auditSource
}

// NewAuditService constructs an AuditService.
func NewAuditService(backend auditSource) *AuditService {
	return &AuditService{backend: backend}
}

// List returns audit entries matching the query and action, newest first.
// Actions lists every distinct action in the unfiltered log.
func (s *AuditService) List(ctx context.Context, sess *session.Session, req dto.AuditListRequest) (*dto.AuditListResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(models.RoleSuperAdmin) {
		return nil, appErrors.ErrForbidden
	}
	logs, err := s.backend.AuditLogs(ctx, sess.Token)
	if err != nil {
		return nil, invalidateOnExpiry(sess, err)
	}

	seen := make(map[string]struct{})
	actions := make([]string, 0)
	for _, log := range logs {
		action := strings.TrimSpace(log.Action)
		if action == "" {
			continue
		}
		if _, ok := seen[action]; !ok {
			seen[action] = struct{}{}
			actions = append(actions, action)
		}
	}
	sort.Strings(actions)

	items := filter.Apply(logs, filter.Options[models.AuditLog]{
		Query: req.Query,
		Fields: func(l models.AuditLog) []string {
			return []string{l.Actor, l.Action, l.EntityType, string(l.EntityID), l.IPAddress}
		},
		Tab:      req.Action,
		TabValue: func(l models.AuditLog) string { return l.Action },
	})
	sortNewestFirst(items)
	return &dto.AuditListResponse{Items: items, Actions: actions}, nil
}

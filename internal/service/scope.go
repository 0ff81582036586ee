package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/normalize"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

type articleSource interface {
	Articles(ctx context.Context, token string) ([]models.Article, error)
}

type journalSource interface {
	Journals(ctx context.Context, token string) ([]models.Journal, error)
}

type userSource interface {
	Users(ctx context.Context, token string) ([]models.User, error)
}

type notificationSource interface {
	Notifications(ctx context.Context, token string) ([]models.Notification, error)
}

type auditSource interface {
	AuditLogs(ctx context.Context, token string) ([]models.AuditLog, error)
}

// needsJournals reports whether scoping articles for sess requires the journal list.
func needsJournals(sess *session.Session) bool {
	return sess.Role == models.RoleJournalAdmin
}

// scopeArticles applies the role's tenant scope. Super admins and editors see
// every article, journal admins see articles of the journals they own and
// authors see their own submissions.
func scopeArticles(sess *session.Session, journals []models.Journal, articles []models.Article) []models.Article {
	switch sess.Role {
	case models.RoleSuperAdmin, models.RoleEditor:
		return normalize.Where(articles, func(models.Article) bool { return true })
	case models.RoleJournalAdmin:
		return normalize.ArticlesForAdmin(journals, articles, sess.AdminID)
	default:
		return normalize.ArticlesForAuthor(articles, sess.UserID)
	}
}

// scopeJournals returns every journal for super admins and editors and the
// owned journals for journal admins. Authors see every journal.
func scopeJournals(sess *session.Session, journals []models.Journal) []models.Journal {
	if sess.Role == models.RoleJournalAdmin {
		return normalize.ScopeByOwner(journals, sess.AdminID)
	}
	return normalize.Where(journals, func(models.Journal) bool { return true })
}

// scopeNotifications keeps the caller's notifications. Records without a
// recipient are assumed to be pre-filtered by the backend.
func scopeNotifications(sess *session.Session, items []models.Notification) []models.Notification {
	return normalize.Where(items, func(n models.Notification) bool {
		return n.UserID == "" || n.UserID == sess.UserID
	})
}

type timestamped interface {
	Timestamp() (time.Time, bool)
}

// sortNewestFirst orders items by timestamp descending. Items without a
// timestamp sink to the end in their original order.
func sortNewestFirst[T timestamped](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, oki := items[i].Timestamp()
		tj, okj := items[j].Timestamp()
		if oki != okj {
			return oki
		}
		return ti.After(tj)
	})
}

func requireSession(sess *session.Session) error {
	if sess == nil || sess.Token == "" {
		return appErrors.ErrUnauthorized
	}
	if sess.Invalidated() {
		return appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	return nil
}

// invalidateOnExpiry marks sess invalid when err is a backend 401.
func invalidateOnExpiry(sess *session.Session, err error) error {
	if err != nil && sess != nil && errors.Is(err, appErrors.ErrSessionExpired) {
		sess.Invalidate()
	}
	return err
}

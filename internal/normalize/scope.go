package normalize

import (
	"strings"

	"github.com/noah-isme/journal-desk-api/internal/models"
)

// Where keeps the items matching keep, in order. The result is never nil.
func Where[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func sameID(a, b models.ID) bool {
	left := strings.TrimSpace(string(a))
	return left != "" && left == strings.TrimSpace(string(b))
}

// ScopeByOwner returns the journals whose journal_admin_id is adminID.
func ScopeByOwner(journals []models.Journal, adminID models.ID) []models.Journal {
	return Where(journals, func(j models.Journal) bool {
		return sameID(j.JournalAdminID, adminID)
	})
}

// OwnedJournalIDs collects the ids of the journals owned by adminID.
func OwnedJournalIDs(journals []models.Journal, adminID models.ID) map[models.ID]struct{} {
	ids := make(map[models.ID]struct{})
	for _, journal := range ScopeByOwner(journals, adminID) {
		ids[models.ID(strings.TrimSpace(string(journal.ID)))] = struct{}{}
	}
	return ids
}

// ArticlesForAdmin keeps the articles published in a journal owned by adminID.
// It is empty when the admin owns no journals.
func ArticlesForAdmin(journals []models.Journal, articles []models.Article, adminID models.ID) []models.Article {
	owned := OwnedJournalIDs(journals, adminID)
	if len(owned) == 0 {
		return []models.Article{}
	}
	return Where(articles, func(a models.Article) bool {
		_, ok := owned[models.ID(strings.TrimSpace(string(a.JournalID)))]
		return ok
	})
}

// ArticlesForAuthor keeps the articles submitted by userID.
func ArticlesForAuthor(articles []models.Article, userID models.ID) []models.Article {
	return Where(articles, func(a models.Article) bool {
		return sameID(a.UserID, userID)
	})
}

// NotificationsFor keeps the notifications addressed to userID.
func NotificationsFor(notifications []models.Notification, userID models.ID) []models.Notification {
	return Where(notifications, func(n models.Notification) bool {
		return sameID(n.UserID, userID)
	})
}

package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/filter"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/internal/validation"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

type notificationBackend interface {
	notificationSource
	MarkNotificationRead(ctx context.Context, token, notificationID string) error
	CreateNotification(ctx context.Context, token string, req models.CreateNotificationRequest) error
}

// NotificationService keeps a per-user notification view and applies
// mark-read transitions optimistically with rollback.
type NotificationService struct {
	backend   notificationBackend
	cache     *CacheService
	validator *validation.Validator
	viewTTL   time.Duration
	logger    *zap.Logger

	// per-user locks around read-modify-write of the stored view
	views sync.Map
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(backend notificationBackend, cache *CacheService, validator *validation.Validator, viewTTL time.Duration, logger *zap.Logger) *NotificationService {
	if validator == nil {
		validator = validation.New(validation.FileLimits{})
	}
	if viewTTL <= 0 {
		viewTTL = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{backend: backend, cache: cache, validator: validator, viewTTL: viewTTL, logger: logger}
}

func viewKey(userID models.ID) string {
	return fmt.Sprintf("notif:view:%s", userID)
}

// View fetches the caller's notifications, stores the view and returns the
// entries under tab ("all", "unread" or "read"). Unread counts the whole view.
func (s *NotificationService) View(ctx context.Context, sess *session.Session, tab string) (*dto.NotificationView, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	view, err := s.refresh(ctx, sess)
	if err != nil {
		return nil, err
	}
	view.Items = filter.Apply(view.Items, filter.Options[models.Notification]{
		Tab:      tab,
		TabValue: func(n models.Notification) string { return n.Status },
		Tabs:     filter.ReadTabs,
	})
	return &view, nil
}

func (s *NotificationService) refresh(ctx context.Context, sess *session.Session) (dto.NotificationView, error) {
	items, err := s.backend.Notifications(ctx, sess.Token)
	if err != nil {
		return dto.NotificationView{}, invalidateOnExpiry(sess, err)
	}
	items = scopeNotifications(sess, items)
	sortNewestFirst(items)
	view := dto.NotificationView{Items: items}
	view.Recount()
	s.store(ctx, sess.UserID, view)
	return view, nil
}

func (s *NotificationService) load(ctx context.Context, sess *session.Session) (dto.NotificationView, error) {
	if s.cache != nil {
		var cached dto.NotificationView
		hit, err := s.cache.Get(ctx, viewKey(sess.UserID), &cached)
		if err == nil && hit {
			return cached, nil
		}
	}
	return s.refresh(ctx, sess)
}

func (s *NotificationService) store(ctx context.Context, userID models.ID, view dto.NotificationView) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, viewKey(userID), view, s.viewTTL); err != nil {
		s.logger.Warn("notification view not cached", zap.String("user_id", string(userID)), zap.Error(err))
	}
}

func (s *NotificationService) lockView(userID models.ID) func() {
	mu, _ := s.views.LoadOrStore(userID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

func indexOf(view dto.NotificationView, notificationID string) int {
	for i, item := range view.Items {
		if string(item.ID) == notificationID {
			return i
		}
	}
	return -1
}

// MarkRead marks one notification read. The change is applied to the stored
// view before the backend confirms it; if the backend rejects it only that
// entry is restored on the current view, which is returned along with the
// error. Marking an already-read notification is a no-op that makes no
// backend call.
func (s *NotificationService) MarkRead(ctx context.Context, sess *session.Session, notificationID string) (*dto.NotificationView, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	notificationID = strings.TrimSpace(notificationID)

	unlock := s.lockView(sess.UserID)
	view, err := s.load(ctx, sess)
	if err != nil {
		unlock()
		return nil, err
	}
	index := indexOf(view, notificationID)
	if index < 0 {
		unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	if view.Items[index].IsRead() {
		unlock()
		return &view, nil
	}
	previous := view.Items[index].Status
	tentative := view.Clone()
	tentative.Items[index].Status = models.NotificationRead
	tentative.Recount()
	s.store(ctx, sess.UserID, tentative)
	unlock()

	if err := s.backend.MarkNotificationRead(ctx, sess.Token, notificationID); err != nil {
		reverted := s.revert(ctx, sess, notificationID, previous, view)
		s.logger.Warn("mark read rejected, view rolled back",
			zap.String("notification_id", notificationID),
			zap.Error(err),
		)
		return &reverted, invalidateOnExpiry(sess, err)
	}
	return &tentative, nil
}

// revert restores one entry on the view stored now, so a concurrent mark-read
// that was confirmed in the meantime is kept. fallback is used when the
// stored view is gone.
func (s *NotificationService) revert(ctx context.Context, sess *session.Session, notificationID, status string, fallback dto.NotificationView) dto.NotificationView {
	unlock := s.lockView(sess.UserID)
	defer unlock()

	current := fallback.Clone()
	if s.cache != nil {
		var cached dto.NotificationView
		if hit, err := s.cache.Get(ctx, viewKey(sess.UserID), &cached); err == nil && hit {
			current = cached
		}
	}
	if i := indexOf(current, notificationID); i >= 0 {
		current.Items[i].Status = status
	}
	current.Recount()
	s.store(ctx, sess.UserID, current)
	return current
}

// Create sends a notification to a user.
func (s *NotificationService) Create(ctx context.Context, sess *session.Session, req models.CreateNotificationRequest) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	if err := s.backend.CreateNotification(ctx, sess.Token, req); err != nil {
		return invalidateOnExpiry(sess, err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, viewKey(models.ID(strings.TrimSpace(req.UserID))))
	}
	return nil
}

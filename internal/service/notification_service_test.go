package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

func notificationFixture() *fakeBackend {
	base := time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)
	return &fakeBackend{notifications: []models.Notification{
		{ID: "1", UserID: "7", Title: "Received", Status: models.NotificationRead, CreatedAt: base},
		{ID: "2", UserID: "7", Title: "Review started", Status: models.NotificationUnread, CreatedAt: base.Add(time.Hour)},
		{ID: "3", UserID: "8", Title: "Not yours", Status: models.NotificationUnread, CreatedAt: base},
		{ID: "4", Title: "Broadcast", Status: models.NotificationUnread, CreatedAt: base.Add(-time.Hour)},
	}}
}

func TestNotificationViewScopesAndSorts(t *testing.T) {
	svc := NewNotificationService(notificationFixture(), enabledCache(&stubCacheRepo{}), nil, 0, nil)

	view, err := svc.View(context.Background(), newSession(models.RoleAuthor, "7"), "")
	require.NoError(t, err)
	require.Len(t, view.Items, 3)
	assert.Equal(t, models.ID("2"), view.Items[0].ID)
	assert.Equal(t, 2, view.Unread)

	view, err = svc.View(context.Background(), newSession(models.RoleAuthor, "7"), "read")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Unread)
}

func TestMarkReadAppliesAndConfirms(t *testing.T) {
	backend := notificationFixture()
	repo := &stubCacheRepo{}
	svc := NewNotificationService(backend, enabledCache(repo), nil, 0, nil)
	sess := newSession(models.RoleAuthor, "7")

	view, err := svc.MarkRead(context.Background(), sess, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Unread)
	assert.Equal(t, []string{"2"}, backend.markRead)

	var stored dto.NotificationView
	require.NoError(t, repo.Get(context.Background(), viewKey("7"), &stored))
	assert.Equal(t, 1, stored.Unread)
}

func TestMarkReadRollsBackOnRejection(t *testing.T) {
	backend := notificationFixture()
	backend.markReadErr = appErrors.Clone(appErrors.ErrFetchFailed, "cannot update")
	repo := &stubCacheRepo{}
	svc := NewNotificationService(backend, enabledCache(repo), nil, 0, nil)
	sess := newSession(models.RoleAuthor, "7")

	view, err := svc.MarkRead(context.Background(), sess, "2")
	require.ErrorIs(t, err, appErrors.ErrFetchFailed)
	require.NotNil(t, view)
	assert.Equal(t, 2, view.Unread)
	for _, item := range view.Items {
		if item.ID == "2" {
			assert.Equal(t, models.NotificationUnread, item.Status)
		}
	}

	var stored dto.NotificationView
	require.NoError(t, repo.Get(context.Background(), viewKey("7"), &stored))
	assert.Equal(t, 2, stored.Unread)
	assert.Equal(t, models.NotificationUnread, stored.Items[0].Status)
}

// interleavedBackend confirms another mark-read for the same user while the
// rejected call is still in flight.
type interleavedBackend struct {
	*fakeBackend
	svc  *NotificationService
	sess *session.Session
}

func (b *interleavedBackend) MarkNotificationRead(ctx context.Context, token, id string) error {
	if id != "2" {
		return b.fakeBackend.MarkNotificationRead(ctx, token, id)
	}
	if _, err := b.svc.MarkRead(ctx, b.sess, "4"); err != nil {
		return err
	}
	return appErrors.Clone(appErrors.ErrFetchFailed, "cannot update")
}

func TestMarkReadRollbackKeepsConcurrentConfirmation(t *testing.T) {
	repo := &stubCacheRepo{}
	sess := newSession(models.RoleAuthor, "7")
	backend := &interleavedBackend{fakeBackend: notificationFixture(), sess: sess}
	svc := NewNotificationService(backend, enabledCache(repo), nil, 0, nil)
	backend.svc = svc

	view, err := svc.MarkRead(context.Background(), sess, "2")
	require.ErrorIs(t, err, appErrors.ErrFetchFailed)
	require.NotNil(t, view)
	assert.Equal(t, 1, view.Unread)

	var stored dto.NotificationView
	require.NoError(t, repo.Get(context.Background(), viewKey("7"), &stored))
	assert.Equal(t, 1, stored.Unread)
	statuses := map[models.ID]string{}
	for _, item := range stored.Items {
		statuses[item.ID] = item.Status
	}
	assert.Equal(t, models.NotificationUnread, statuses["2"])
	assert.Equal(t, models.NotificationRead, statuses["4"])
	assert.Equal(t, []string{"4"}, backend.markRead)
}

func TestMarkReadAlreadyReadIsNoop(t *testing.T) {
	backend := notificationFixture()
	svc := NewNotificationService(backend, enabledCache(&stubCacheRepo{}), nil, 0, nil)

	view, err := svc.MarkRead(context.Background(), newSession(models.RoleAuthor, "7"), "1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Unread)
	assert.Equal(t, 0, backend.count("markRead"))
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc := NewNotificationService(notificationFixture(), nil, nil, 0, nil)

	_, err := svc.MarkRead(context.Background(), newSession(models.RoleAuthor, "7"), "3")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCreateNotificationValidatesAndClearsView(t *testing.T) {
	backend := notificationFixture()
	repo := &stubCacheRepo{}
	svc := NewNotificationService(backend, enabledCache(repo), nil, 0, nil)
	ctx := context.Background()
	admin := newSession(models.RoleSuperAdmin, "1")

	err := svc.Create(ctx, admin, models.CreateNotificationRequest{Title: "Missing user"})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.View(ctx, newSession(models.RoleAuthor, "7"), "")
	require.NoError(t, err)
	require.True(t, repo.has(viewKey("7")))

	err = svc.Create(ctx, admin, models.CreateNotificationRequest{UserID: "7", Title: "Decision", Message: "Accepted"})
	require.NoError(t, err)
	assert.Len(t, backend.sentNotifications, 1)
	assert.False(t, repo.has(viewKey("7")))
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/models"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

func TestJournalListScopesAndCounts(t *testing.T) {
	backend := editorialFixture()
	svc := NewJournalService(backend, nil, nil, nil)

	resp, err := svc.List(context.Background(), newSession(models.RoleJournalAdmin, "5"), dto.JournalListRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, map[string]int{"all": 2, "active": 1, "pending": 1, "disabled": 0}, resp.Counts)
	assert.Equal(t, []string{"all", "active", "disabled", "pending"}, resp.Tabs)

	resp, err = svc.List(context.Background(), newSession(models.RoleSuperAdmin, "1"), dto.JournalListRequest{Tab: "blocked"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, models.ID("3"), resp.Items[0].ID)
	assert.Equal(t, 3, resp.Counts["all"])
}

func TestJournalListQuery(t *testing.T) {
	svc := NewJournalService(editorialFixture(), nil, nil, nil)
	resp, err := svc.List(context.Background(), newSession(models.RoleSuperAdmin, "1"), dto.JournalListRequest{Query: "review"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Crop Review", resp.Items[0].Name)
}

func TestJournalUpdateStatus(t *testing.T) {
	backend := editorialFixture()
	svc := NewJournalService(backend, nil, nil, nil)

	resp, err := svc.UpdateStatus(context.Background(), newSession(models.RoleSuperAdmin, "1"), "2", models.JournalStatusRequest{Action: "Approve"})
	require.NoError(t, err)
	assert.Equal(t, models.JournalActive, resp.Status)
	assert.Equal(t, models.JournalActive, backend.statusUpdates["2"])
}

func TestJournalUpdateStatusDropsDashboardFallbacks(t *testing.T) {
	backend := editorialFixture()
	repo := &stubCacheRepo{}
	cache := enabledCache(repo)
	ctx := context.Background()
	superAdmin := newSession(models.RoleSuperAdmin, "1")

	for _, key := range []string{lkgKey("1", SourceJournals), lkgKey("5", SourceJournals), lkgKey("5", SourceArticles)} {
		require.NoError(t, cache.Set(ctx, key, []models.Journal{{ID: "2", Status: models.JournalPending}}, 0))
	}

	svc := NewJournalService(backend, cache, nil, nil)
	_, err := svc.UpdateStatus(ctx, superAdmin, "2", models.JournalStatusRequest{Action: "approve"})
	require.NoError(t, err)

	assert.False(t, repo.has(lkgKey("1", SourceJournals)))
	assert.False(t, repo.has(lkgKey("5", SourceJournals)))
	assert.True(t, repo.has(lkgKey("5", SourceArticles)))
}

func TestJournalUpdateStatusRejections(t *testing.T) {
	backend := editorialFixture()
	svc := NewJournalService(backend, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, newSession(models.RoleJournalAdmin, "5"), "1", models.JournalStatusRequest{Action: "disable"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.UpdateStatus(ctx, newSession(models.RoleSuperAdmin, "1"), "1", models.JournalStatusRequest{Action: "delete"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.UpdateStatus(ctx, newSession(models.RoleSuperAdmin, "1"), " ", models.JournalStatusRequest{Action: "disable"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, 0, backend.count("updateJournal"))
}

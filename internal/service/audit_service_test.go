package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/models"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

func TestAuditListFiltersAndSorts(t *testing.T) {
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	backend := &fakeBackend{logs: []models.AuditLog{
		{ID: "1", Actor: "Root", Action: "journal.update", EntityType: "journal", CreatedAt: base},
		{ID: "2", Actor: "Ada", Action: "article.create", EntityType: "article", CreatedAt: base.Add(time.Hour)},
		{ID: "3", Actor: "Root", Action: "journal.update", EntityType: "journal", IPAddress: "10.0.0.9", CreatedAt: base.Add(2 * time.Hour)},
	}}
	svc := NewAuditService(backend)
	admin := newSession(models.RoleSuperAdmin, "1")

	resp, err := svc.List(context.Background(), admin, dto.AuditListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, models.ID("3"), resp.Items[0].ID)
	assert.Equal(t, []string{"article.create", "journal.update"}, resp.Actions)

	resp, err = svc.List(context.Background(), admin, dto.AuditListRequest{Query: "10.0.0", Action: "journal.update"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, models.ID("3"), resp.Items[0].ID)
}

func TestAuditListSuperAdminOnly(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewAuditService(backend)

	_, err := svc.List(context.Background(), newSession(models.RoleEditor, "2"), dto.AuditListRequest{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Equal(t, 0, backend.count("logs"))
}

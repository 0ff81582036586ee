package session

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/journal-desk-api/internal/models"
)

type mapCache struct {
	store map[string][]byte
}

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.store == nil {
		m.store = map[string][]byte{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func TestSessionRoundTripThroughContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := From(c)
	assert.False(t, ok)

	Set(c, New("7", models.RoleJournalAdmin, "admin@example.com", "tok"))
	s, ok := From(c)
	require.True(t, ok)
	assert.Equal(t, models.ID("7"), s.AdminID)
	assert.True(t, s.HasRole(models.RoleSuperAdmin, models.RoleJournalAdmin))
	assert.False(t, s.HasRole(models.RoleEditor))
}

func TestAuthorHasNoAdminID(t *testing.T) {
	s := New("9", models.RoleAuthor, "", "tok")
	assert.Empty(t, s.AdminID)
	assert.False(t, s.Invalidated())
	s.Invalidate()
	assert.True(t, s.Invalidated())
}

func TestTokenStoreRevoke(t *testing.T) {
	store := NewTokenStore(&mapCache{}, time.Hour, nil)
	ctx := context.Background()

	assert.False(t, store.IsRevoked(ctx, "tok"))
	store.Revoke(ctx, "tok")
	assert.True(t, store.IsRevoked(ctx, "tok"))
	assert.False(t, store.IsRevoked(ctx, "other"))

	var nilStore *TokenStore
	assert.False(t, nilStore.IsRevoked(ctx, "tok"))
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/journal-desk-api/internal/models"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

func TestUserServiceCreate(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewUserService(backend, nil, nil)

	err := svc.Create(context.Background(), newSession(models.RoleSuperAdmin, "1"), models.CreateUserRequest{
		Name:     " Dana ",
		Email:    "Dana@Example.org",
		Password: "Secret1",
		Role:     "editor",
	})
	require.NoError(t, err)
	require.Len(t, backend.sentUsers, 1)
	assert.Equal(t, "dana@example.org", backend.sentUsers[0].Email)
	assert.Equal(t, models.RoleEditor, backend.sentUsers[0].Role)
}

func TestUserServiceCreateValidation(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewUserService(backend, nil, nil)
	admin := newSession(models.RoleSuperAdmin, "1")

	cases := map[string]models.CreateUserRequest{
		"weak password": {Name: "Dana", Email: "dana@example.org", Password: "secret", Role: models.RoleEditor},
		"bad email":     {Name: "Dana", Email: "dana", Password: "Secret1", Role: models.RoleEditor},
		"super admin":   {Name: "Dana", Email: "dana@example.org", Password: "Secret1", Role: models.RoleSuperAdmin},
		"short phone":   {Name: "Dana", Email: "dana@example.org", Password: "Secret1", Role: models.RoleEditor, Phone: "12345"},
		"missing name":  {Email: "dana@example.org", Password: "Secret1", Role: models.RoleEditor},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.Create(context.Background(), admin, req)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
	assert.Equal(t, 0, backend.count("createUser"))
}

func TestUserServiceCreateForbidden(t *testing.T) {
	svc := NewUserService(&fakeBackend{}, nil, nil)
	err := svc.Create(context.Background(), newSession(models.RoleJournalAdmin, "5"), models.CreateUserRequest{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

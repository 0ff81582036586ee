package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/internal/validation"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

type userBackend interface {
	CreateUser(ctx context.Context, token string, req models.CreateUserRequest) error
}

// UserService provisions panel accounts on behalf of super admins.
type UserService struct {
	backend   userBackend
	validator *validation.Validator
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(backend userBackend, validator *validation.Validator, logger *zap.Logger) *UserService {
	if validator == nil {
		validator = validation.New(validation.FileLimits{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{backend: backend, validator: validator, logger: logger}
}

// Create validates the account locally and forwards it to the backend.
func (s *UserService) Create(ctx context.Context, sess *session.Session, req models.CreateUserRequest) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if !sess.HasRole(models.RoleSuperAdmin) {
		return appErrors.ErrForbidden
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Role = models.UserRole(strings.ToUpper(strings.TrimSpace(string(req.Role))))
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	if err := s.backend.CreateUser(ctx, sess.Token, req); err != nil {
		return invalidateOnExpiry(sess, err)
	}
	s.logger.Info("panel account created", zap.String("email", req.Email), zap.String("role", string(req.Role)))
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

type revokedTokens interface {
	IsRevoked(ctx context.Context, token string) bool
}

// AuthConfig holds the shared secret the journal backend signs tokens with.
type AuthConfig struct {
	Secret string
	Issuer string
}

// AuthService verifies panel access tokens and turns them into sessions.
// Tokens are issued by the journal backend; this service never signs any.
type AuthService struct {
	config  AuthConfig
	revoked revokedTokens
	logger  *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(config AuthConfig, revoked revokedTokens, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{config: config, revoked: revoked, logger: logger}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if strings.TrimSpace(string(claims.UserID)) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has no user")
	}
	return claims, nil
}

// Authenticate validates token and builds the request session. Tokens the
// backend already rejected fail with SESSION_EXPIRED.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if s.revoked != nil && s.revoked.IsRevoked(ctx, token) {
		s.logger.Debug("revoked token presented", zap.String("user_id", string(claims.UserID)))
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	return session.New(string(claims.UserID), models.ParseRole(claims.Role), claims.Email, token), nil
}

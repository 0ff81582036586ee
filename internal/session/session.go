// Package session carries the signed-in panel identity through a request.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/models"
)

const contextKey = "session"

// Session is the identity of the caller. AdminID is set for journal admins and
// is the key their journals are scoped by.
type Session struct {
	UserID  models.ID       `json:"user_id"`
	AdminID models.ID       `json:"admin_id,omitempty"`
	Role    models.UserRole `json:"role"`
	Email   string          `json:"email,omitempty"`
	Token   string          `json:"-"`

	mu          sync.Mutex
	invalidated bool
}

// New builds a Session for a verified token.
func New(userID string, role models.UserRole, email, token string) *Session {
	s := &Session{UserID: models.ID(userID), Role: role, Email: email, Token: token}
	if role == models.RoleJournalAdmin {
		s.AdminID = s.UserID
	}
	return s
}

// Set stores s on the gin context.
func Set(c *gin.Context, s *Session) {
	c.Set(contextKey, s)
}

// From returns the session stored by the JWT middleware.
func From(c *gin.Context) (*Session, bool) {
	value, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	s, ok := value.(*Session)
	return s, ok && s != nil
}

// HasRole reports whether the session role is one of roles.
func (s *Session) HasRole(roles ...models.UserRole) bool {
	if s == nil {
		return false
	}
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}

// Invalidate marks the session as no longer usable, e.g. after the backend
// rejected its token.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.invalidated = true
	s.mu.Unlock()
}

// Invalidated reports whether Invalidate was called.
func (s *Session) Invalidated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

type revocationCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// TokenStore remembers tokens the backend rejected so they are refused
// locally until they would have expired.
type TokenStore struct {
	cache  revocationCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(cache revocationCache, ttl time.Duration, logger *zap.Logger) *TokenStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenStore{cache: cache, ttl: ttl, logger: logger}
}

func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:revoked:" + hex.EncodeToString(sum[:])
}

// Revoke records token as rejected.
func (s *TokenStore) Revoke(ctx context.Context, token string) {
	if s == nil || s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Set(ctx, revokedKey(token), time.Now().UTC(), s.ttl); err != nil {
		s.logger.Warn("token revocation not persisted", zap.Error(err))
	}
}

// IsRevoked reports whether token was revoked. Cache failures are treated as
// not revoked.
func (s *TokenStore) IsRevoked(ctx context.Context, token string) bool {
	if s == nil || s.cache == nil || token == "" {
		return false
	}
	var revokedAt time.Time
	hit, err := s.cache.Get(ctx, revokedKey(token), &revokedAt)
	if err != nil {
		s.logger.Warn("token revocation lookup failed", zap.Error(err))
		return false
	}
	return hit
}

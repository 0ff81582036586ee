package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
	"github.com/noah-isme/journal-desk-api/pkg/response"
)

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

func bearerToken(c *gin.Context) (string, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// JWT protects routes by requiring a valid, unrevoked access token and
// stores the resulting session on the context.
func JWT(auth authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		session.Set(c, sess)
		c.Next()
	}
}

package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
	"github.com/noah-isme/journal-desk-api/pkg/response"
)

// currentSession answers 401 and returns false when the request carries no session.
func currentSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := session.From(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return sess, true
}

func pathID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id is required"))
		return "", false
	}
	return id, true
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

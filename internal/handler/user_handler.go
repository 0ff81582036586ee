package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/pkg/response"
)

type userService interface {
	Create(ctx context.Context, sess *session.Session, req models.CreateUserRequest) error
}

// UserHandler provisions panel accounts.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// Create godoc
// @Summary Create a panel account
// @Description Journal admin, editor or author accounts; validated before reaching the backend.
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid user payload"))
		return
	}
	if err := h.service.Create(c.Request.Context(), sess, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"email": req.Email, "role": req.Role})
}

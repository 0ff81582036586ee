package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/pkg/response"
)

type notificationService interface {
	View(ctx context.Context, sess *session.Session, tab string) (*dto.NotificationView, error)
	MarkRead(ctx context.Context, sess *session.Session, notificationID string) (*dto.NotificationView, error)
	Create(ctx context.Context, sess *session.Session, req models.CreateNotificationRequest) error
}

// NotificationHandler exposes the caller's notification view.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List godoc
// @Summary Notifications of the current user
// @Tags Notifications
// @Produce json
// @Param tab query string false "all, unread or read"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := h.service.View(c.Request.Context(), sess, c.Query("tab"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Description On backend failure the error is returned together with the restored view.
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.service.MarkRead(c.Request.Context(), sess, id)
	if err != nil {
		if view != nil {
			response.ErrorWithData(c, err, view)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Create godoc
// @Summary Send a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body models.CreateNotificationRequest true "Notification"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid notification payload"))
		return
	}
	if err := h.service.Create(c.Request.Context(), sess, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"userId": req.UserID, "title": req.Title})
}

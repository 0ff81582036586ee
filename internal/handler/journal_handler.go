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

type journalService interface {
	List(ctx context.Context, sess *session.Session, req dto.JournalListRequest) (*dto.JournalListResponse, error)
	UpdateStatus(ctx context.Context, sess *session.Session, journalID string, req models.JournalStatusRequest) (*dto.JournalStatusResponse, error)
}

// JournalHandler exposes journal listing and status transitions.
type JournalHandler struct {
	service journalService
}

// NewJournalHandler constructs the handler.
func NewJournalHandler(service journalService) *JournalHandler {
	return &JournalHandler{service: service}
}

// List godoc
// @Summary List journals
// @Tags Journals
// @Produce json
// @Param q query string false "Free text"
// @Param tab query string false "all, active, pending or disabled"
// @Success 200 {object} response.Envelope
// @Router /journals [get]
func (h *JournalHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.JournalListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	resp, err := h.service.List(c.Request.Context(), sess, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary Approve, disable or reactivate a journal
// @Tags Journals
// @Accept json
// @Produce json
// @Param id path string true "Journal ID"
// @Param payload body models.JournalStatusRequest true "Action"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /journals/{id}/status [put]
func (h *JournalHandler) UpdateStatus(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.JournalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}
	resp, err := h.service.UpdateStatus(c.Request.Context(), sess, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

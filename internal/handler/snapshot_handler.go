package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
	"github.com/noah-isme/journal-desk-api/pkg/response"
)

type snapshotService interface {
	List(ctx context.Context, sess *session.Session, req dto.SnapshotListRequest) ([]models.TrendSnapshot, error)
	Enqueue(ctx context.Context, sess *session.Session, req dto.SnapshotCaptureRequest) (*dto.SnapshotCaptureResponse, error)
}

// SnapshotHandler exposes persisted trend snapshots.
type SnapshotHandler struct {
	service snapshotService
}

// NewSnapshotHandler constructs the handler. A nil service answers 503.
func NewSnapshotHandler(service snapshotService) *SnapshotHandler {
	return &SnapshotHandler{service: service}
}

func (h *SnapshotHandler) available(c *gin.Context) bool {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUpstreamUnavailable, "snapshot storage is not configured"))
		return false
	}
	return true
}

// List godoc
// @Summary List trend snapshots
// @Tags Snapshots
// @Produce json
// @Param scope query string false "Scope"
// @Param mode query string false "daily or monthly"
// @Param limit query int false "Maximum rows (default 30)"
// @Success 200 {object} response.Envelope
// @Router /snapshots [get]
func (h *SnapshotHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !h.available(c) {
		return
	}
	var req dto.SnapshotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	snapshots, err := h.service.List(c.Request.Context(), sess, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshots, map[string]interface{}{"total": len(snapshots)})
}

// Capture godoc
// @Summary Queue a trend snapshot
// @Tags Snapshots
// @Accept json
// @Produce json
// @Param payload body dto.SnapshotCaptureRequest false "Mode (default daily)"
// @Success 202 {object} response.Envelope
// @Router /snapshots [post]
func (h *SnapshotHandler) Capture(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok || !h.available(c) {
		return
	}
	var req dto.SnapshotCaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, bindError(err, "invalid snapshot payload"))
		return
	}
	resp, err := h.service.Enqueue(c.Request.Context(), sess, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, resp)
}

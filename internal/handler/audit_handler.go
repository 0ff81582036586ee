package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/session"
	"github.com/noah-isme/journal-desk-api/pkg/response"
)

type auditService interface {
	List(ctx context.Context, sess *session.Session, req dto.AuditListRequest) (*dto.AuditListResponse, error)
}

// AuditHandler exposes the backend activity log.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary Activity log
// @Tags Audit
// @Produce json
// @Param q query string false "Free text over actor, action, entity and IP"
// @Param action query string false "Exact action"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dto.AuditListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	resp, err := h.service.List(c.Request.Context(), sess, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, map[string]interface{}{"total": len(resp.Items)})
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/journal-desk-api/internal/dto"
	"github.com/noah-isme/journal-desk-api/internal/middleware"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/service"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
	"github.com/noah-isme/journal-desk-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context, sess *session.Session) (*dto.DashboardResponse, error)
	Trends(ctx context.Context, sess *session.Session, mode models.TrendMode) (*dto.TrendResponse, error)
}

type trendExporter interface {
	Trend(ctx context.Context, sess *session.Session, mode models.TrendMode, format string) (*service.ExportResult, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service  dashboardService
	exporter trendExporter
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, exporter trendExporter) *DashboardHandler {
	return &DashboardHandler{service: service, exporter: exporter}
}

func trendMode(c *gin.Context) (models.TrendMode, bool) {
	mode, ok := models.ParseTrendMode(c.Query("mode"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "mode must be one of: daily monthly"))
		return "", false
	}
	return mode, true
}

// Overview godoc
// @Summary Role-scoped dashboard
// @Description Journals, articles, notifications and (super admin) activity fetched concurrently. Failed sections carry an error and may be stale.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	overview, err := h.service.Overview(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	sections := map[string]dto.SectionState{
		service.SourceJournals:      overview.Journals.SectionState,
		service.SourceArticles:      overview.Articles.SectionState,
		service.SourceNotifications: overview.Notifications.SectionState,
	}
	if overview.Activity != nil {
		sections[service.SourceLogs] = overview.Activity.SectionState
	}
	for _, name := range []string{service.SourceJournals, service.SourceArticles, service.SourceNotifications, service.SourceLogs} {
		if state, ok := sections[name]; ok && state.Stale {
			middleware.MarkStale(c, name)
		}
	}
	response.JSON(c, http.StatusOK, overview, middleware.ExtractMeta(c))
}

// Trends godoc
// @Summary Scoped article trend
// @Tags Dashboard
// @Produce json
// @Param mode query string false "daily (default) or monthly"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/trends [get]
func (h *DashboardHandler) Trends(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	mode, ok := trendMode(c)
	if !ok {
		return
	}
	trend, err := h.service.Trends(c.Request.Context(), sess, mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	if trend.Stale {
		middleware.MarkStale(c, service.SourceArticles)
	}
	response.JSON(c, http.StatusOK, trend, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the scoped article trend
// @Tags Dashboard
// @Produce text/csv,application/pdf
// @Param mode query string false "daily (default) or monthly"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /dashboard/trends/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	mode, ok := trendMode(c)
	if !ok {
		return
	}
	result, err := h.exporter.Trend(c.Request.Context(), sess, mode, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

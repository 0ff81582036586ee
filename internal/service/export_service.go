package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/session"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
	"github.com/noah-isme/journal-desk-api/pkg/export"
)

var trendHeaders = []string{"bucket", "label", "count"}

type renderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered trend file.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders scoped trends as downloadable files.
type ExportService struct {
	trends    trendSource
	renderers map[string]renderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(trends trendSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		trends: trends,
		renderers: map[string]renderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		logger: logger,
	}
}

// TrendDataset turns a summary into export rows plus total, peak and average lines.
func TrendDataset(summary models.TrendSummary) export.Dataset {
	rows := make([]map[string]string, 0, len(summary.Buckets))
	for _, b := range summary.Buckets {
		rows = append(rows, map[string]string{
			"bucket": b.Key,
			"label":  b.Label,
			"count":  strconv.Itoa(b.Count),
		})
	}
	return export.Dataset{
		Headers: trendHeaders,
		Rows:    rows,
		Summary: [][2]string{
			{"total", strconv.Itoa(summary.Total)},
			{"peak", strconv.Itoa(summary.Peak)},
			{"average", summary.AverageLabel},
		},
	}
}

// Trend renders the caller's trend for mode in format ("csv" or "pdf").
func (s *ExportService) Trend(ctx context.Context, sess *session.Session, mode models.TrendMode, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of: csv pdf")
	}

	trend, err := s.trends.Trends(ctx, sess, mode)
	if err != nil {
		return nil, err
	}
	if trend.Failed() && !trend.Stale {
		return nil, appErrors.Clone(appErrors.ErrFetchFailed, trend.Error)
	}

	title := fmt.Sprintf("Article submissions (%s)", trend.Mode)
	body, err := r.Render(TrendDataset(trend.TrendSummary), title)
	if err != nil {
		s.logger.Error("trend export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("trend-%s-%s.%s", trend.Mode, sess.Role, r.Extension()),
		ContentType: r.ContentType(),
		Body:        body,
	}, nil
}

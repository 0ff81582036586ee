package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/journal-desk-api/internal/models"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

func TestExportTrendCSV(t *testing.T) {
	svc := NewExportService(&fakeTrends{resp: sampleTrend()}, nil)

	result, err := svc.Trend(context.Background(), newSession(models.RoleEditor, "2"), models.TrendDaily, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "trend-daily-EDITOR.csv", result.Filename)

	lines := strings.Split(strings.TrimSpace(string(result.Body)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "bucket,label,count", lines[0])
	assert.Equal(t, "2026-10-13,13,2", lines[1])
	assert.Equal(t, "total,,3", lines[3])
	assert.Equal(t, "average,,1.5", lines[5])
}

func TestExportTrendPDF(t *testing.T) {
	svc := NewExportService(&fakeTrends{resp: sampleTrend()}, nil)

	result, err := svc.Trend(context.Background(), newSession(models.RoleEditor, "2"), models.TrendMonthly, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Body), "%PDF"))
}

func TestExportTrendRejections(t *testing.T) {
	svc := NewExportService(&fakeTrends{resp: sampleTrend()}, nil)
	_, err := svc.Trend(context.Background(), newSession(models.RoleEditor, "2"), models.TrendDaily, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	failed := sampleTrend()
	failed.Error = "articles offline"
	svc = NewExportService(&fakeTrends{resp: failed}, nil)
	_, err = svc.Trend(context.Background(), newSession(models.RoleEditor, "2"), models.TrendDaily, "csv")
	assert.ErrorIs(t, err, appErrors.ErrFetchFailed)
}

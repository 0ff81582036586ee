package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trendDataset() Dataset {
	return Dataset{
		Headers: []string{"bucket", "label", "count"},
		Rows: []map[string]string{
			{"bucket": "2026-10-13", "label": "13", "count": "2"},
			{"bucket": "2026-10-14", "label": "14", "count": "5"},
		},
		Summary: [][2]string{{"peak", "5"}, {"average", "1.0"}},
	}
}

func TestCSVExporterRendersRowsAndSummary(t *testing.T) {
	out, err := NewCSVExporter().Render(trendDataset(), "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "bucket,label,count", lines[0])
	assert.Equal(t, "2026-10-14,14,5", lines[2])
	assert.Equal(t, "peak,,5", lines[3])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestPDFExporterProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(trendDataset(), "Daily submissions")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

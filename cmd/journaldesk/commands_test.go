package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/timeline"
)

const articlesJSON = `{"data":{"articles":[
	{"id":1,"journal_id":1,"user_id":7,"title":"Soil carbon","status":"Submitted","createdAt":"2026-10-14T08:00:00Z"},
	{"id":2,"journal_id":1,"user_id":8,"title":"Wheat yields","status":"Published","created_at":"2026-10-13T08:00:00Z"},
	{"id":3,"journal_id":2,"user_id":7,"title":"Old","status":"Published","createdAt":"2025-01-01T08:00:00Z"}
]}}`

const articlesYAML = `
data:
  articles:
    - id: 1
      title: Soil carbon
      status: Submitted
      createdAt: "2026-10-14T08:00:00Z"
    - id: 2
      title: Wheat yields
      status: Published
      createdAt: "2026-10-12T08:00:00Z"
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTrendsFromJSONFixture(t *testing.T) {
	path := writeFixture(t, "articles.json", articlesJSON)
	out, err := execute(t, "trends", path, "--now", "2026-10-14T12:00:00Z", "--tz", "UTC")
	require.NoError(t, err)

	var summary models.TrendSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, models.TrendDaily, summary.Mode)
	assert.Len(t, summary.Buckets, 7)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Peak)
}

func TestTrendsFromYAMLFixtureMatchesJSONPath(t *testing.T) {
	path := writeFixture(t, "articles.yaml", articlesYAML)
	out, err := execute(t, "trends", path, "--mode", "monthly", "--now", "2026-10-14T12:00:00Z", "--tz", "UTC")
	require.NoError(t, err)

	var summary models.TrendSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Len(t, summary.Buckets, 12)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Buckets[11].Count)
}

func TestTrendsCSV(t *testing.T) {
	path := writeFixture(t, "articles.json", articlesJSON)
	out, err := execute(t, "trends", path, "--format", "csv", "--now", "2026-10-14T12:00:00Z", "--tz", "UTC")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "bucket,label,count", lines[0])
	assert.Equal(t, "total,,2", lines[8])
}

func TestTrendsRejectsUnknownMode(t *testing.T) {
	path := writeFixture(t, "articles.json", articlesJSON)
	_, err := execute(t, "trends", path, "--mode", "weekly")
	assert.Error(t, err)
}

func TestTimelineCommand(t *testing.T) {
	out, err := execute(t, "timeline", "--status", "under review")
	require.NoError(t, err)

	var projected timeline.Timeline
	require.NoError(t, json.Unmarshal([]byte(out), &projected))
	assert.Equal(t, models.StatusUnderReview, projected.Status)
	assert.Equal(t, timeline.StateDone, projected.Steps[0].State)
	assert.Equal(t, timeline.StateCurrent, projected.Steps[1].State)
}

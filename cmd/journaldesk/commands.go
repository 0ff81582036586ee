package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/journal-desk-api/internal/aggregate"
	"github.com/noah-isme/journal-desk-api/internal/models"
	"github.com/noah-isme/journal-desk-api/internal/normalize"
	"github.com/noah-isme/journal-desk-api/internal/service"
	"github.com/noah-isme/journal-desk-api/internal/timeline"
	"github.com/noah-isme/journal-desk-api/pkg/export"
)

type trendOptions struct {
	mode   string
	entity string
	now    string
	tz     string
	format string
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "journaldesk",
		Short:         "Offline tools for the journal desk dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTrendsCommand(), newTimelineCommand())
	return root
}

func newTrendsCommand() *cobra.Command {
	opts := trendOptions{}
	cmd := &cobra.Command{
		Use:   "trends <file>",
		Short: "Bucket the articles of a saved backend response (JSON or YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readEnvelope(args[0])
			if err != nil {
				return err
			}
			return runTrends(cmd.OutOrStdout(), body, opts)
		},
	}
	cmd.Flags().StringVar(&opts.mode, "mode", string(models.TrendDaily), "daily or monthly")
	cmd.Flags().StringVar(&opts.entity, "entity", "articles", "entity key probed as data.<entity>")
	cmd.Flags().StringVar(&opts.now, "now", "", "reference time (RFC3339), defaults to the current time")
	cmd.Flags().StringVar(&opts.tz, "tz", "Local", "IANA timezone used for calendar buckets")
	cmd.Flags().StringVar(&opts.format, "format", "json", "json or csv")
	return cmd
}

func newTimelineCommand() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the progress steps for an article status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), timeline.Project(status))
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "raw status as sent by the backend")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

// readEnvelope loads a saved response. YAML files are converted to JSON so
// both go through the same normalizer.
func readEnvelope(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(raw)
	}
	return raw, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode yaml document: %w", err)
	}
	return body, nil
}

func runTrends(out io.Writer, body []byte, opts trendOptions) error {
	mode, ok := models.ParseTrendMode(opts.mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
	loc := time.Local
	if tz := strings.TrimSpace(opts.tz); tz != "" && !strings.EqualFold(tz, "local") {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return fmt.Errorf("timezone %q: %w", tz, err)
		}
	}
	models.SetWallClockZone(loc)
	now := time.Now()
	if opts.now != "" {
		parsed, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return fmt.Errorf("--now: %w", err)
		}
		now = parsed
	}

	articles, dropped, err := normalize.Records[models.Article](body, normalize.PathsFor(opts.entity))
	if err != nil {
		return err
	}
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d malformed records\n", dropped)
	}
	summary := aggregate.Summarize(mode, aggregate.Trend(mode, articles, models.Article.Timestamp, now, loc))

	switch strings.ToLower(opts.format) {
	case "csv":
		rendered, err := export.NewCSVExporter().Render(service.TrendDataset(summary), "")
		if err != nil {
			return err
		}
		_, err = out.Write(rendered)
		return err
	case "json", "":
		return writeJSON(out, summary)
	}
	return fmt.Errorf("unknown format %q", opts.format)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package models

import "time"

// TrendMode selects the bucketing window.
type TrendMode string

const (
	TrendDaily   TrendMode = "daily"
	TrendMonthly TrendMode = "monthly"
)

// ParseTrendMode defaults unknown values to daily.
func ParseTrendMode(raw string) (TrendMode, bool) {
	switch TrendMode(raw) {
	case TrendDaily, "":
		return TrendDaily, true
	case TrendMonthly:
		return TrendMonthly, true
	}
	return TrendDaily, false
}

// Bucket is one fixed window slot of a histogram.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TrendSummary is a bucket series plus the statistics derived from it.
type TrendSummary struct {
	Mode         TrendMode `json:"mode"`
	Buckets      []Bucket  `json:"buckets"`
	Total        int       `json:"total"`
	Peak         int       `json:"peak"`
	Average      float64   `json:"average"`
	AverageLabel string    `json:"average_label"`
}

// TrendSnapshot is a persisted TrendSummary.
type TrendSnapshot struct {
	ID         string    `db:"id" json:"id"`
	Scope      string    `db:"scope" json:"scope"`
	Mode       TrendMode `db:"mode" json:"mode"`
	Buckets    []Bucket  `db:"-" json:"buckets"`
	RawBuckets []byte    `db:"buckets" json:"-"`
	Total      int       `db:"total" json:"total"`
	Peak       int       `db:"peak" json:"peak"`
	Average    float64   `db:"average" json:"average"`
	CapturedAt time.Time `db:"captured_at" json:"captured_at"`
}

// SnapshotFilter scopes snapshot listing.
type SnapshotFilter struct {
	Scope string
	Mode  TrendMode
	Since *time.Time
	Limit int
}

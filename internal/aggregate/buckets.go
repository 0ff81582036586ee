// Package aggregate builds fixed-window histograms and summary statistics
// from timestamped records.
package aggregate

import (
	"strconv"
	"time"

	"github.com/noah-isme/journal-desk-api/internal/models"
)

// Window lengths for the supported trend modes.
const (
	DailyWindow   = 7
	MonthlyWindow = 12
)

const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// TimestampFunc extracts a record's timestamp; ok is false when it has none.
type TimestampFunc[T any] func(T) (time.Time, bool)

// Daily returns exactly DailyWindow buckets, one per calendar day in loc,
// ending with the day containing now and ordered oldest first.
func Daily[T any](records []T, ts TimestampFunc[T], now time.Time, loc *time.Location) []models.Bucket {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	buckets := make([]models.Bucket, DailyWindow)
	index := make(map[string]int, DailyWindow)
	for i := 0; i < DailyWindow; i++ {
		day := today.AddDate(0, 0, i-(DailyWindow-1))
		key := day.Format(dayKeyLayout)
		buckets[i] = models.Bucket{Key: key, Label: strconv.Itoa(day.Day())}
		index[key] = i
	}
	count(records, ts, loc, dayKeyLayout, buckets, index)
	return buckets
}

// Monthly returns exactly MonthlyWindow buckets, one per calendar month in loc,
// ending with the month containing now and ordered oldest first.
func Monthly[T any](records []T, ts TimestampFunc[T], now time.Time, loc *time.Location) []models.Bucket {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)

	buckets := make([]models.Bucket, MonthlyWindow)
	index := make(map[string]int, MonthlyWindow)
	for i := 0; i < MonthlyWindow; i++ {
		month := first.AddDate(0, i-(MonthlyWindow-1), 0)
		key := month.Format(monthKeyLayout)
		buckets[i] = models.Bucket{Key: key, Label: month.Format("Jan")}
		index[key] = i
	}
	count(records, ts, loc, monthKeyLayout, buckets, index)
	return buckets
}

// Trend buckets records for mode. Unknown modes fall back to daily.
func Trend[T any](mode models.TrendMode, records []T, ts TimestampFunc[T], now time.Time, loc *time.Location) []models.Bucket {
	if mode == models.TrendMonthly {
		return Monthly(records, ts, now, loc)
	}
	return Daily(records, ts, now, loc)
}

func count[T any](records []T, ts TimestampFunc[T], loc *time.Location, layout string, buckets []models.Bucket, index map[string]int) {
	for _, record := range records {
		t, ok := ts(record)
		if !ok || t.IsZero() {
			continue
		}
		if i, ok := index[t.In(loc).Format(layout)]; ok {
			buckets[i].Count++
		}
	}
}

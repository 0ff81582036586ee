package aggregate

import (
	"math"
	"strconv"

	"github.com/noah-isme/journal-desk-api/internal/models"
)

// Summarize derives total, peak and average from a bucket series. The average
// is taken over the window length and rounded to one decimal.
func Summarize(mode models.TrendMode, buckets []models.Bucket) models.TrendSummary {
	summary := models.TrendSummary{Mode: mode, Buckets: buckets}
	for _, b := range buckets {
		summary.Total += b.Count
		if b.Count > summary.Peak {
			summary.Peak = b.Count
		}
	}
	summary.Average = Average(summary.Total, len(buckets))
	summary.AverageLabel = FormatAverage(summary.Average)
	return summary
}

// Average returns total/window rounded to one decimal, or 0 for an empty window.
func Average(total, window int) float64 {
	if window <= 0 {
		return 0
	}
	return math.Round(float64(total)/float64(window)*10) / 10
}

// Rate returns matching/total as a percentage, or 0 when total is zero.
func Rate(matching, total int) float64 {
	if total <= 0 || matching <= 0 {
		return 0
	}
	return float64(matching) / float64(total) * 100
}

// RateOf counts records satisfying match and returns them as a percentage of all records.
func RateOf[T any](records []T, match func(T) bool) float64 {
	matching := 0
	for _, record := range records {
		if match(record) {
			matching++
		}
	}
	return Rate(matching, len(records))
}

// FormatPercent renders a percentage with zero decimals, e.g. "75%".
func FormatPercent(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 0
	}
	return strconv.FormatFloat(math.Round(rate), 'f', 0, 64) + "%"
}

// FormatAverage renders an average with one decimal, e.g. "1.4".
func FormatAverage(avg float64) string {
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		avg = 0
	}
	return strconv.FormatFloat(avg, 'f', 1, 64)
}

// StatusCount pairs a status with the number of articles in it.
type StatusCount struct {
	Status models.ArticleStatus `json:"status"`
	Count  int                  `json:"count"`
}

// CountByStatus counts articles per lifecycle status, then Rejected and
// Unknown. Every status is present, in that order, even when zero.
func CountByStatus(articles []models.Article) []StatusCount {
	order := append(append([]models.ArticleStatus{}, models.ArticleLifecycle...), models.StatusRejected, models.StatusUnknown)
	counts := make(map[models.ArticleStatus]int, len(order))
	for _, article := range articles {
		counts[article.ArticleStatus()]++
	}
	out := make([]StatusCount, 0, len(order))
	for _, status := range order {
		out = append(out, StatusCount{Status: status, Count: counts[status]})
	}
	return out
}

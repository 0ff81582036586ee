package models

import "strings"

// ArticleStatus is the editorial state of a manuscript.
type ArticleStatus string

const (
	StatusSubmitted     ArticleStatus = "Submitted"
	StatusUnderReview   ArticleStatus = "Under Review"
	StatusNeedsRevision ArticleStatus = "Needs Revision"
	StatusAccepted      ArticleStatus = "Accepted"
	StatusPublished     ArticleStatus = "Published"
	StatusRejected      ArticleStatus = "Rejected"
	StatusUnknown       ArticleStatus = "Unknown"
)

// ArticleLifecycle is the ordered, non-terminal editorial vocabulary.
var ArticleLifecycle = []ArticleStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusNeedsRevision,
	StatusAccepted,
	StatusPublished,
}

var statusByKey = map[string]ArticleStatus{
	"submitted":     StatusSubmitted,
	"underreview":   StatusUnderReview,
	"needsrevision": StatusNeedsRevision,
	"accepted":      StatusAccepted,
	"published":     StatusPublished,
	"rejected":      StatusRejected,
}

// ParseArticleStatus maps a backend status string onto the closed vocabulary.
// Case, whitespace, underscores and hyphens are ignored. Unrecognised values
// return StatusUnknown and false.
func ParseArticleStatus(raw string) (ArticleStatus, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(raw))
	if status, ok := statusByKey[key]; ok {
		return status, true
	}
	return StatusUnknown, false
}

// Index returns the position of s in ArticleLifecycle, or -1.
func (s ArticleStatus) Index() int {
	for i, step := range ArticleLifecycle {
		if step == s {
			return i
		}
	}
	return -1
}

// JournalStatus tab buckets used by the admin panels.
const (
	JournalActive   = "Active"
	JournalDisabled = "Disabled"
	JournalPending  = "Pending"
)

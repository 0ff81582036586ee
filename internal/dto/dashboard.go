package dto

import (
	"time"

	"github.com/noah-isme/journal-desk-api/internal/aggregate"
	"github.com/noah-isme/journal-desk-api/internal/models"
)

// SectionState reports how a dashboard section was loaded. Error is set when
// the backend call failed; Stale is set when a last-known-good copy was used.
type SectionState struct {
	Error string `json:"error,omitempty"`
	Stale bool   `json:"stale,omitempty"`
}

// Failed reports whether the section has no fresh data.
func (s SectionState) Failed() bool {
	return s.Error != ""
}

// DashboardResponse is the role-scoped overview payload.
type DashboardResponse struct {
	Role          models.UserRole      `json:"role"`
	Journals      JournalsSection      `json:"journals"`
	Articles      ArticlesSection      `json:"articles"`
	Notifications NotificationsSection `json:"notifications"`
	Activity      *ActivitySection     `json:"activity,omitempty"`
	GeneratedAt   time.Time            `json:"generatedAt"`
}

// JournalsSection summarises the journals in scope.
type JournalsSection struct {
	SectionState
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// ArticlesSection summarises the articles in scope.
type ArticlesSection struct {
	SectionState
	Total            int                     `json:"total"`
	ByStatus         []aggregate.StatusCount `json:"byStatus"`
	Daily            models.TrendSummary     `json:"daily"`
	Monthly          models.TrendSummary     `json:"monthly"`
	PaymentRate      float64                 `json:"paymentRate"`
	PaymentRateLabel string                  `json:"paymentRateLabel"`
	Recent           []models.Article        `json:"recent"`
}

// NotificationsSection summarises the caller's notifications.
type NotificationsSection struct {
	SectionState
	Unread int                   `json:"unread"`
	Recent []models.Notification `json:"recent"`
}

// ActivitySection lists the latest audit entries; super admins only.
type ActivitySection struct {
	SectionState
	Recent []models.AuditLog `json:"recent"`
}

// TrendResponse is a single scoped trend series.
type TrendResponse struct {
	SectionState
	models.TrendSummary
}

package dto

import "github.com/noah-isme/journal-desk-api/internal/models"

// AuditListRequest filters the activity log.
type AuditListRequest struct {
	Query  string `form:"q"`
	Action string `form:"action"`
}

// AuditListResponse lists audit entries newest first along with the distinct
// actions available for filtering.
type AuditListResponse struct {
	Items   []models.AuditLog `json:"items"`
	Actions []string          `json:"actions"`
}

package dto

import "github.com/noah-isme/journal-desk-api/internal/models"

// SnapshotListRequest filters persisted trend snapshots.
type SnapshotListRequest struct {
	Scope string `form:"scope"`
	Mode  string `form:"mode"`
	Limit int    `form:"limit"`
}

// SnapshotCaptureRequest asks for an immediate capture.
type SnapshotCaptureRequest struct {
	Mode models.TrendMode `json:"mode" validate:"omitempty,oneof=daily monthly"`
}

// SnapshotCaptureResponse acknowledges a queued capture.
type SnapshotCaptureResponse struct {
	JobID string           `json:"jobId"`
	Mode  models.TrendMode `json:"mode"`
	Scope string           `json:"scope"`
}

package dto

import "github.com/noah-isme/journal-desk-api/internal/models"

// JournalListRequest filters the journal list.
type JournalListRequest struct {
	Query string `form:"q"`
	Tab   string `form:"tab"`
}

// JournalListResponse carries the filtered journals and per-tab counts over
// the unfiltered scope.
type JournalListResponse struct {
	Items  []models.Journal `json:"items"`
	Counts map[string]int   `json:"counts"`
	Tabs   []string         `json:"tabs"`
}

// JournalStatusResponse acknowledges a status transition.
type JournalStatusResponse struct {
	JournalID models.ID            `json:"journalId"`
	Action    models.JournalAction `json:"action"`
	Status    string               `json:"status"`
}

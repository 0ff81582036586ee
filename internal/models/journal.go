package models

import (
	"encoding/json"
	"strings"
)

// Journal is a publication owned by exactly one journal admin.
type Journal struct {
	ID             ID      `json:"id"`
	JournalAdminID ID      `json:"journal_admin_id"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	ISSN           string  `json:"issn"`
	SubjectArea    string  `json:"subject_area"`
	Languages      Strings `json:"languages"`
	Status         string  `json:"status"`
}

type journalWire struct {
	ID             ID      `json:"id"`
	JournalAdminID ID      `json:"journal_admin_id"`
	Name           Text    `json:"name"`
	Slug           Text    `json:"slug"`
	ISSN           Text    `json:"issn"`
	SubjectArea    Text    `json:"subject_area"`
	Languages      Strings `json:"languages"`
	Status         Text    `json:"status"`
}

// UnmarshalJSON tolerates non-string values in the descriptive fields.
func (j *Journal) UnmarshalJSON(data []byte) error {
	var wire journalWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*j = Journal{
		ID:             wire.ID,
		JournalAdminID: wire.JournalAdminID,
		Name:           string(wire.Name),
		Slug:           string(wire.Slug),
		ISSN:           string(wire.ISSN),
		SubjectArea:    string(wire.SubjectArea),
		Languages:      wire.Languages,
		Status:         string(wire.Status),
	}
	return nil
}

// JournalAction is a super-admin status transition request.
type JournalAction string

const (
	JournalActionApprove    JournalAction = "approve"
	JournalActionDisable    JournalAction = "disable"
	JournalActionReactivate JournalAction = "reactivate"
)

// TargetStatus returns the status the backend should store for the action.
func (a JournalAction) TargetStatus() (string, bool) {
	switch JournalAction(strings.ToLower(string(a))) {
	case JournalActionApprove, JournalActionReactivate:
		return JournalActive, true
	case JournalActionDisable:
		return JournalDisabled, true
	}
	return "", false
}

// JournalStatusRequest is the payload for PUT /journals/:id/status.
type JournalStatusRequest struct {
	Action JournalAction `json:"action" validate:"required,oneof=approve disable reactivate"`
}

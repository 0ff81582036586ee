package models

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only activity record.
type AuditLog struct {
	ID          ID              `json:"id"`
	ActorUserID ID              `json:"actor_user_id"`
	Actor       string          `json:"actor"`
	Action      string          `json:"action"`
	EntityType  string          `json:"entity_type"`
	EntityID    ID              `json:"entity_id"`
	IPAddress   string          `json:"ip_address"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type auditWire struct {
	ID          ID              `json:"id"`
	ActorUserID ID              `json:"actor_user_id"`
	Actor       json.RawMessage `json:"actor"`
	Action      Text            `json:"action"`
	EntityType  Text            `json:"entity_type"`
	EntityID    ID              `json:"entity_id"`
	IPAddress   Text            `json:"ip_address"`
	Metadata    json.RawMessage `json:"metadata"`
}

// UnmarshalJSON accepts the actor either as a name or as a nested user object.
func (l *AuditLog) UnmarshalJSON(data []byte) error {
	var wire auditWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*l = AuditLog{
		ID:          wire.ID,
		ActorUserID: wire.ActorUserID,
		Actor:       actorName(wire.Actor),
		Action:      string(wire.Action),
		EntityType:  string(wire.EntityType),
		EntityID:    wire.EntityID,
		IPAddress:   string(wire.IPAddress),
		Metadata:    wire.Metadata,
		CreatedAt:   resolveTimestamp(data),
	}
	return nil
}

func actorName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var obj struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case obj.Name != "":
			return obj.Name
		case obj.FullName != "":
			return obj.FullName
		default:
			return obj.Email
		}
	}
	return ""
}

// Timestamp reports the resolved creation time.
func (l AuditLog) Timestamp() (time.Time, bool) {
	return l.CreatedAt, !l.CreatedAt.IsZero()
}

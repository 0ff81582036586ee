package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Notification states.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type notificationWire struct {
	ID      ID   `json:"id"`
	UserID  ID   `json:"user_id"`
	Title   Text `json:"title"`
	Message Text `json:"message"`
	Status  Text `json:"status"`
}

// UnmarshalJSON resolves the creation time from the known field spellings.
func (n *Notification) UnmarshalJSON(data []byte) error {
	var wire notificationWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*n = Notification{
		ID:        wire.ID,
		UserID:    wire.UserID,
		Title:     string(wire.Title),
		Message:   string(wire.Message),
		Status:    strings.ToLower(strings.TrimSpace(string(wire.Status))),
		CreatedAt: resolveTimestamp(data),
	}
	return nil
}

// Timestamp reports the resolved creation time.
func (n Notification) Timestamp() (time.Time, bool) {
	return n.CreatedAt, !n.CreatedAt.IsZero()
}

// IsRead reports whether the notification was already acknowledged.
func (n Notification) IsRead() bool {
	return n.Status == NotificationRead
}

// CreateNotificationRequest is sent by admins to notify a user.
type CreateNotificationRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

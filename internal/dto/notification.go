package dto

import "github.com/noah-isme/journal-desk-api/internal/models"

// NotificationView is the caller's notification list, newest first.
type NotificationView struct {
	Items  []models.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// Clone returns a deep copy of the view.
func (v NotificationView) Clone() NotificationView {
	items := make([]models.Notification, len(v.Items))
	copy(items, v.Items)
	return NotificationView{Items: items, Unread: v.Unread}
}

// Recount recomputes Unread from Items.
func (v *NotificationView) Recount() {
	v.Unread = 0
	for _, item := range v.Items {
		if !item.IsRead() {
			v.Unread++
		}
	}
}

package notification

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is a persisted in-app inbox entry.
type Notification struct {
	ID        int64             `json:"id" gorm:"primaryKey"`
	UserID    int64             `json:"user_id" gorm:"not null;index:idx_notifications_user_unread"`
	Type      Kind              `json:"type" gorm:"size:64;not null"`
	Title     string            `json:"title" gorm:"size:255;not null"`
	Message   string            `json:"message"`
	Data      datatypes.JSONMap `json:"data,omitempty"`
	IsRead    bool              `json:"is_read" gorm:"not null;default:false;index:idx_notifications_user_unread"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func fromEvent(e Event) *Notification {
	n := &Notification{
		UserID:  e.UserID,
		Type:    e.Kind,
		Title:   e.Title,
		Message: e.Message,
	}
	if e.ActionRef != "" {
		n.Data = datatypes.JSONMap{"action_ref": e.ActionRef}
	}
	return n
}

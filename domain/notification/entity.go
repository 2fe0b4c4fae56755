package notification

import (
	"time"
)

// Notification is a message delivered to one user about a task.
type Notification struct {
	ID          string            `gorm:"primaryKey;type:text"`
	RecipientID string            `gorm:"type:text;not null;index:idx_notifications_recipient"`
	Type        string            `gorm:"type:text;not null"`
	Message     string            `gorm:"type:text;not null"`
	TaskID      string            `gorm:"type:text;index"`
	ProjectID   string            `gorm:"type:text"`
	ActorID     string            `gorm:"type:text"`
	Context     map[string]string `gorm:"serializer:json"`
	IsRead      bool              `gorm:"not null;default:false;index:idx_notifications_recipient"`
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// TableName returns the table name for the Notification entity.
func (Notification) TableName() string {
	return "notifications"
}

// MarkRead flags the notification as read. It is idempotent.
func (n *Notification) MarkRead(now time.Time) bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	n.ReadAt = &now
	return true
}

package notification

import (
	"time"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/notification"
)

// NotificationView is the client-facing shape of a notification.
type NotificationView struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	TaskID    string            `json:"task_id,omitempty"`
	ProjectID string            `json:"project_id,omitempty"`
	ActorID   string            `json:"actor_id,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewNotificationView converts a stored notification.
func NewNotificationView(n *domain.Notification) NotificationView {
	return NotificationView{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		TaskID:    n.TaskID,
		ProjectID: n.ProjectID,
		ActorID:   n.ActorID,
		Context:   n.Context,
		Read:      n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ListRequest lists the notifications of a recipient.
type ListRequest struct {
	RecipientID string `json:"recipient_id"`
	UnreadOnly  bool   `json:"unread_only"`
	Limit       int    `json:"limit,omitempty"`
}

// ListResponse carries notifications and the unread count.
type ListResponse struct {
	Notifications []NotificationView `json:"notifications"`
	Unread        int64              `json:"unread"`
	Error         *apperr.Wire       `json:"error,omitempty"`
}

// MarkReadRequest marks one notification read.
type MarkReadRequest struct {
	RecipientID    string `json:"recipient_id"`
	NotificationID string `json:"notification_id"`
}

// MarkReadResponse carries the updated notification.
type MarkReadResponse struct {
	Notification *NotificationView `json:"notification,omitempty"`
	Error        *apperr.Wire      `json:"error,omitempty"`
}

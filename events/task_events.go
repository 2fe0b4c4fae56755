package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationType classifies a task notification.
type NotificationType string

const (
	NotificationTaskAssigned   NotificationType = "task_assigned"
	NotificationTaskCompleted  NotificationType = "task_completed"
	NotificationTaskApproved   NotificationType = "task_approved"
	NotificationTaskRejected   NotificationType = "task_rejected"
	NotificationTaskReassigned NotificationType = "task_reassigned"
	NotificationTaskDeleted    NotificationType = "task_deleted"
)

// TaskNotificationEvent asks for a notification to be delivered to one
// recipient. It is emitted after the triggering mutation has been stored.
type TaskNotificationEvent struct {
	RecipientID string            `json:"recipient_id"`
	Type        NotificationType  `json:"type"`
	Message     string            `json:"message"`
	TaskID      string            `json:"task_id"`
	ProjectID   string            `json:"project_id"`
	ActorID     string            `json:"actor_id"`
	Context     map[string]string `json:"context,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// TaskNotificationV1 is the typed event definition for task notifications.
// Subject: events.task.v1.task-notification
var TaskNotificationV1 = helper.EventDefinition[TaskNotificationEvent](
	"task", "TaskNotification", "v1",
)

// TaskPhaseChangedEvent is emitted whenever a task moves between lifecycle
// phases.
type TaskPhaseChangedEvent struct {
	TaskID    string    `json:"task_id"`
	ProjectID string    `json:"project_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   string    `json:"actor_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// TaskPhaseChangedV1 is the typed event definition for phase changes.
// Subject: events.task.v1.task-phase-changed
var TaskPhaseChangedV1 = helper.EventDefinition[TaskPhaseChangedEvent](
	"task", "TaskPhaseChanged", "v1",
)

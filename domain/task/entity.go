package task

import (
	"strings"
	"time"

	"github.com/example/task-approval/domain/apperr"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a client-supplied priority. Empty means medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", apperr.Validation("invalid priority %q (expected low, medium, high or urgent)", s)
}

// Attachment describes a file stored alongside a task. The blob itself lives
// in object storage under Key.
type Attachment struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Digest      string    `json:"digest,omitempty"`
	Key         string    `json:"key"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Task is the unit of work inside a project.
type Task struct {
	ID              string    `gorm:"primaryKey;type:text"`
	ProjectID       string    `gorm:"type:text;not null;index"`
	Title           string    `gorm:"type:text;not null"`
	Description     string    `gorm:"type:text"`
	Priority        Priority  `gorm:"type:text;not null"`
	Phase           Phase     `gorm:"type:text;not null;index"`
	AssigneeID      string    `gorm:"type:text;index"`
	CreatorID       string    `gorm:"type:text;not null"`
	StartDate       time.Time `gorm:"not null"`
	DueDate         time.Time `gorm:"not null"`
	DurationDays    int       `gorm:"not null"`
	CompletedAt     *time.Time
	CompletedBy     string `gorm:"type:text"`
	ApprovedAt      *time.Time
	ApprovedBy      string       `gorm:"type:text"`
	RejectionReason string       `gorm:"type:text"`
	Attachments     []Attachment `gorm:"serializer:json"`
	IsActive        bool         `gorm:"not null;index"`
	Version         int          `gorm:"not null"`
	LastModifiedBy  string       `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// Status is the execution status projected from the phase.
func (t *Task) Status() Status {
	return t.Phase.Status()
}

// ApprovalStatus is the review status projected from the phase.
func (t *Task) ApprovalStatus() ApprovalStatus {
	return t.Phase.ApprovalStatus()
}

// NewTask builds an active task in the to-do phase.
func NewTask(id, projectID, creatorID, title, description string, priority Priority, assigneeID string, s Schedule, now time.Time) *Task {
	t := &Task{
		ID:          id,
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Phase:       PhaseToDo,
		AssigneeID:  assigneeID,
		CreatorID:   creatorID,
		Attachments: []Attachment{},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.Reschedule(s)
	return t
}

// Reschedule replaces the date window.
func (t *Task) Reschedule(s Schedule) {
	t.StartDate = s.StartDate
	t.DueDate = s.DueDate
	t.DurationDays = s.DurationDays
}

// SetStatus applies an execution status change. completedAt/By track the
// done state; the approval stamp is dropped once the task leaves approved.
func (t *Task) SetStatus(s Status, actorID string, now time.Time) Transition {
	tr := Transition{From: t.Phase, To: t.Phase.WithStatus(s)}
	t.Phase = tr.To
	if tr.To.IsDone() {
		t.CompletedAt = &now
		t.CompletedBy = actorID
	} else {
		t.clearCompletion()
	}
	if tr.To != PhaseApproved {
		t.clearApproval()
	}
	t.touch(actorID, now)
	return tr
}

// Approve accepts work that is pending approval.
func (t *Task) Approve(actorID string, now time.Time) (Transition, error) {
	next, err := t.Phase.Approve()
	if err != nil {
		return Transition{}, err
	}
	tr := Transition{From: t.Phase, To: next}
	t.Phase = next
	t.ApprovedAt = &now
	t.ApprovedBy = actorID
	t.touch(actorID, now)
	return tr, nil
}

// Reject sends pending work back with a reason and a new window, optionally
// to a different assignee.
func (t *Task) Reject(actorID, reason string, s Schedule, reassigneeID string, now time.Time) (Transition, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Transition{}, apperr.Validation("a rejection reason is required")
	}
	next, err := t.Phase.Reject()
	if err != nil {
		return Transition{}, err
	}
	tr := Transition{From: t.Phase, To: next}
	t.Phase = next
	t.RejectionReason = reason
	t.clearCompletion()
	t.clearApproval()
	t.Reschedule(s)
	if reassigneeID != "" {
		t.AssigneeID = reassigneeID
	}
	t.touch(actorID, now)
	return tr, nil
}

// Reassign hands approved work to a new assignee and starts it over.
func (t *Task) Reassign(actorID, assigneeID string, s Schedule, now time.Time) (Transition, error) {
	if assigneeID == "" {
		return Transition{}, apperr.Validation("assigneeId is required")
	}
	next, err := t.Phase.Reassign()
	if err != nil {
		return Transition{}, err
	}
	tr := Transition{From: t.Phase, To: next}
	t.Phase = next
	t.AssigneeID = assigneeID
	t.RejectionReason = ""
	t.clearCompletion()
	t.clearApproval()
	t.Reschedule(s)
	t.touch(actorID, now)
	return tr, nil
}

// Deactivate soft-deletes the task. Its phase is left untouched.
func (t *Task) Deactivate(actorID string, now time.Time) {
	t.IsActive = false
	t.touch(actorID, now)
}

// AddAttachments appends descriptors.
func (t *Task) AddAttachments(actorID string, files []Attachment, now time.Time) {
	t.Attachments = append(t.Attachments, files...)
	t.touch(actorID, now)
}

// RemoveAttachment drops the descriptor at index and returns it.
func (t *Task) RemoveAttachment(actorID string, index int, now time.Time) (Attachment, error) {
	if index < 0 || index >= len(t.Attachments) {
		return Attachment{}, apperr.NotFound("attachment %d not found (task has %d)", index, len(t.Attachments))
	}
	removed := t.Attachments[index]
	t.Attachments = append(t.Attachments[:index:index], t.Attachments[index+1:]...)
	t.touch(actorID, now)
	return removed, nil
}

func (t *Task) clearCompletion() {
	t.CompletedAt = nil
	t.CompletedBy = ""
}

func (t *Task) clearApproval() {
	t.ApprovedAt = nil
	t.ApprovedBy = ""
}

func (t *Task) touch(actorID string, now time.Time) {
	t.LastModifiedBy = actorID
	t.UpdatedAt = now
}

package task

import (
	"time"
)

// Action names an audited mutation.
type Action string

const (
	ActionCreated           Action = "created"
	ActionUpdated           Action = "updated"
	ActionStatusChanged     Action = "status_changed"
	ActionApproved          Action = "approved"
	ActionRejected          Action = "rejected"
	ActionReassigned        Action = "reassigned"
	ActionDeleted           Action = "deleted"
	ActionAttachmentAdded   Action = "attachment_added"
	ActionAttachmentRemoved Action = "attachment_removed"
)

// AuditContext identifies who issued a mutation and from where.
type AuditContext struct {
	ActorID   string `json:"actor_id"`
	RequestID string `json:"request_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Audit is one row of a task's audit trail.
type Audit struct {
	ID        uint   `gorm:"primaryKey"`
	TaskID    string `gorm:"type:text;not null;index"`
	Action    Action `gorm:"type:text;not null"`
	ActorID   string `gorm:"type:text;not null"`
	RequestID string `gorm:"type:text"`
	IP        string `gorm:"type:text"`
	UserAgent string `gorm:"type:text"`
	FromPhase Phase  `gorm:"type:text"`
	ToPhase   Phase  `gorm:"type:text"`
	Detail    string `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for the Audit entity.
func (Audit) TableName() string {
	return "task_audits"
}

// NewAudit builds an audit row for a mutation of t.
func NewAudit(t *Task, action Action, ac AuditContext, tr Transition, detail string, now time.Time) *Audit {
	from, to := tr.From, tr.To
	if from == "" {
		from = t.Phase
	}
	if to == "" {
		to = t.Phase
	}
	return &Audit{
		TaskID:    t.ID,
		Action:    action,
		ActorID:   ac.ActorID,
		RequestID: ac.RequestID,
		IP:        ac.IP,
		UserAgent: ac.UserAgent,
		FromPhase: from,
		ToPhase:   to,
		Detail:    detail,
		CreatedAt: now,
	}
}

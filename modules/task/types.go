package task

import (
	"time"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/task"
)

// TaskView is the client-facing shape of a task.
type TaskView struct {
	ID              string                `json:"id"`
	ProjectID       string                `json:"project_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description,omitempty"`
	Priority        domain.Priority       `json:"priority"`
	Status          domain.Status         `json:"status"`
	ApprovalStatus  domain.ApprovalStatus `json:"approval_status"`
	AssigneeID      string                `json:"assignee_id,omitempty"`
	CreatorID       string                `json:"creator_id"`
	StartDate       string                `json:"start_date"`
	DueDate         string                `json:"due_date"`
	DurationDays    int                   `json:"duration_days"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	CompletedBy     string                `json:"completed_by,omitempty"`
	ApprovedAt      *time.Time            `json:"approved_at,omitempty"`
	ApprovedBy      string                `json:"approved_by,omitempty"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	Attachments     []domain.Attachment   `json:"attachments"`
	Version         int                   `json:"version"`
	LastModifiedBy  string                `json:"last_modified_by,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewTaskView converts a stored task.
func NewTaskView(t *domain.Task) *TaskView {
	attachments := t.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	return &TaskView{
		ID:              t.ID,
		ProjectID:       t.ProjectID,
		Title:           t.Title,
		Description:     t.Description,
		Priority:        t.Priority,
		Status:          t.Status(),
		ApprovalStatus:  t.ApprovalStatus(),
		AssigneeID:      t.AssigneeID,
		CreatorID:       t.CreatorID,
		StartDate:       t.StartDate.Format(domain.DateLayout),
		DueDate:         t.DueDate.Format(domain.DateLayout),
		DurationDays:    t.DurationDays,
		CompletedAt:     t.CompletedAt,
		CompletedBy:     t.CompletedBy,
		ApprovedAt:      t.ApprovedAt,
		ApprovedBy:      t.ApprovedBy,
		RejectionReason: t.RejectionReason,
		Attachments:     attachments,
		Version:         t.Version,
		LastModifiedBy:  t.LastModifiedBy,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func newTaskViews(tasks []*domain.Task) []*TaskView {
	views := make([]*TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskView(t))
	}
	return views
}

// AuditEntry is one audit row as returned to clients.
type AuditEntry struct {
	Action    domain.Action `json:"action"`
	ActorID   string        `json:"actor_id"`
	RequestID string        `json:"request_id,omitempty"`
	IP        string        `json:"ip,omitempty"`
	UserAgent string        `json:"user_agent,omitempty"`
	FromPhase domain.Phase  `json:"from_phase,omitempty"`
	ToPhase   domain.Phase  `json:"to_phase,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	At        time.Time     `json:"at"`
}

func newAuditEntries(rows []domain.Audit) []AuditEntry {
	entries := make([]AuditEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, AuditEntry{
			Action:    r.Action,
			ActorID:   r.ActorID,
			RequestID: r.RequestID,
			IP:        r.IP,
			UserAgent: r.UserAgent,
			FromPhase: r.FromPhase,
			ToPhase:   r.ToPhase,
			Detail:    r.Detail,
			At:        r.CreatedAt,
		})
	}
	return entries
}

// AssignableMember is a project participant a task may be assigned to.
type AssignableMember struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"` // "head" or "member"
}

// ReconcileReport summarizes a counter reconciliation pass.
type ReconcileReport struct {
	Checked   int      `json:"checked"`
	Corrected []string `json:"corrected"`
	Failed    []string `json:"failed,omitempty"`
}

// UploadFile is one file of an attachment upload.
type UploadFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// CreateTaskRequest creates a task.
type CreateTaskRequest struct {
	Audit       domain.AuditContext `json:"audit"`
	ProjectID   string              `json:"project_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    string              `json:"priority"`
	AssigneeID  string              `json:"assignee_id"`
	StartDate   string              `json:"start_date"`
	DueDate     string              `json:"due_date"`
	Attachments []domain.Attachment `json:"attachments,omitempty"`
}

// UpdateTaskRequest changes any subset of the editable fields. Nil fields
// are left unchanged; an empty AssigneeID unassigns the task.
type UpdateTaskRequest struct {
	Audit       domain.AuditContext `json:"audit"`
	TaskID      string              `json:"task_id"`
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Priority    *string             `json:"priority,omitempty"`
	StartDate   *string             `json:"start_date,omitempty"`
	DueDate     *string             `json:"due_date,omitempty"`
	AssigneeID  *string             `json:"assignee_id,omitempty"`
}

// UpdateStatusRequest sets the execution status.
type UpdateStatusRequest struct {
	Audit  domain.AuditContext `json:"audit"`
	TaskID string              `json:"task_id"`
	Status string              `json:"status"`
}

// TaskActionRequest is a mutation that needs only the task id.
type TaskActionRequest struct {
	Audit  domain.AuditContext `json:"audit"`
	TaskID string              `json:"task_id"`
}

// RejectTaskRequest sends pending work back.
type RejectTaskRequest struct {
	Audit        domain.AuditContext `json:"audit"`
	TaskID       string              `json:"task_id"`
	Reason       string              `json:"reason"`
	StartDate    string              `json:"start_date"`
	DueDate      string              `json:"due_date"`
	ReassigneeID string              `json:"reassignee_id,omitempty"`
}

// ReassignTaskRequest hands approved work to someone new.
type ReassignTaskRequest struct {
	Audit      domain.AuditContext `json:"audit"`
	TaskID     string              `json:"task_id"`
	AssigneeID string              `json:"assignee_id"`
	StartDate  string              `json:"start_date"`
	DueDate    string              `json:"due_date"`
}

// UploadAttachmentsRequest stores files and attaches them to a task.
type UploadAttachmentsRequest struct {
	Audit  domain.AuditContext `json:"audit"`
	TaskID string              `json:"task_id"`
	Files  []UploadFile        `json:"files"`
}

// DeleteAttachmentRequest removes the attachment at Index.
type DeleteAttachmentRequest struct {
	Audit  domain.AuditContext `json:"audit"`
	TaskID string              `json:"task_id"`
	Index  int                 `json:"index"`
}

// GetTaskRequest reads a task.
type GetTaskRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
}

// ProjectTasksRequest reads the tasks or the assignable members of a project.
type ProjectTasksRequest struct {
	ActorID   string `json:"actor_id"`
	ProjectID string `json:"project_id"`
}

// ReconcileRequest triggers a counter reconciliation pass.
type ReconcileRequest struct {
	ActorID string `json:"actor_id"`
}

// TaskResponse carries a task or an error.
type TaskResponse struct {
	Task  *TaskView    `json:"task,omitempty"`
	Error *apperr.Wire `json:"error,omitempty"`
}

// TaskListResponse carries a list of tasks.
type TaskListResponse struct {
	Tasks []*TaskView  `json:"tasks"`
	Error *apperr.Wire `json:"error,omitempty"`
}

// MembersResponse carries assignable members.
type MembersResponse struct {
	Members []AssignableMember `json:"members"`
	Error   *apperr.Wire       `json:"error,omitempty"`
}

// AuditResponse carries an audit trail.
type AuditResponse struct {
	Entries []AuditEntry `json:"entries"`
	Error   *apperr.Wire `json:"error,omitempty"`
}

// DeleteTaskResponse acknowledges a soft delete.
type DeleteTaskResponse struct {
	Message string       `json:"message,omitempty"`
	Error   *apperr.Wire `json:"error,omitempty"`
}

// ReconcileResponse carries a reconciliation report.
type ReconcileResponse struct {
	Report *ReconcileReport `json:"report,omitempty"`
	Error  *apperr.Wire     `json:"error,omitempty"`
}

package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the task operations used by the HTTP layer.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskView, error)
	GetTask(ctx context.Context, actorID, taskID string) (*TaskView, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskView, error)
	UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*TaskView, error)
	ApproveTask(ctx context.Context, req *TaskActionRequest) (*TaskView, error)
	RejectTask(ctx context.Context, req *RejectTaskRequest) (*TaskView, error)
	ReassignTask(ctx context.Context, req *ReassignTaskRequest) (*TaskView, error)
	DeleteTask(ctx context.Context, req *TaskActionRequest) (string, error)
	ListProjectTasks(ctx context.Context, actorID, projectID string) ([]*TaskView, error)
	AssignableMembers(ctx context.Context, actorID, projectID string) ([]AssignableMember, error)
	AuditTrail(ctx context.Context, actorID, taskID string) ([]AuditEntry, error)
	DeleteAttachment(ctx context.Context, req *DeleteAttachmentRequest) (*TaskView, error)
	ReconcileCounters(ctx context.Context, actorID string) (*ReconcileReport, error)
}

// AttachmentUploader accepts attachment uploads. Uploads bypass the service
// container because file payloads can exceed the message size limit.
type AttachmentUploader interface {
	UploadAttachments(ctx context.Context, req *UploadAttachmentsRequest) (*TaskView, error)
}

// TaskAdapter implements TaskPort using the service container.
type TaskAdapter struct {
	container mono.ServiceContainer
}

var _ TaskPort = (*TaskAdapter)(nil)

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &TaskAdapter{container: container}
}

// callService performs a request-reply call and decodes the reply into resp.
func callService[T any](ctx context.Context, container mono.ServiceContainer, service string, req any, resp *T) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func (a *TaskAdapter) task(ctx context.Context, service string, req any) (*TaskView, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, service, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// CreateTask creates a task.
func (a *TaskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskView, error) {
	return a.task(ctx, "create-task", req)
}

// GetTask reads a task.
func (a *TaskAdapter) GetTask(ctx context.Context, actorID, taskID string) (*TaskView, error) {
	return a.task(ctx, "get-task", &GetTaskRequest{ActorID: actorID, TaskID: taskID})
}

// UpdateTask changes task fields.
func (a *TaskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskView, error) {
	return a.task(ctx, "update-task", req)
}

// UpdateStatus sets the execution status.
func (a *TaskAdapter) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*TaskView, error) {
	return a.task(ctx, "update-task-status", req)
}

// ApproveTask approves a pending task.
func (a *TaskAdapter) ApproveTask(ctx context.Context, req *TaskActionRequest) (*TaskView, error) {
	return a.task(ctx, "approve-task", req)
}

// RejectTask rejects a pending task.
func (a *TaskAdapter) RejectTask(ctx context.Context, req *RejectTaskRequest) (*TaskView, error) {
	return a.task(ctx, "reject-task", req)
}

// ReassignTask reassigns an approved task.
func (a *TaskAdapter) ReassignTask(ctx context.Context, req *ReassignTaskRequest) (*TaskView, error) {
	return a.task(ctx, "reassign-task", req)
}

// DeleteTask soft-deletes a task.
func (a *TaskAdapter) DeleteTask(ctx context.Context, req *TaskActionRequest) (string, error) {
	var resp DeleteTaskResponse
	if err := callService(ctx, a.container, "delete-task", req, &resp); err != nil {
		return "", err
	}
	if err := resp.Error.Err(); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListProjectTasks lists the tasks of a project visible to the actor.
func (a *TaskAdapter) ListProjectTasks(ctx context.Context, actorID, projectID string) ([]*TaskView, error) {
	var resp TaskListResponse
	if err := callService(ctx, a.container, "list-project-tasks", &ProjectTasksRequest{ActorID: actorID, ProjectID: projectID}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// AssignableMembers lists the users a task in the project may be assigned to.
func (a *TaskAdapter) AssignableMembers(ctx context.Context, actorID, projectID string) ([]AssignableMember, error) {
	var resp MembersResponse
	if err := callService(ctx, a.container, "assignable-members", &ProjectTasksRequest{ActorID: actorID, ProjectID: projectID}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// AuditTrail returns the audit trail of a task.
func (a *TaskAdapter) AuditTrail(ctx context.Context, actorID, taskID string) ([]AuditEntry, error) {
	var resp AuditResponse
	if err := callService(ctx, a.container, "task-audit", &GetTaskRequest{ActorID: actorID, TaskID: taskID}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// DeleteAttachment removes an attachment from a task.
func (a *TaskAdapter) DeleteAttachment(ctx context.Context, req *DeleteAttachmentRequest) (*TaskView, error) {
	return a.task(ctx, "delete-attachment", req)
}

// ReconcileCounters triggers a reconciliation pass.
func (a *TaskAdapter) ReconcileCounters(ctx context.Context, actorID string) (*ReconcileReport, error) {
	var resp ReconcileResponse
	if err := callService(ctx, a.container, "reconcile-counters", &ReconcileRequest{ActorID: actorID}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Report, nil
}

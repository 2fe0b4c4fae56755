package api

import (
	"context"
	"errors"

	projectdomain "github.com/example/task-approval/domain/project"
	domain "github.com/example/task-approval/domain/user"
	"github.com/example/task-approval/modules/auth"
	"github.com/example/task-approval/modules/notification"
	"github.com/example/task-approval/modules/project"
	"github.com/example/task-approval/modules/task"
)

var errNotImplemented = errors.New("not implemented")

// mockAuthPort implements auth.AuthPort for testing
type mockAuthPort struct {
	validateTokenFunc func(ctx context.Context, token string) (*domain.Claims, error)
	registerFunc      func(ctx context.Context, req *auth.RegisterRequest) (*domain.Profile, error)
	loginFunc         func(ctx context.Context, email, password string) (*domain.TokenPair, error)
}

func (m *mockAuthPort) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(ctx, token)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) Register(ctx context.Context, req *auth.RegisterRequest) (*domain.Profile, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil, errNotImplemented
}

func (m *mockAuthPort) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	return nil, errNotImplemented
}

func (m *mockAuthPort) GetUser(ctx context.Context, userID string) (*domain.Profile, error) {
	return nil, errNotImplemented
}

func (m *mockAuthPort) GetUsers(ctx context.Context, userIDs []string) ([]domain.Profile, error) {
	return nil, errNotImplemented
}

// mockProjectPort implements project.ProjectPort for testing
type mockProjectPort struct {
	createFunc func(ctx context.Context, req *project.CreateProjectRequest) (*project.ProjectView, error)
	getFunc    func(ctx context.Context, actorID, projectID string) (*project.ProjectView, error)
}

func (m *mockProjectPort) CreateProject(ctx context.Context, req *project.CreateProjectRequest) (*project.ProjectView, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockProjectPort) GetProject(ctx context.Context, actorID, projectID string) (*project.ProjectView, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, actorID, projectID)
	}
	return nil, errNotImplemented
}

func (m *mockProjectPort) AddMember(ctx context.Context, actorID, projectID, userID string) (*project.ProjectView, error) {
	return nil, errNotImplemented
}

func (m *mockProjectPort) RemoveMember(ctx context.Context, actorID, projectID, userID string) (*project.ProjectView, error) {
	return nil, errNotImplemented
}

func (m *mockProjectPort) GetAccess(ctx context.Context, projectID string) (*projectdomain.Access, error) {
	return nil, errNotImplemented
}

func (m *mockProjectPort) GetCounters(ctx context.Context, projectID string) (*projectdomain.Counters, error) {
	return nil, errNotImplemented
}

func (m *mockProjectPort) AdjustCounters(ctx context.Context, projectID string, totalDelta, completedDelta int) error {
	return errNotImplemented
}

func (m *mockProjectPort) SetCounters(ctx context.Context, c projectdomain.Counters) error {
	return errNotImplemented
}

// mockTaskPort implements task.TaskPort for testing
type mockTaskPort struct {
	createFunc       func(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskView, error)
	getFunc          func(ctx context.Context, actorID, taskID string) (*task.TaskView, error)
	updateFunc       func(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskView, error)
	statusFunc       func(ctx context.Context, req *task.UpdateStatusRequest) (*task.TaskView, error)
	approveFunc      func(ctx context.Context, req *task.TaskActionRequest) (*task.TaskView, error)
	rejectFunc       func(ctx context.Context, req *task.RejectTaskRequest) (*task.TaskView, error)
	deleteFunc       func(ctx context.Context, req *task.TaskActionRequest) (string, error)
	listFunc         func(ctx context.Context, actorID, projectID string) ([]*task.TaskView, error)
	deleteAttachFunc func(ctx context.Context, req *task.DeleteAttachmentRequest) (*task.TaskView, error)
	reconcileFunc    func(ctx context.Context, actorID string) (*task.ReconcileReport, error)
}

func (m *mockTaskPort) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskView, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) GetTask(ctx context.Context, actorID, taskID string) (*task.TaskView, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, actorID, taskID)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskView, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) UpdateStatus(ctx context.Context, req *task.UpdateStatusRequest) (*task.TaskView, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) ApproveTask(ctx context.Context, req *task.TaskActionRequest) (*task.TaskView, error) {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) RejectTask(ctx context.Context, req *task.RejectTaskRequest) (*task.TaskView, error) {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) ReassignTask(ctx context.Context, req *task.ReassignTaskRequest) (*task.TaskView, error) {
	return nil, errNotImplemented
}

func (m *mockTaskPort) DeleteTask(ctx context.Context, req *task.TaskActionRequest) (string, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, req)
	}
	return "", errNotImplemented
}

func (m *mockTaskPort) ListProjectTasks(ctx context.Context, actorID, projectID string) ([]*task.TaskView, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, actorID, projectID)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) AssignableMembers(ctx context.Context, actorID, projectID string) ([]task.AssignableMember, error) {
	return nil, errNotImplemented
}

func (m *mockTaskPort) AuditTrail(ctx context.Context, actorID, taskID string) ([]task.AuditEntry, error) {
	return nil, errNotImplemented
}

func (m *mockTaskPort) DeleteAttachment(ctx context.Context, req *task.DeleteAttachmentRequest) (*task.TaskView, error) {
	if m.deleteAttachFunc != nil {
		return m.deleteAttachFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockTaskPort) ReconcileCounters(ctx context.Context, actorID string) (*task.ReconcileReport, error) {
	if m.reconcileFunc != nil {
		return m.reconcileFunc(ctx, actorID)
	}
	return nil, errNotImplemented
}

// mockNotificationPort implements notification.NotificationPort for testing
type mockNotificationPort struct {
	listFunc func(ctx context.Context, req *notification.ListRequest) (*notification.ListResponse, error)
}

func (m *mockNotificationPort) List(ctx context.Context, req *notification.ListRequest) (*notification.ListResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockNotificationPort) MarkRead(ctx context.Context, recipientID, notificationID string) (*notification.NotificationView, error) {
	return nil, errNotImplemented
}

// mockUploader implements task.AttachmentUploader for testing
type mockUploader struct {
	uploadFunc func(ctx context.Context, req *task.UploadAttachmentsRequest) (*task.TaskView, error)
}

func (m *mockUploader) UploadAttachments(ctx context.Context, req *task.UploadAttachmentsRequest) (*task.TaskView, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, req)
	}
	return nil, errNotImplemented
}

package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/task"
	"github.com/example/task-approval/events"
	"github.com/example/task-approval/modules/auth"
	"github.com/example/task-approval/modules/cache"
	"github.com/example/task-approval/modules/database"
	"github.com/example/task-approval/modules/project"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
)

// Config holds the task module settings.
type Config struct {
	ReconcileInterval time.Duration // zero disables the background job
	MaxUploadSize     int64
}

// TaskModule provides the task lifecycle services (core domain).
type TaskModule struct {
	config     Config
	logger     types.Logger
	dbPlug     *database.PluginModule
	storage    *fsjetstream.PluginModule
	locker     *cache.Locker
	users      auth.UserDirectory
	projects   ProjectDirectory
	eventBus   mono.EventBus
	service    *Service
	reconciler *Reconciler
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*TaskModule)(nil)
	_ mono.ServiceProviderModule = (*TaskModule)(nil)
	_ mono.DependentModule       = (*TaskModule)(nil)
	_ mono.EventEmitterModule    = (*TaskModule)(nil)
	_ mono.UsePluginModule       = (*TaskModule)(nil)
	_ mono.HealthCheckableModule = (*TaskModule)(nil)
	_ AttachmentUploader         = (*TaskModule)(nil)
)

// NewModule creates a new TaskModule.
func NewModule(config Config, logger types.Logger) *TaskModule {
	return &TaskModule{
		config: config,
		logger: logger.WithModule("task"),
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// Dependencies returns the modules this module depends on.
func (m *TaskModule) Dependencies() []string {
	return []string{"auth", "project"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.users = auth.NewAuthAdapter(container)
	case "project":
		m.projects = project.NewProjectAdapter(container)
	}
}

// SetPlugin receives the database, storage and optional cache plugins.
func (m *TaskModule) SetPlugin(alias string, plugin mono.PluginModule) {
	switch alias {
	case "database":
		if p, ok := database.FromPlugin(plugin); ok {
			m.dbPlug = p
		}
	case "storage":
		storage, ok := plugin.(*fsjetstream.PluginModule)
		if !ok {
			m.logger.Error("Invalid plugin type for storage",
				"alias", alias,
				"expected", "*fsjetstream.PluginModule")
			return
		}
		m.storage = storage
	case "cache":
		if p, ok := plugin.(*cache.PluginModule); ok {
			m.locker = p.Locker()
		}
	}
}

// SetEventBus receives the event bus.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskNotificationV1.ToBase(),
		events.TaskPhaseChangedV1.ToBase(),
	}
}

// Start wires the service and launches the reconciler.
func (m *TaskModule) Start(_ context.Context) error {
	if m.dbPlug == nil || m.dbPlug.DB() == nil {
		return fmt.Errorf("required plugin 'database' not registered")
	}
	if m.users == nil || m.projects == nil {
		return fmt.Errorf("auth and project dependencies not set")
	}

	var blobs BlobStore
	if m.storage != nil {
		bucket := m.storage.Bucket(AttachmentBucket)
		if bucket == nil {
			return fmt.Errorf("bucket '%s' not found in storage plugin", AttachmentBucket)
		}
		blobs = NewJetStreamBlobStore(bucket)
	} else {
		m.logger.Warn("Storage plugin not set, attachment uploads are disabled")
	}
	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, notifications will not be published")
	}

	m.service = NewService(ServiceConfig{
		Repo:          NewTaskRepository(m.dbPlug.DB()),
		Projects:      m.projects,
		Users:         m.users,
		Notifier:      NewEventNotifier(m.eventBus),
		Blobs:         blobs,
		Logger:        m.logger,
		MaxUploadSize: m.config.MaxUploadSize,
	})

	if m.config.ReconcileInterval > 0 {
		m.reconciler = NewReconciler(m.service, m.locker, m.config.ReconcileInterval, m.logger)
		m.reconciler.Start()
	}

	m.logger.Info("Task module started", "depends_on", "auth,project")
	return nil
}

// Stop stops the reconciler.
func (m *TaskModule) Stop(ctx context.Context) error {
	if m.reconciler != nil {
		if err := m.reconciler.Stop(ctx); err != nil {
			return err
		}
	}
	m.logger.Info("Task module stopped")
	return nil
}

// Health reports whether the service is ready.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"attachments": m.storage != nil,
			"reconciler":  m.reconciler != nil,
			"lease":       m.locker != nil,
		},
	}
}

// UploadAttachments stores files on a task. It is called in-process by the
// HTTP layer.
func (m *TaskModule) UploadAttachments(ctx context.Context, req *UploadAttachmentsRequest) (*TaskView, error) {
	if m.service == nil {
		return nil, apperr.Internal(nil, "task module not started")
	}
	t, err := m.service.UploadAttachments(ctx, req)
	if err != nil {
		m.logInternal("upload-attachments", err)
		return nil, err
	}
	return NewTaskView(t), nil
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task-status", json.Unmarshal, json.Marshal, m.updateStatus,
	); err != nil {
		return fmt.Errorf("failed to register update-task-status service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "approve-task", json.Unmarshal, json.Marshal, m.approveTask,
	); err != nil {
		return fmt.Errorf("failed to register approve-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "reject-task", json.Unmarshal, json.Marshal, m.rejectTask,
	); err != nil {
		return fmt.Errorf("failed to register reject-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "reassign-task", json.Unmarshal, json.Marshal, m.reassignTask,
	); err != nil {
		return fmt.Errorf("failed to register reassign-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-project-tasks", json.Unmarshal, json.Marshal, m.listProjectTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-project-tasks service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "assignable-members", json.Unmarshal, json.Marshal, m.assignableMembers,
	); err != nil {
		return fmt.Errorf("failed to register assignable-members service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "task-audit", json.Unmarshal, json.Marshal, m.taskAudit,
	); err != nil {
		return fmt.Errorf("failed to register task-audit service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-attachment", json.Unmarshal, json.Marshal, m.deleteAttachment,
	); err != nil {
		return fmt.Errorf("failed to register delete-attachment service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "reconcile-counters", json.Unmarshal, json.Marshal, m.reconcileCounters,
	); err != nil {
		return fmt.Errorf("failed to register reconcile-counters service: %w", err)
	}

	m.logger.Info("Registered services",
		"services", "create-task, get-task, update-task, update-task-status, approve-task, reject-task, "+
			"reassign-task, delete-task, list-project-tasks, assignable-members, task-audit, "+
			"delete-attachment, reconcile-counters")
	return nil
}

func (m *TaskModule) taskReply(service string, t *domain.Task, err error) (TaskResponse, error) {
	if err != nil {
		m.logInternal(service, err)
		return TaskResponse{Error: apperr.ToWire(err)}, nil
	}
	return TaskResponse{Task: NewTaskView(t)}, nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Create(ctx, &req)
	return m.taskReply("create-task", t, err)
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Get(ctx, req.ActorID, req.TaskID)
	return m.taskReply("get-task", t, err)
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Update(ctx, &req)
	return m.taskReply("update-task", t, err)
}

func (m *TaskModule) updateStatus(ctx context.Context, req UpdateStatusRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.UpdateStatus(ctx, &req)
	return m.taskReply("update-task-status", t, err)
}

func (m *TaskModule) approveTask(ctx context.Context, req TaskActionRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Approve(ctx, &req)
	return m.taskReply("approve-task", t, err)
}

func (m *TaskModule) rejectTask(ctx context.Context, req RejectTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Reject(ctx, &req)
	return m.taskReply("reject-task", t, err)
}

func (m *TaskModule) reassignTask(ctx context.Context, req ReassignTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.ReassignApproved(ctx, &req)
	return m.taskReply("reassign-task", t, err)
}

func (m *TaskModule) deleteAttachment(ctx context.Context, req DeleteAttachmentRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.DeleteAttachment(ctx, &req)
	return m.taskReply("delete-attachment", t, err)
}

func (m *TaskModule) deleteTask(ctx context.Context, req TaskActionRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, &req); err != nil {
		m.logInternal("delete-task", err)
		return DeleteTaskResponse{Error: apperr.ToWire(err)}, nil
	}
	return DeleteTaskResponse{Message: "task deleted"}, nil
}

func (m *TaskModule) listProjectTasks(ctx context.Context, req ProjectTasksRequest, _ *mono.Msg) (TaskListResponse, error) {
	tasks, err := m.service.ListProjectTasks(ctx, req.ActorID, req.ProjectID)
	if err != nil {
		m.logInternal("list-project-tasks", err)
		return TaskListResponse{Error: apperr.ToWire(err)}, nil
	}
	return TaskListResponse{Tasks: newTaskViews(tasks)}, nil
}

func (m *TaskModule) assignableMembers(ctx context.Context, req ProjectTasksRequest, _ *mono.Msg) (MembersResponse, error) {
	members, err := m.service.AssignableMembers(ctx, req.ActorID, req.ProjectID)
	if err != nil {
		m.logInternal("assignable-members", err)
		return MembersResponse{Error: apperr.ToWire(err)}, nil
	}
	return MembersResponse{Members: members}, nil
}

func (m *TaskModule) taskAudit(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (AuditResponse, error) {
	rows, err := m.service.AuditTrail(ctx, req.ActorID, req.TaskID)
	if err != nil {
		m.logInternal("task-audit", err)
		return AuditResponse{Error: apperr.ToWire(err)}, nil
	}
	return AuditResponse{Entries: newAuditEntries(rows)}, nil
}

func (m *TaskModule) reconcileCounters(ctx context.Context, req ReconcileRequest, _ *mono.Msg) (ReconcileResponse, error) {
	report, err := m.service.ReconcileAs(ctx, req.ActorID)
	if err != nil {
		m.logInternal("reconcile-counters", err)
		return ReconcileResponse{Error: apperr.ToWire(err)}, nil
	}
	return ReconcileResponse{Report: report}, nil
}

func (m *TaskModule) logInternal(service string, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		m.logger.Error("Service failed", "service", service, "error", err)
	}
}

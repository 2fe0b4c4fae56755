package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/task-approval/domain/apperr"
	"github.com/example/task-approval/events"
	"github.com/example/task-approval/modules/database"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationModule persists task notifications published on the event
// bus and serves them back to their recipients.
type NotificationModule struct {
	dbPlug  *database.PluginModule
	service *NotificationService
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*NotificationModule)(nil)
	_ mono.EventConsumerModule   = (*NotificationModule)(nil)
	_ mono.ServiceProviderModule = (*NotificationModule)(nil)
	_ mono.UsePluginModule       = (*NotificationModule)(nil)
	_ mono.HealthCheckableModule = (*NotificationModule)(nil)
)

// NewModule creates a new NotificationModule.
func NewModule() *NotificationModule {
	return &NotificationModule{}
}

// Name returns the module name.
func (m *NotificationModule) Name() string {
	return "notification"
}

// SetPlugin receives the database plugin.
func (m *NotificationModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != "database" {
		return
	}
	if p, ok := database.FromPlugin(plugin); ok {
		m.dbPlug = p
	}
}

// RegisterEventConsumers subscribes to task events.
func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskNotificationV1, m.handleTaskNotification, m); err != nil {
		return fmt.Errorf("failed to register TaskNotification consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskPhaseChangedV1, m.handlePhaseChanged, m); err != nil {
		return fmt.Errorf("failed to register TaskPhaseChanged consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: TaskNotification, TaskPhaseChanged")
	return nil
}

func (m *NotificationModule) handleTaskNotification(ctx context.Context, event events.TaskNotificationEvent, _ *mono.Msg) error {
	if m.service == nil {
		return fmt.Errorf("notification module not started")
	}
	n, err := m.service.Record(ctx, event)
	if err != nil {
		log.Printf("[notification] Warning: failed to store %s for %s: %v", event.Type, event.RecipientID, err)
		return err
	}
	log.Printf("[notification] %s -> %s (task %s)", n.Type, n.RecipientID, n.TaskID)
	return nil
}

func (m *NotificationModule) handlePhaseChanged(_ context.Context, event events.TaskPhaseChangedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task %s moved %s -> %s by %s", event.TaskID, event.From, event.To, event.ActorID)
	return nil
}

// Start wires the service.
func (m *NotificationModule) Start(_ context.Context) error {
	if m.dbPlug == nil || m.dbPlug.DB() == nil {
		return fmt.Errorf("required plugin 'database' not registered")
	}
	m.service = NewNotificationService(NewNotificationRepository(m.dbPlug.DB()))
	log.Println("[notification] Module started - listening for task events")
	return nil
}

// Stop shuts down the module.
func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}

// Health reports whether the service is ready.
func (m *NotificationModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// RegisterServices registers request-reply services in the service container.
func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-notifications", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list-notifications service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "mark-notification-read", json.Unmarshal, json.Marshal, m.handleMarkRead,
	); err != nil {
		return fmt.Errorf("failed to register mark-notification-read service: %w", err)
	}

	log.Printf("[notification] Registered services: list-notifications, mark-notification-read")
	return nil
}

func (m *NotificationModule) handleList(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	items, unread, err := m.service.List(ctx, req.RecipientID, req.UnreadOnly, req.Limit)
	if err != nil {
		logInternal("list-notifications", err)
		return ListResponse{Error: apperr.ToWire(err)}, nil
	}
	views := make([]NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, NewNotificationView(n))
	}
	return ListResponse{Notifications: views, Unread: unread}, nil
}

func (m *NotificationModule) handleMarkRead(ctx context.Context, req MarkReadRequest, _ *mono.Msg) (MarkReadResponse, error) {
	n, err := m.service.MarkRead(ctx, req.RecipientID, req.NotificationID)
	if err != nil {
		logInternal("mark-notification-read", err)
		return MarkReadResponse{Error: apperr.ToWire(err)}, nil
	}
	view := NewNotificationView(n)
	return MarkReadResponse{Notification: &view}, nil
}

func logInternal(service string, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		log.Printf("[notification] %s failed: %v", service, err)
	}
}

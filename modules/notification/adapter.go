package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationPort defines the notification operations used by the HTTP layer.
type NotificationPort interface {
	List(ctx context.Context, req *ListRequest) (*ListResponse, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) (*NotificationView, error)
}

// NotificationAdapter implements NotificationPort using the service container.
type NotificationAdapter struct {
	container mono.ServiceContainer
}

var _ NotificationPort = (*NotificationAdapter)(nil)

// NewNotificationAdapter creates a new NotificationAdapter.
func NewNotificationAdapter(container mono.ServiceContainer) *NotificationAdapter {
	if container == nil {
		panic("notification adapter requires non-nil ServiceContainer")
	}
	return &NotificationAdapter{container: container}
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

// List returns a recipient's notifications.
func (a *NotificationAdapter) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	var resp ListResponse
	if err := callService(ctx, a.container, "list-notifications", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	if resp.Notifications == nil {
		resp.Notifications = []NotificationView{}
	}
	return &resp, nil
}

// MarkRead marks one notification read.
func (a *NotificationAdapter) MarkRead(ctx context.Context, recipientID, notificationID string) (*NotificationView, error) {
	var resp MarkReadResponse
	req := &MarkReadRequest{RecipientID: recipientID, NotificationID: notificationID}
	if err := callService(ctx, a.container, "mark-notification-read", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Notification, nil
}

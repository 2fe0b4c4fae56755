package notification

import (
	"context"
	"time"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/notification"
	"github.com/example/task-approval/events"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// NotificationService stores and serves task notifications.
type NotificationService struct {
	repo *NotificationRepository
	now  func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo *NotificationRepository) *NotificationService {
	return &NotificationService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Record persists a notification event for its recipient.
func (s *NotificationService) Record(ctx context.Context, ev events.TaskNotificationEvent) (*domain.Notification, error) {
	if ev.RecipientID == "" {
		return nil, apperr.Validation("notification has no recipient")
	}
	createdAt := ev.OccurredAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	n := &domain.Notification{
		ID:          uuid.New().String(),
		RecipientID: ev.RecipientID,
		Type:        string(ev.Type),
		Message:     ev.Message,
		TaskID:      ev.TaskID,
		ProjectID:   ev.ProjectID,
		ActorID:     ev.ActorID,
		Context:     ev.Context,
		CreatedAt:   createdAt,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns a recipient's notifications, newest first, with the number
// of unread ones.
func (s *NotificationService) List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*domain.Notification, int64, error) {
	if recipientID == "" {
		return nil, 0, apperr.Permission("authentication required")
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	items, err := s.repo.ListByRecipient(ctx, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// MarkRead marks a notification owned by recipientID as read.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, id string) (*domain.Notification, error) {
	if recipientID == "" {
		return nil, apperr.Permission("authentication required")
	}
	n, err := s.repo.FindForRecipient(ctx, recipientID, id)
	if err != nil {
		return nil, err
	}
	if n.MarkRead(s.now()) {
		if err := s.repo.SaveRead(ctx, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

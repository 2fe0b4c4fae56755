package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/notification"
	"gorm.io/gorm"
)

// ErrNotificationNotFound is returned when a recipient has no notification
// with the requested id.
var ErrNotificationNotFound = apperr.NotFound("notification not found")

// NotificationRepository handles notification persistence using GORM.
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByRecipient returns the newest notifications of a recipient first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []*domain.Notification
	if err := q.Order("created_at DESC, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

// FindForRecipient returns a notification owned by recipientID.
func (r *NotificationRepository) FindForRecipient(ctx context.Context, recipientID, id string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.WithContext(ctx).First(&n, "id = ? AND recipient_id = ?", id, recipientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	return &n, nil
}

// SaveRead persists the read flag of n.
func (r *NotificationRepository) SaveRead(ctx context.Context, n *domain.Notification) error {
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{"is_read": n.IsRead, "read_at": n.ReadAt}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// CountUnread returns the number of unread notifications of a recipient.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

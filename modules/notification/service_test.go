package notification

import (
	"context"
	"testing"
	"time"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/notification"
	"github.com/example/task-approval/events"
	"github.com/example/task-approval/modules/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *NotificationService {
	t.Helper()
	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Notification{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewNotificationService(NewNotificationRepository(db))
}

func event(recipient string, typ events.NotificationType, at time.Time) events.TaskNotificationEvent {
	return events.TaskNotificationEvent{
		RecipientID: recipient,
		Type:        typ,
		Message:     "Task " + string(typ),
		TaskID:      "task-1",
		ProjectID:   "proj-1",
		ActorID:     "head",
		Context:     map[string]string{"reason": "redo"},
		OccurredAt:  at,
	}
}

func TestNotificationService_RecordAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.Record(ctx, event("member", events.NotificationTaskAssigned, base))
	require.NoError(t, err)
	_, err = svc.Record(ctx, event("member", events.NotificationTaskRejected, base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = svc.Record(ctx, event("head", events.NotificationTaskCompleted, base))
	require.NoError(t, err)

	items, unread, err := svc.List(ctx, "member", false, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), unread)
	assert.Equal(t, string(events.NotificationTaskRejected), items[0].Type)
	assert.Equal(t, "redo", items[0].Context["reason"])
	assert.Equal(t, string(events.NotificationTaskAssigned), items[1].Type)

	items, _, err = svc.List(ctx, "member", false, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestNotificationService_RecordRequiresRecipient(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Record(context.Background(), event("", events.NotificationTaskAssigned, time.Now()))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	n, err := svc.Record(ctx, event("member", events.NotificationTaskApproved, time.Time{}))
	require.NoError(t, err)
	assert.False(t, n.CreatedAt.IsZero())

	_, err = svc.MarkRead(ctx, "head", n.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	_, err = svc.MarkRead(ctx, "", n.ID)
	assert.ErrorIs(t, err, apperr.ErrPermission)

	read, err := svc.MarkRead(ctx, "member", n.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)
	firstRead := *read.ReadAt

	again, err := svc.MarkRead(ctx, "member", n.ID)
	require.NoError(t, err)
	assert.True(t, firstRead.Equal(*again.ReadAt))

	items, unread, err := svc.List(ctx, "member", true, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(0), unread)
}

func TestNotificationModule_HandlersRoundTrip(t *testing.T) {
	m := NewModule()
	m.service = newTestService(t)
	ctx := context.Background()

	require.NoError(t, m.handleTaskNotification(ctx, event("member", events.NotificationTaskAssigned, time.Now()), nil))
	require.NoError(t, m.handlePhaseChanged(ctx, events.TaskPhaseChangedEvent{TaskID: "task-1", From: "to_do", To: "awaiting_approval"}, nil))

	list, err := m.handleList(ctx, ListRequest{RecipientID: "member"}, nil)
	require.NoError(t, err)
	require.Nil(t, list.Error)
	require.Len(t, list.Notifications, 1)
	assert.False(t, list.Notifications[0].Read)

	marked, err := m.handleMarkRead(ctx, MarkReadRequest{RecipientID: "member", NotificationID: list.Notifications[0].ID}, nil)
	require.NoError(t, err)
	require.Nil(t, marked.Error)
	assert.True(t, marked.Notification.Read)

	missing, err := m.handleMarkRead(ctx, MarkReadRequest{RecipientID: "member", NotificationID: "nope"}, nil)
	require.NoError(t, err)
	require.NotNil(t, missing.Error)
	assert.ErrorIs(t, missing.Error.Err(), apperr.ErrNotFound)
}

func TestNotificationModule_HealthBeforeStart(t *testing.T) {
	m := NewModule()
	assert.False(t, m.Health(context.Background()).Healthy)
	assert.Error(t, m.Start(context.Background()))
}

package task

import (
	"context"
	"testing"
	"time"

	domain "github.com/example/task-approval/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredTask(t *testing.T, repo *TaskRepository, id, projectID string) *domain.Task {
	t.Helper()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	sched, err := domain.ParseSchedule("2024-03-01", "2024-03-03")
	require.NoError(t, err)
	tk := domain.NewTask(id, projectID, head.ID, "Task "+id, "", domain.PriorityMedium, member.ID, sched, now)
	require.NoError(t, repo.Create(context.Background(), tk,
		domain.NewAudit(tk, domain.ActionCreated, as(head.ID), domain.Transition{To: tk.Phase}, "", now)))
	return tk
}

func TestTaskRepository_CreateAndFind(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tk := newStoredTask(t, env.repo, "t1", testProject)
	assert.Equal(t, 1, tk.Version)

	got, err := env.repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Task t1", got.Title)
	assert.Equal(t, 3, got.DurationDays)
	assert.Equal(t, "2024-03-03", got.DueDate.Format(domain.DateLayout))
	assert.NotNil(t, got.Attachments)

	_, err = env.repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskRepository_UpdateDetectsStaleWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	newStoredTask(t, env.repo, "t1", testProject)
	now := time.Now().UTC()

	first, err := env.repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	second, err := env.repo.FindByID(ctx, "t1")
	require.NoError(t, err)

	tr := first.SetStatus(domain.StatusDone, member.ID, now)
	require.NoError(t, env.repo.Update(ctx, first, tr.From,
		domain.NewAudit(first, domain.ActionStatusChanged, as(member.ID), tr, "done", now)))
	assert.Equal(t, 2, first.Version)

	tr = second.SetStatus(domain.StatusInProgress, member.ID, now)
	err = env.repo.Update(ctx, second, tr.From,
		domain.NewAudit(second, domain.ActionStatusChanged, as(member.ID), tr, "in-progress", now))
	assert.ErrorIs(t, err, ErrStaleTask)
	assert.Equal(t, 1, second.Version)

	stored, err := env.repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingApproval, stored.Phase)

	trail, err := env.repo.AuditTrail(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, trail, 2)
}

func TestTaskRepository_UpdateChecksExpectedPhase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tk := newStoredTask(t, env.repo, "t1", testProject)
	now := time.Now().UTC()

	tr := tk.SetStatus(domain.StatusInProgress, member.ID, now)
	err := env.repo.Update(ctx, tk, domain.PhaseAwaitingApproval,
		domain.NewAudit(tk, domain.ActionStatusChanged, as(member.ID), tr, "", now))
	assert.ErrorIs(t, err, ErrStaleTask)
}

func TestTaskRepository_DeactivatedTasksAreHidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tk := newStoredTask(t, env.repo, "t1", testProject)
	newStoredTask(t, env.repo, "t2", testProject)
	now := time.Now().UTC()

	tk.Deactivate(head.ID, now)
	require.NoError(t, env.repo.Update(ctx, tk, tk.Phase,
		domain.NewAudit(tk, domain.ActionDeleted, as(head.ID), domain.Transition{}, "", now)))

	_, err := env.repo.FindByID(ctx, "t1")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	tasks, err := env.repo.ListByProject(ctx, testProject)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t2", tasks[0].ID)

	// A soft-deleted task cannot be written again.
	tk.Title = "resurrected"
	err = env.repo.Update(ctx, tk, tk.Phase,
		domain.NewAudit(tk, domain.ActionUpdated, as(head.ID), domain.Transition{}, "", now))
	assert.ErrorIs(t, err, ErrStaleTask)
}

func TestTaskRepository_CountByProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	done := newStoredTask(t, env.repo, "a1", "alpha")
	newStoredTask(t, env.repo, "a2", "alpha")
	gone := newStoredTask(t, env.repo, "b1", "beta")

	tr := done.SetStatus(domain.StatusDone, member.ID, now)
	require.NoError(t, env.repo.Update(ctx, done, tr.From,
		domain.NewAudit(done, domain.ActionStatusChanged, as(member.ID), tr, "", now)))
	gone.Deactivate(head.ID, now)
	require.NoError(t, env.repo.Update(ctx, gone, gone.Phase,
		domain.NewAudit(gone, domain.ActionDeleted, as(head.ID), domain.Transition{}, "", now)))

	counts, err := env.repo.CountByProject(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "alpha", counts[0].ProjectID)
	assert.Equal(t, 2, counts[0].TotalTasks)
	assert.Equal(t, 1, counts[0].CompletedTasks)
	assert.Equal(t, "beta", counts[1].ProjectID)
	assert.Equal(t, 0, counts[1].TotalTasks)
	assert.Equal(t, 0, counts[1].CompletedTasks)
}

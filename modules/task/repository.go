package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/task-approval/domain/apperr"
	projectdomain "github.com/example/task-approval/domain/project"
	domain "github.com/example/task-approval/domain/task"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound is returned when no active task has the requested id.
	ErrTaskNotFound = apperr.NotFound("task not found")
	// ErrStaleTask is returned when the task changed between read and write.
	ErrStaleTask = apperr.Conflict("task was modified concurrently, reload and retry")
)

// TaskRepository handles task persistence using GORM. Every write stores
// the matching audit row in the same transaction.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task at version 1.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task, audit *domain.Audit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t.Version = 1
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		if err := tx.Create(audit).Error; err != nil {
			return fmt.Errorf("failed to record audit: %w", err)
		}
		return nil
	})
}

// Update writes t only if the stored row is still active, in phase
// expected and at t's version. On success the version is bumped; otherwise
// ErrStaleTask is returned and nothing is written.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task, expected domain.Phase, audit *domain.Audit) error {
	prev := t.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t.Version = prev + 1
		res := tx.Model(&domain.Task{}).
			Where("id = ? AND phase = ? AND version = ? AND is_active = ?", t.ID, expected, prev, true).
			Select("*").
			Omit("id", "created_at").
			Updates(t)
		if res.Error != nil {
			return fmt.Errorf("failed to update task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleTask
		}
		if err := tx.Create(audit).Error; err != nil {
			return fmt.Errorf("failed to record audit: %w", err)
		}
		return nil
	})
	if err != nil {
		t.Version = prev
	}
	return err
}

// FindByID returns an active task.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.WithContext(ctx).First(&t, "id = ? AND is_active = ?", id, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// ListByProject returns the active tasks of a project, oldest first.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("created_at, id").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// AuditTrail returns the audit rows of a task in the order they were written.
func (r *TaskRepository) AuditTrail(ctx context.Context, taskID string) ([]domain.Audit, error) {
	var rows []domain.Audit
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}
	return rows, nil
}

// CountByProject recomputes the counters of every project that has ever
// had a task. Projects whose tasks were all deleted report zeros.
func (r *TaskRepository) CountByProject(ctx context.Context) ([]projectdomain.Counters, error) {
	done := make([]string, 0, len(domain.DonePhases()))
	for _, p := range domain.DonePhases() {
		done = append(done, string(p))
	}

	var rows []struct {
		ProjectID string
		Total     int
		Completed int
	}
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Select("project_id, "+
			"SUM(CASE WHEN is_active THEN 1 ELSE 0 END) AS total, "+
			"SUM(CASE WHEN is_active AND phase IN ? THEN 1 ELSE 0 END) AS completed", done).
		Group("project_id").
		Order("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	counters := make([]projectdomain.Counters, 0, len(rows))
	for _, row := range rows {
		counters = append(counters, projectdomain.Counters{
			ProjectID:      row.ProjectID,
			TotalTasks:     row.Total,
			CompletedTasks: row.Completed,
		})
	}
	return counters, nil
}

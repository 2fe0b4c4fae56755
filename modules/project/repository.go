package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/project"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProjectNotFound is returned when a project does not exist.
var ErrProjectNotFound = apperr.NotFound("project not found")

// ProjectRepository handles project persistence using GORM.
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project together with its members.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// FindByID loads a project and its members.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, user_id") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return &p, nil
}

// AddMember inserts a membership row. Adding an existing member is a no-op.
func (r *ProjectRepository) AddMember(ctx context.Context, m *domain.Member) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row and reports whether one existed.
func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&domain.Member{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove member: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AdjustCounters applies per-field increments in a single UPDATE so
// concurrent adjustments on the same project do not overwrite each other.
func (r *ProjectRepository) AdjustCounters(ctx context.Context, id string, totalDelta, completedDelta int) error {
	updates := map[string]any{}
	if totalDelta != 0 {
		updates["total_tasks"] = gorm.Expr("total_tasks + ?", totalDelta)
	}
	if completedDelta != 0 {
		updates["completed_tasks"] = gorm.Expr("completed_tasks + ?", completedDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.updateCounters(ctx, id, updates)
}

// SetCounters overwrites both counters with recomputed values.
func (r *ProjectRepository) SetCounters(ctx context.Context, c domain.Counters) error {
	return r.updateCounters(ctx, c.ProjectID, map[string]any{
		"total_tasks":     c.TotalTasks,
		"completed_tasks": c.CompletedTasks,
	})
}

func (r *ProjectRepository) updateCounters(ctx context.Context, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Project{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update counters: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Counters reads the stored counters of a project.
func (r *ProjectRepository) Counters(ctx context.Context, id string) (domain.Counters, error) {
	var p domain.Project
	err := r.db.WithContext(ctx).Select("id", "total_tasks", "completed_tasks").First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Counters{}, ErrProjectNotFound
		}
		return domain.Counters{}, fmt.Errorf("failed to read counters: %w", err)
	}
	return domain.Counters{ProjectID: p.ID, TotalTasks: p.TotalTasks, CompletedTasks: p.CompletedTasks}, nil
}

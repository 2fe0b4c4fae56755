package project

import (
	"time"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/project"
)

// ProjectView is the client-facing shape of a project.
type ProjectView struct {
	ID             string     `json:"id"`
	WorkspaceID    string     `json:"workspace_id,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	HeadID         string     `json:"head_id"`
	MemberIDs      []string   `json:"member_ids"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewProjectView converts a stored project.
func NewProjectView(p *domain.Project) *ProjectView {
	return &ProjectView{
		ID:             p.ID,
		WorkspaceID:    p.WorkspaceID,
		Name:           p.Name,
		Description:    p.Description,
		HeadID:         p.HeadID,
		MemberIDs:      p.MemberIDs(),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		TotalTasks:     p.TotalTasks,
		CompletedTasks: p.CompletedTasks,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// CreateProjectRequest creates a project. HeadID defaults to the actor.
type CreateProjectRequest struct {
	ActorID     string   `json:"actor_id"`
	WorkspaceID string   `json:"workspace_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HeadID      string   `json:"head_id"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	MemberIDs   []string `json:"member_ids"`
}

// GetProjectRequest reads a project on behalf of an actor.
type GetProjectRequest struct {
	ActorID   string `json:"actor_id"`
	ProjectID string `json:"project_id"`
}

// MemberRequest adds or removes a project member.
type MemberRequest struct {
	ActorID   string `json:"actor_id"`
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
}

// ProjectResponse carries a project or an error.
type ProjectResponse struct {
	Project *ProjectView `json:"project,omitempty"`
	Error   *apperr.Wire `json:"error,omitempty"`
}

// GetAccessRequest asks for the access facts of a project.
type GetAccessRequest struct {
	ProjectID string `json:"project_id"`
}

// AccessResponse carries the access facts of a project.
type AccessResponse struct {
	Access *domain.Access `json:"access,omitempty"`
	Error  *apperr.Wire   `json:"error,omitempty"`
}

// AdjustCountersRequest increments the counters of a project by the deltas.
type AdjustCountersRequest struct {
	ProjectID      string `json:"project_id"`
	TotalDelta     int    `json:"total_delta"`
	CompletedDelta int    `json:"completed_delta"`
}

// GetCountersRequest reads the counters of a project.
type GetCountersRequest struct {
	ProjectID string `json:"project_id"`
}

// CountersResponse carries the counters of a project.
type CountersResponse struct {
	Counters *domain.Counters `json:"counters,omitempty"`
	Error    *apperr.Wire     `json:"error,omitempty"`
}

// SetCountersRequest overwrites the counters of a project.
type SetCountersRequest struct {
	Counters domain.Counters `json:"counters"`
}

// AckResponse acknowledges a command.
type AckResponse struct {
	Error *apperr.Wire `json:"error,omitempty"`
}

package project

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-approval/domain/project"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ProjectPort defines the project operations other modules use.
type ProjectPort interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*ProjectView, error)
	GetProject(ctx context.Context, actorID, projectID string) (*ProjectView, error)
	AddMember(ctx context.Context, actorID, projectID, userID string) (*ProjectView, error)
	RemoveMember(ctx context.Context, actorID, projectID, userID string) (*ProjectView, error)
	GetAccess(ctx context.Context, projectID string) (*domain.Access, error)
	GetCounters(ctx context.Context, projectID string) (*domain.Counters, error)
	AdjustCounters(ctx context.Context, projectID string, totalDelta, completedDelta int) error
	SetCounters(ctx context.Context, c domain.Counters) error
}

// ProjectAdapter implements ProjectPort using the service container.
type ProjectAdapter struct {
	container mono.ServiceContainer
}

var _ ProjectPort = (*ProjectAdapter)(nil)

// NewProjectAdapter creates a new ProjectAdapter.
func NewProjectAdapter(container mono.ServiceContainer) *ProjectAdapter {
	if container == nil {
		panic("project adapter requires non-nil ServiceContainer")
	}
	return &ProjectAdapter{container: container}
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

func (a *ProjectAdapter) project(ctx context.Context, service string, req any) (*ProjectView, error) {
	var resp ProjectResponse
	if err := callService(ctx, a.container, service, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Project, nil
}

// CreateProject creates a project.
func (a *ProjectAdapter) CreateProject(ctx context.Context, req *CreateProjectRequest) (*ProjectView, error) {
	return a.project(ctx, "create-project", req)
}

// GetProject reads a project on behalf of actorID.
func (a *ProjectAdapter) GetProject(ctx context.Context, actorID, projectID string) (*ProjectView, error) {
	return a.project(ctx, "get-project", &GetProjectRequest{ActorID: actorID, ProjectID: projectID})
}

// AddMember adds userID to the project.
func (a *ProjectAdapter) AddMember(ctx context.Context, actorID, projectID, userID string) (*ProjectView, error) {
	return a.project(ctx, "add-member", &MemberRequest{ActorID: actorID, ProjectID: projectID, UserID: userID})
}

// RemoveMember removes userID from the project.
func (a *ProjectAdapter) RemoveMember(ctx context.Context, actorID, projectID, userID string) (*ProjectView, error) {
	return a.project(ctx, "remove-member", &MemberRequest{ActorID: actorID, ProjectID: projectID, UserID: userID})
}

// GetAccess returns the access facts of a project.
func (a *ProjectAdapter) GetAccess(ctx context.Context, projectID string) (*domain.Access, error) {
	var resp AccessResponse
	if err := callService(ctx, a.container, "get-project-access", &GetAccessRequest{ProjectID: projectID}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Access, nil
}

// GetCounters reads the project counters.
func (a *ProjectAdapter) GetCounters(ctx context.Context, projectID string) (*domain.Counters, error) {
	var resp CountersResponse
	if err := callService(ctx, a.container, "get-counters", &GetCountersRequest{ProjectID: projectID}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Counters, nil
}

// AdjustCounters increments the project counters.
func (a *ProjectAdapter) AdjustCounters(ctx context.Context, projectID string, totalDelta, completedDelta int) error {
	var resp AckResponse
	req := &AdjustCountersRequest{ProjectID: projectID, TotalDelta: totalDelta, CompletedDelta: completedDelta}
	if err := callService(ctx, a.container, "adjust-counters", req, &resp); err != nil {
		return err
	}
	return resp.Error.Err()
}

// SetCounters overwrites the project counters.
func (a *ProjectAdapter) SetCounters(ctx context.Context, c domain.Counters) error {
	var resp AckResponse
	if err := callService(ctx, a.container, "set-counters", &SetCountersRequest{Counters: c}, &resp); err != nil {
		return err
	}
	return resp.Error.Err()
}

package project

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/project"
	"github.com/example/task-approval/modules/auth"
	"github.com/example/task-approval/modules/cache"
	"github.com/example/task-approval/modules/database"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ProjectModule owns projects, membership and the task counters.
type ProjectModule struct {
	dbPlug  *database.PluginModule
	cache   cache.CacheService
	users   auth.UserDirectory
	service *ProjectService
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*ProjectModule)(nil)
	_ mono.ServiceProviderModule = (*ProjectModule)(nil)
	_ mono.DependentModule       = (*ProjectModule)(nil)
	_ mono.UsePluginModule       = (*ProjectModule)(nil)
	_ mono.HealthCheckableModule = (*ProjectModule)(nil)
)

// NewModule creates a new ProjectModule.
func NewModule() *ProjectModule {
	return &ProjectModule{}
}

// Name returns the module name.
func (m *ProjectModule) Name() string {
	return "project"
}

// Dependencies returns the modules this module depends on.
func (m *ProjectModule) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *ProjectModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.users = auth.NewAuthAdapter(container)
	}
}

// SetPlugin receives the database and, when configured, the cache plugin.
func (m *ProjectModule) SetPlugin(alias string, plugin mono.PluginModule) {
	switch alias {
	case "database":
		if p, ok := database.FromPlugin(plugin); ok {
			m.dbPlug = p
		}
	case "cache":
		if p, ok := plugin.(*cache.PluginModule); ok {
			m.cache = p.Port()
			log.Println("[project] Cache plugin injected")
		}
	}
}

// Start wires the service.
func (m *ProjectModule) Start(_ context.Context) error {
	if m.dbPlug == nil || m.dbPlug.DB() == nil {
		return fmt.Errorf("required plugin 'database' not registered")
	}
	if m.users == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.cache == nil {
		log.Println("[project] Warning: cache plugin not set, access lookups hit the database")
	}

	m.service = NewProjectService(NewProjectRepository(m.dbPlug.DB()), m.users, m.cache)
	log.Println("[project] Module started (depends on: auth)")
	return nil
}

// Stop shuts down the module.
func (m *ProjectModule) Stop(_ context.Context) error {
	log.Println("[project] Module stopped")
	return nil
}

// Health reports whether the service is ready.
func (m *ProjectModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"cache": m.cache != nil},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *ProjectModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-project", json.Unmarshal, json.Marshal, m.createProject,
	); err != nil {
		return fmt.Errorf("failed to register create-project service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-project", json.Unmarshal, json.Marshal, m.getProject,
	); err != nil {
		return fmt.Errorf("failed to register get-project service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "add-member", json.Unmarshal, json.Marshal, m.addMember,
	); err != nil {
		return fmt.Errorf("failed to register add-member service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "remove-member", json.Unmarshal, json.Marshal, m.removeMember,
	); err != nil {
		return fmt.Errorf("failed to register remove-member service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-project-access", json.Unmarshal, json.Marshal, m.getAccess,
	); err != nil {
		return fmt.Errorf("failed to register get-project-access service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-counters", json.Unmarshal, json.Marshal, m.getCounters,
	); err != nil {
		return fmt.Errorf("failed to register get-counters service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "adjust-counters", json.Unmarshal, json.Marshal, m.adjustCounters,
	); err != nil {
		return fmt.Errorf("failed to register adjust-counters service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "set-counters", json.Unmarshal, json.Marshal, m.setCounters,
	); err != nil {
		return fmt.Errorf("failed to register set-counters service: %w", err)
	}

	log.Printf("[project] Registered services: create-project, get-project, add-member, remove-member, get-project-access, get-counters, adjust-counters, set-counters")
	return nil
}

func (m *ProjectModule) createProject(ctx context.Context, req CreateProjectRequest, _ *mono.Msg) (ProjectResponse, error) {
	return projectReply("create-project")(m.service.Create(ctx, &req))
}

func (m *ProjectModule) getProject(ctx context.Context, req GetProjectRequest, _ *mono.Msg) (ProjectResponse, error) {
	return projectReply("get-project")(m.service.Get(ctx, req.ActorID, req.ProjectID))
}

func (m *ProjectModule) addMember(ctx context.Context, req MemberRequest, _ *mono.Msg) (ProjectResponse, error) {
	return projectReply("add-member")(m.service.AddMember(ctx, req.ActorID, req.ProjectID, req.UserID))
}

func (m *ProjectModule) removeMember(ctx context.Context, req MemberRequest, _ *mono.Msg) (ProjectResponse, error) {
	return projectReply("remove-member")(m.service.RemoveMember(ctx, req.ActorID, req.ProjectID, req.UserID))
}

func (m *ProjectModule) getAccess(ctx context.Context, req GetAccessRequest, _ *mono.Msg) (AccessResponse, error) {
	a, err := m.service.Access(ctx, req.ProjectID)
	if err != nil {
		logInternal("get-project-access", err)
		return AccessResponse{Error: apperr.ToWire(err)}, nil
	}
	return AccessResponse{Access: a}, nil
}

func (m *ProjectModule) getCounters(ctx context.Context, req GetCountersRequest, _ *mono.Msg) (CountersResponse, error) {
	c, err := m.service.Counters(ctx, req.ProjectID)
	if err != nil {
		logInternal("get-counters", err)
		return CountersResponse{Error: apperr.ToWire(err)}, nil
	}
	return CountersResponse{Counters: &c}, nil
}

func (m *ProjectModule) adjustCounters(ctx context.Context, req AdjustCountersRequest, _ *mono.Msg) (AckResponse, error) {
	err := m.service.AdjustCounters(ctx, req.ProjectID, req.TotalDelta, req.CompletedDelta)
	logInternal("adjust-counters", err)
	return AckResponse{Error: apperr.ToWire(err)}, nil
}

func (m *ProjectModule) setCounters(ctx context.Context, req SetCountersRequest, _ *mono.Msg) (AckResponse, error) {
	err := m.service.SetCounters(ctx, req.Counters)
	logInternal("set-counters", err)
	return AckResponse{Error: apperr.ToWire(err)}, nil
}

func projectReply(service string) func(*domain.Project, error) (ProjectResponse, error) {
	return func(p *domain.Project, err error) (ProjectResponse, error) {
		if err != nil {
			logInternal(service, err)
			return ProjectResponse{Error: apperr.ToWire(err)}, nil
		}
		return ProjectResponse{Project: NewProjectView(p)}, nil
	}
}

func logInternal(service string, err error) {
	if err != nil && apperr.KindOf(err) == apperr.KindInternal {
		log.Printf("[project] %s failed: %v", service, err)
	}
}

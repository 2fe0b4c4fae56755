package project

import (
	"context"
	"errors"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/example/task-approval/domain/access"
	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/project"
	"github.com/example/task-approval/domain/task"
	"github.com/example/task-approval/domain/user"
	"github.com/example/task-approval/modules/auth"
	"github.com/example/task-approval/modules/cache"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ProjectService manages projects, their membership and their task counters.
type ProjectService struct {
	repo    *ProjectRepository
	users   auth.UserDirectory
	cache   cache.CacheService
	sfGroup singleflight.Group // collapses concurrent access lookups
	now     func() time.Time
}

// NewProjectService creates a new ProjectService.
func NewProjectService(repo *ProjectRepository, users auth.UserDirectory, c cache.CacheService) *ProjectService {
	if c == nil {
		c = cache.NewNoopCacheService()
	}
	return &ProjectService{
		repo:  repo,
		users: users,
		cache: c,
		now:   time.Now,
	}
}

func accessCacheKey(projectID string) string {
	return "project-access:" + projectID
}

// Create stores a new project. Any registered user may create one; the head
// defaults to the actor and every referenced user must exist.
func (s *ProjectService) Create(ctx context.Context, req *CreateProjectRequest) (*domain.Project, error) {
	if _, err := s.actorProfile(ctx, req.ActorID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	start, err := task.ParseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if strings.TrimSpace(req.EndDate) != "" {
		e, err := task.ParseDate("endDate", req.EndDate)
		if err != nil {
			return nil, err
		}
		if e.Before(start) {
			return nil, apperr.Validation("endDate %s is before startDate %s",
				e.Format(task.DateLayout), start.Format(task.DateLayout))
		}
		end = &e
	}

	headID := req.HeadID
	if headID == "" {
		headID = req.ActorID
	}
	var memberIDs []string
	for _, id := range req.MemberIDs {
		if id != "" && id != headID && !slices.Contains(memberIDs, id) {
			memberIDs = append(memberIDs, id)
		}
	}
	if err := s.requireUsers(ctx, append([]string{headID}, memberIDs...)); err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.Project{
		ID:          uuid.New().String(),
		WorkspaceID: req.WorkspaceID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		HeadID:      headID,
		StartDate:   start,
		EndDate:     end,
		CreatedBy:   req.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, id := range memberIDs {
		p.Members = append(p.Members, domain.Member{ProjectID: p.ID, UserID: id, AddedBy: req.ActorID, CreatedAt: now})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("[project] Created project %s (head: %s, members: %d)", p.ID, headID, len(memberIDs))
	return p, nil
}

// Get returns a project visible to the actor.
func (s *ProjectService) Get(ctx context.Context, actorID, projectID string) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, p, access.ViewProject); err != nil {
		return nil, err
	}
	return p, nil
}

// AddMember makes userID a member of the project.
func (s *ProjectService) AddMember(ctx context.Context, actorID, projectID, userID string) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, p, access.ManageProject); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperr.Validation("userId is required")
	}
	if userID == p.HeadID {
		return nil, apperr.Validation("the project head is already a participant")
	}
	if err := s.requireUsers(ctx, []string{userID}); err != nil {
		return nil, err
	}

	if err := s.repo.AddMember(ctx, &domain.Member{
		ProjectID: projectID,
		UserID:    userID,
		AddedBy:   actorID,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, err
	}
	s.invalidateAccess(ctx, projectID)

	log.Printf("[project] Added member %s to project %s", userID, projectID)
	return s.repo.FindByID(ctx, projectID)
}

// RemoveMember drops userID from the project. Tasks already assigned to the
// user keep their assignee.
func (s *ProjectService) RemoveMember(ctx context.Context, actorID, projectID, userID string) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, p, access.ManageProject); err != nil {
		return nil, err
	}
	if userID == p.HeadID {
		return nil, apperr.Validation("the project head cannot be removed")
	}

	removed, err := s.repo.RemoveMember(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, apperr.NotFound("user %s is not a member of project %s", userID, projectID)
	}
	s.invalidateAccess(ctx, projectID)

	log.Printf("[project] Removed member %s from project %s", userID, projectID)
	return s.repo.FindByID(ctx, projectID)
}

// Access returns the head, members and window of a project using the
// cache-aside pattern.
func (s *ProjectService) Access(ctx context.Context, projectID string) (*domain.Access, error) {
	key := accessCacheKey(projectID)

	var cached domain.Access
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[project] Cache error for %s: %v", projectID, err)
	}
	if found {
		return &cached, nil
	}

	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		p, err := s.repo.FindByID(ctx, projectID)
		if err != nil {
			return nil, err
		}
		a := p.Access()
		return &a, nil
	})
	if err != nil {
		return nil, err
	}
	a := val.(*domain.Access)

	if err := s.cache.Set(ctx, key, a); err != nil {
		log.Printf("[project] Warning: failed to cache access for %s: %v", projectID, err)
	}
	return a, nil
}

// AdjustCounters applies incremental counter deltas.
func (s *ProjectService) AdjustCounters(ctx context.Context, projectID string, totalDelta, completedDelta int) error {
	return s.repo.AdjustCounters(ctx, projectID, totalDelta, completedDelta)
}

// Counters returns the stored counters.
func (s *ProjectService) Counters(ctx context.Context, projectID string) (domain.Counters, error) {
	return s.repo.Counters(ctx, projectID)
}

// SetCounters overwrites the counters with recomputed values.
func (s *ProjectService) SetCounters(ctx context.Context, c domain.Counters) error {
	if c.TotalTasks < 0 || c.CompletedTasks < 0 || c.CompletedTasks > c.TotalTasks {
		return apperr.Validation("invalid counters total=%d completed=%d", c.TotalTasks, c.CompletedTasks)
	}
	if err := s.repo.SetCounters(ctx, c); err != nil {
		return err
	}
	log.Printf("[project] Counters of %s set to total=%d completed=%d", c.ProjectID, c.TotalTasks, c.CompletedTasks)
	return nil
}

func (s *ProjectService) authorize(ctx context.Context, actorID string, p *domain.Project, op access.Operation) error {
	actor, err := s.actorProfile(ctx, actorID)
	if err != nil {
		return err
	}
	return access.Resolve(access.Facts{
		ActorID:        actor.ID,
		SystemRole:     actor.SystemRole,
		ProjectHead:    p.HeadID,
		ProjectMembers: p.MemberIDs(),
	}).Require(op)
}

func (s *ProjectService) actorProfile(ctx context.Context, actorID string) (*user.Profile, error) {
	if actorID == "" {
		return nil, apperr.Permission("authentication required")
	}
	actor, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Permission("unknown actor %s", actorID)
		}
		return nil, err
	}
	return actor, nil
}

func (s *ProjectService) requireUsers(ctx context.Context, ids []string) error {
	found, err := s.users.GetUsers(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !slices.ContainsFunc(found, func(p user.Profile) bool { return p.ID == id }) {
			return apperr.NotFound("user %s not found", id)
		}
	}
	return nil
}

func (s *ProjectService) invalidateAccess(ctx context.Context, projectID string) {
	if err := s.cache.Delete(ctx, accessCacheKey(projectID)); err != nil {
		log.Printf("[project] Warning: failed to invalidate access cache for %s: %v", projectID, err)
	}
}

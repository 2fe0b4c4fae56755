package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/task-approval/domain/access"
	"github.com/example/task-approval/domain/apperr"
	projectdomain "github.com/example/task-approval/domain/project"
	domain "github.com/example/task-approval/domain/task"
	"github.com/example/task-approval/domain/user"
	"github.com/example/task-approval/events"
	"github.com/example/task-approval/modules/auth"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// DefaultMaxUploadSize caps a single attachment when no limit is configured.
const DefaultMaxUploadSize = 10 << 20

// Service runs the task lifecycle. Each mutation resolves the actor's
// capabilities, validates input, writes the task with its audit row, then
// adjusts project counters and emits events. The last two steps are best
// effort: their failures are logged and never undo the write.
type Service struct {
	repo          *TaskRepository
	projects      ProjectDirectory
	users         auth.UserDirectory
	notifier      Notifier
	blobs         BlobStore
	logger        types.Logger
	now           func() time.Time
	maxUploadSize int64
}

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	Repo          *TaskRepository
	Projects      ProjectDirectory
	Users         auth.UserDirectory
	Notifier      Notifier
	Blobs         BlobStore
	Logger        types.Logger
	MaxUploadSize int64
}

// NewService creates a new task Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	return &Service{
		repo:          cfg.Repo,
		projects:      cfg.Projects,
		users:         cfg.Users,
		notifier:      cfg.Notifier,
		blobs:         cfg.Blobs,
		logger:        cfg.Logger,
		now:           func() time.Time { return time.Now().UTC() },
		maxUploadSize: cfg.MaxUploadSize,
	}
}

// target is a task loaded together with everything needed to authorize
// and validate a mutation of it.
type target struct {
	task   *domain.Task
	access *projectdomain.Access
	actor  *user.Profile
	caps   access.Capabilities
}

func (s *Service) actor(ctx context.Context, actorID string) (*user.Profile, error) {
	if actorID == "" {
		return nil, apperr.Permission("authentication required")
	}
	p, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Permission("unknown actor %s", actorID)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) load(ctx context.Context, actorID, taskID string, op access.Operation) (*target, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	a, err := s.projects.GetAccess(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}
	caps := access.Resolve(access.Facts{
		ActorID:        actor.ID,
		SystemRole:     actor.SystemRole,
		ProjectHead:    a.HeadID,
		ProjectMembers: a.MemberIDs,
		TaskAssignee:   t.AssigneeID,
		TaskCreator:    t.CreatorID,
	})
	if err := caps.Require(op); err != nil {
		return nil, err
	}
	return &target{task: t, access: a, actor: actor, caps: caps}, nil
}

func (s *Service) loadProject(ctx context.Context, actorID, projectID string, op access.Operation) (*projectdomain.Access, access.Capabilities, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, access.Capabilities{}, apperr.Validation("projectId is required")
	}
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, access.Capabilities{}, err
	}
	a, err := s.projects.GetAccess(ctx, projectID)
	if err != nil {
		return nil, access.Capabilities{}, err
	}
	caps := access.Resolve(access.Facts{
		ActorID:        actor.ID,
		SystemRole:     actor.SystemRole,
		ProjectHead:    a.HeadID,
		ProjectMembers: a.MemberIDs,
	})
	if err := caps.Require(op); err != nil {
		return nil, access.Capabilities{}, err
	}
	return a, caps, nil
}

// requireParticipant checks that assigneeID may hold tasks in the project.
func requireParticipant(a *projectdomain.Access, assigneeID string) error {
	if !a.IsParticipant(assigneeID) {
		return apperr.Permission("assignee %s is not the head or a member of project %s", assigneeID, a.ProjectID)
	}
	return nil
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("assignee %s not found", userID)
		}
		return err
	}
	return nil
}

// Create adds a task to a project in the to-do phase.
func (s *Service) Create(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error) {
	a, _, err := s.loadProject(ctx, req.Audit.ActorID, req.ProjectID, access.CreateTask)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	sched, err := domain.ValidateForProject(req.StartDate, req.DueDate, a.EndDate)
	if err != nil {
		return nil, err
	}
	if req.AssigneeID != "" {
		if err := requireParticipant(a, req.AssigneeID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	t := domain.NewTask(uuid.New().String(), req.ProjectID, req.Audit.ActorID, title,
		strings.TrimSpace(req.Description), priority, req.AssigneeID, sched, now)
	t.LastModifiedBy = req.Audit.ActorID
	if len(req.Attachments) > 0 {
		t.Attachments = append(t.Attachments, describeAttachments(req.Attachments, req.Audit.ActorID, now)...)
	}

	audit := domain.NewAudit(t, domain.ActionCreated, req.Audit, domain.Transition{To: t.Phase}, "", now)
	if err := s.repo.Create(ctx, t, audit); err != nil {
		return nil, err
	}
	s.logger.Info("Task created", "task_id", t.ID, "project_id", t.ProjectID, "actor_id", req.Audit.ActorID)

	s.adjustCounters(ctx, t, 1, 0)
	s.notify(ctx, t, req.Audit.ActorID, t.AssigneeID, events.NotificationTaskAssigned,
		fmt.Sprintf("You have been assigned the task %q", t.Title), nil)
	return t, nil
}

// UpdateStatus sets the execution status. Marking a task done sends it for
// approval; leaving done clears completion.
func (s *Service) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*domain.Task, error) {
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	tg, err := s.load(ctx, req.Audit.ActorID, req.TaskID, access.ChangeStatus)
	if err != nil {
		return nil, err
	}

	t := tg.task
	now := s.now()
	expected := t.Phase
	tr := t.SetStatus(status, req.Audit.ActorID, now)
	if err := s.write(ctx, t, expected, domain.ActionStatusChanged, req.Audit, tr, string(status), now); err != nil {
		return nil, err
	}

	s.adjustCounters(ctx, t, 0, tr.CompletedDelta())
	s.phaseChanged(ctx, t, tr, req.Audit.ActorID, now)
	if tr.To == domain.PhaseAwaitingApproval {
		s.notify(ctx, t, req.Audit.ActorID, tg.access.HeadID, events.NotificationTaskCompleted,
			fmt.Sprintf("Task %q was marked done and awaits your approval", t.Title), nil)
	}
	return t, nil
}

// Update changes the supplied fields. Dates are checked for start <= due
// only; the project end date is not enforced on this path.
func (s *Service) Update(ctx context.Context, req *UpdateTaskRequest) (*domain.Task, error) {
	tg, err := s.load(ctx, req.Audit.ActorID, req.TaskID, access.UpdateTask)
	if err != nil {
		return nil, err
	}
	t := tg.task

	var changed []string
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		t.Title = title
		changed = append(changed, "title")
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
		changed = append(changed, "description")
	}
	if req.Priority != nil {
		p, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		t.Priority = p
		changed = append(changed, "priority")
	}
	if req.StartDate != nil || req.DueDate != nil {
		start, due := t.StartDate, t.DueDate
		if req.StartDate != nil {
			if start, err = domain.ParseDate("startDate", *req.StartDate); err != nil {
				return nil, err
			}
			changed = append(changed, "startDate")
		}
		if req.DueDate != nil {
			if due, err = domain.ParseDate("dueDate", *req.DueDate); err != nil {
				return nil, err
			}
			changed = append(changed, "dueDate")
		}
		sched, err := domain.NewSchedule(start, due)
		if err != nil {
			return nil, err
		}
		t.Reschedule(sched)
	}
	previousAssignee := t.AssigneeID
	if req.AssigneeID != nil {
		if *req.AssigneeID != "" {
			if err := requireParticipant(tg.access, *req.AssigneeID); err != nil {
				return nil, err
			}
		}
		t.AssigneeID = *req.AssigneeID
		changed = append(changed, "assigneeId")
	}
	if len(changed) == 0 {
		return nil, apperr.Validation("no fields to update")
	}

	now := s.now()
	t.LastModifiedBy = req.Audit.ActorID
	t.UpdatedAt = now
	detail := strings.Join(changed, ",")
	if err := s.write(ctx, t, t.Phase, domain.ActionUpdated, req.Audit, domain.Transition{}, detail, now); err != nil {
		return nil, err
	}

	if t.AssigneeID != previousAssignee {
		s.notify(ctx, t, req.Audit.ActorID, t.AssigneeID, events.NotificationTaskAssigned,
			fmt.Sprintf("You have been assigned the task %q", t.Title), nil)
	}
	return t, nil
}

// Approve accepts a task pending approval.
func (s *Service) Approve(ctx context.Context, req *TaskActionRequest) (*domain.Task, error) {
	tg, err := s.load(ctx, req.Audit.ActorID, req.TaskID, access.ReviewTask)
	if err != nil {
		return nil, err
	}

	t := tg.task
	now := s.now()
	expected := t.Phase
	tr, err := t.Approve(req.Audit.ActorID, now)
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, t, expected, domain.ActionApproved, req.Audit, tr, "", now); err != nil {
		return nil, err
	}

	s.phaseChanged(ctx, t, tr, req.Audit.ActorID, now)
	s.notify(ctx, t, req.Audit.ActorID, t.AssigneeID, events.NotificationTaskApproved,
		fmt.Sprintf("Your task %q was approved", t.Title), nil)
	return t, nil
}

// Reject sends a pending task back to in-progress with a reason and a new
// date window, optionally to a different assignee.
func (s *Service) Reject(ctx context.Context, req *RejectTaskRequest) (*domain.Task, error) {
	tg, err := s.load(ctx, req.Audit.ActorID, req.TaskID, access.ReviewTask)
	if err != nil {
		return nil, err
	}
	t := tg.task

	if _, err := t.Phase.Reject(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, apperr.Validation("a rejection reason is required")
	}
	sched, err := domain.ValidateForProject(req.StartDate, req.DueDate, tg.access.EndDate)
	if err != nil {
		return nil, err
	}
	if req.ReassigneeID != "" {
		// Admins may hand the task to anyone outside the project, but the
		// user must exist.
		if tg.caps.Has(access.SystemAdmin) {
			if err := s.requireUser(ctx, req.ReassigneeID); err != nil {
				return nil, err
			}
		} else if err := requireParticipant(tg.access, req.ReassigneeID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	expected := t.Phase
	tr, err := t.Reject(req.Audit.ActorID, req.Reason, sched, req.ReassigneeID, now)
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, t, expected, domain.ActionRejected, req.Audit, tr, t.RejectionReason, now); err != nil {
		return nil, err
	}

	s.adjustCounters(ctx, t, 0, tr.CompletedDelta())
	s.phaseChanged(ctx, t, tr, req.Audit.ActorID, now)
	s.notify(ctx, t, req.Audit.ActorID, t.AssigneeID, events.NotificationTaskRejected,
		fmt.Sprintf("Task %q was rejected: %s", t.Title, t.RejectionReason),
		map[string]string{
			"reason":     t.RejectionReason,
			"start_date": t.StartDate.Format(domain.DateLayout),
			"due_date":   t.DueDate.Format(domain.DateLayout),
		})
	return t, nil
}

// ReassignApproved hands an approved task to a new assignee with a new
// date window and restarts it from to-do.
func (s *Service) ReassignApproved(ctx context.Context, req *ReassignTaskRequest) (*domain.Task, error) {
	tg, err := s.load(ctx, req.Audit.ActorID, req.TaskID, access.ReassignTask)
	if err != nil {
		return nil, err
	}
	t := tg.task

	if _, err := t.Phase.Reassign(); err != nil {
		return nil, err
	}
	if req.AssigneeID == "" {
		return nil, apperr.Validation("assigneeId is required")
	}
	if err := requireParticipant(tg.access, req.AssigneeID); err != nil {
		return nil, err
	}
	sched, err := domain.ValidateForProject(req.StartDate, req.DueDate, tg.access.EndDate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expected := t.Phase
	tr, err := t.Reassign(req.Audit.ActorID, req.AssigneeID, sched, now)
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, t, expected, domain.ActionReassigned, req.Audit, tr, req.AssigneeID, now); err != nil {
		return nil, err
	}

	s.adjustCounters(ctx, t, 0, tr.CompletedDelta())
	s.phaseChanged(ctx, t, tr, req.Audit.ActorID, now)
	s.notify(ctx, t, req.Audit.ActorID, t.AssigneeID, events.NotificationTaskReassigned,
		fmt.Sprintf("You have been assigned the task %q", t.Title),
		map[string]string{
			"start_date": t.StartDate.Format(domain.DateLayout),
			"due_date":   t.DueDate.Format(domain.DateLayout),
		})
	return t, nil
}

// Delete soft-deletes a task and removes it from the project counters.
func (s *Service) Delete(ctx context.Context, req *TaskActionRequest) error {
	tg, err := s.load(ctx, req.Audit.ActorID, req.TaskID, access.DeleteTask)
	if err != nil {
		return err
	}

	t := tg.task
	now := s.now()
	wasDone := t.Phase.IsDone()
	t.Deactivate(req.Audit.ActorID, now)
	if err := s.write(ctx, t, t.Phase, domain.ActionDeleted, req.Audit, domain.Transition{}, "", now); err != nil {
		return err
	}

	completedDelta := 0
	if wasDone {
		completedDelta = -1
	}
	s.adjustCounters(ctx, t, -1, completedDelta)
	s.notify(ctx, t, req.Audit.ActorID, t.AssigneeID, events.NotificationTaskDeleted,
		fmt.Sprintf("Task %q was deleted", t.Title), nil)
	return nil
}

// Get returns a task visible to the actor.
func (s *Service) Get(ctx context.Context, actorID, taskID string) (*domain.Task, error) {
	tg, err := s.load(ctx, actorID, taskID, access.ViewTask)
	if err != nil {
		return nil, err
	}
	return tg.task, nil
}

// AuditTrail returns the audit rows of a task visible to the actor.
func (s *Service) AuditTrail(ctx context.Context, actorID, taskID string) ([]domain.Audit, error) {
	if _, err := s.load(ctx, actorID, taskID, access.ViewTask); err != nil {
		return nil, err
	}
	return s.repo.AuditTrail(ctx, taskID)
}

// ListProjectTasks returns the active tasks of a project. Actors other than
// admins and the head see approved tasks only when assigned to them.
func (s *Service) ListProjectTasks(ctx context.Context, actorID, projectID string) ([]*domain.Task, error) {
	_, caps, err := s.loadProject(ctx, actorID, projectID, access.ViewProject)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if caps.Has(access.SystemAdmin | access.ProjectHead) {
		return tasks, nil
	}
	visible := tasks[:0]
	for _, t := range tasks {
		if t.Phase != domain.PhaseApproved || t.AssigneeID == actorID {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

// AssignableMembers lists the head and members of a project.
func (s *Service) AssignableMembers(ctx context.Context, actorID, projectID string) ([]AssignableMember, error) {
	a, _, err := s.loadProject(ctx, actorID, projectID, access.ViewProject)
	if err != nil {
		return nil, err
	}
	ids := append([]string{a.HeadID}, a.MemberIDs...)
	profiles, err := s.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	members := make([]AssignableMember, 0, len(profiles))
	for _, p := range profiles {
		role := "member"
		if p.ID == a.HeadID {
			role = "head"
		}
		members = append(members, AssignableMember{ID: p.ID, Email: p.Email, Name: p.Name, Role: role})
	}
	return members, nil
}

// UploadAttachments stores files and attaches them to a task. Blobs stored
// before a failure are removed again.
func (s *Service) UploadAttachments(ctx context.Context, req *UploadAttachmentsRequest) (*domain.Task, error) {
	if s.blobs == nil {
		return nil, apperr.Internal(nil, "attachment storage is not configured")
	}
	tg, err := s.load(ctx, req.Audit.ActorID, req.TaskID, access.ManageAttachments)
	if err != nil {
		return nil, err
	}
	if len(req.Files) == 0 {
		return nil, apperr.Validation("no files uploaded")
	}
	for _, f := range req.Files {
		if int64(len(f.Data)) > s.maxUploadSize {
			return nil, apperr.Validation("file %q exceeds the %d byte limit", f.Name, s.maxUploadSize)
		}
	}

	t := tg.task
	now := s.now()
	stored := make([]domain.Attachment, 0, len(req.Files))
	for _, f := range req.Files {
		id := newAttachmentID()
		name := sanitizeFilename(f.Name)
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		key := attachmentKey(t.ID, id, name)
		info, err := s.blobs.Put(ctx, key, f.Data, contentType)
		if err != nil {
			s.discardBlobs(stored)
			return nil, apperr.Internal(err, "failed to store attachment %q", name)
		}
		stored = append(stored, domain.Attachment{
			ID:          id,
			Name:        name,
			Size:        info.Size,
			ContentType: contentType,
			Digest:      info.Digest,
			Key:         key,
			UploadedBy:  req.Audit.ActorID,
			UploadedAt:  now,
		})
	}

	names := make([]string, 0, len(stored))
	for _, a := range stored {
		names = append(names, a.Name)
	}
	t.AddAttachments(req.Audit.ActorID, stored, now)
	if err := s.write(ctx, t, t.Phase, domain.ActionAttachmentAdded, req.Audit, domain.Transition{}, strings.Join(names, ","), now); err != nil {
		s.discardBlobs(stored)
		return nil, err
	}
	return t, nil
}

// DeleteAttachment removes the attachment at index from a task and then
// deletes its blob.
func (s *Service) DeleteAttachment(ctx context.Context, req *DeleteAttachmentRequest) (*domain.Task, error) {
	tg, err := s.load(ctx, req.Audit.ActorID, req.TaskID, access.ManageAttachments)
	if err != nil {
		return nil, err
	}

	t := tg.task
	now := s.now()
	removed, err := t.RemoveAttachment(req.Audit.ActorID, req.Index, now)
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, t, t.Phase, domain.ActionAttachmentRemoved, req.Audit, domain.Transition{}, removed.Name, now); err != nil {
		return nil, err
	}
	if s.blobs != nil && removed.Key != "" {
		if ownsBlob(t.ID, removed.Key) {
			s.discardBlobs([]domain.Attachment{removed})
		} else {
			s.logger.Warn("Attachment key outside task prefix, blob kept", "task_id", t.ID, "key", removed.Key)
		}
	}
	return t, nil
}

// write stores t and its audit row. Internal failures are wrapped so the
// caller sees a classified error.
func (s *Service) write(ctx context.Context, t *domain.Task, expected domain.Phase, action domain.Action,
	ac domain.AuditContext, tr domain.Transition, detail string, now time.Time) error {
	audit := domain.NewAudit(t, action, ac, tr, detail, now)
	err := s.repo.Update(ctx, t, expected, audit)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleTask):
		return err
	default:
		return apperr.Internal(err, "failed to save task")
	}
}

func (s *Service) adjustCounters(ctx context.Context, t *domain.Task, totalDelta, completedDelta int) {
	if totalDelta == 0 && completedDelta == 0 {
		return
	}
	if err := s.projects.AdjustCounters(ctx, t.ProjectID, totalDelta, completedDelta); err != nil {
		s.logger.Warn("Counter update failed, reconciliation will repair it",
			"task_id", t.ID, "project_id", t.ProjectID,
			"total_delta", totalDelta, "completed_delta", completedDelta, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, t *domain.Task, actorID, recipientID string,
	typ events.NotificationType, message string, extra map[string]string) {
	if s.notifier == nil || recipientID == "" || recipientID == actorID {
		return
	}
	ev := events.TaskNotificationEvent{
		RecipientID: recipientID,
		Type:        typ,
		Message:     message,
		TaskID:      t.ID,
		ProjectID:   t.ProjectID,
		ActorID:     actorID,
		Context:     extra,
		OccurredAt:  s.now(),
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish notification",
			"task_id", t.ID, "recipient_id", recipientID, "type", string(typ), "error", err)
	}
}

func (s *Service) phaseChanged(ctx context.Context, t *domain.Task, tr domain.Transition, actorID string, now time.Time) {
	if s.notifier == nil || tr.From == tr.To {
		return
	}
	ev := events.TaskPhaseChangedEvent{
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		From:      string(tr.From),
		To:        string(tr.To),
		ActorID:   actorID,
		ChangedAt: now,
	}
	if err := s.notifier.PhaseChanged(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish phase change", "task_id", t.ID, "error", err)
	}
}

func (s *Service) discardBlobs(files []domain.Attachment) {
	for _, f := range files {
		if err := s.blobs.Delete(f.Key); err != nil {
			s.logger.Warn("Failed to delete attachment blob", "key", f.Key, "error", err)
		}
	}
}

// Reconcile recomputes the counters of every project from the task rows
// and overwrites those that drifted.
func (s *Service) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	counts, err := s.repo.CountByProject(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to count tasks")
	}

	report := &ReconcileReport{Corrected: []string{}}
	for _, want := range counts {
		report.Checked++
		have, err := s.projects.GetCounters(ctx, want.ProjectID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			s.logger.Warn("Failed to read project counters", "project_id", want.ProjectID, "error", err)
			report.Failed = append(report.Failed, want.ProjectID)
			continue
		}
		if *have == want {
			continue
		}
		if err := s.projects.SetCounters(ctx, want); err != nil {
			s.logger.Warn("Failed to correct project counters", "project_id", want.ProjectID, "error", err)
			report.Failed = append(report.Failed, want.ProjectID)
			continue
		}
		s.logger.Info("Project counters corrected", "project_id", want.ProjectID,
			"total_was", have.TotalTasks, "total", want.TotalTasks,
			"completed_was", have.CompletedTasks, "completed", want.CompletedTasks)
		report.Corrected = append(report.Corrected, want.ProjectID)
	}
	return report, nil
}

// ReconcileAs runs Reconcile on behalf of an actor, who must be a system
// admin.
func (s *Service) ReconcileAs(ctx context.Context, actorID string) (*ReconcileReport, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.SystemRole.IsAdmin() {
		return nil, apperr.Permission("counter reconciliation requires a system admin")
	}
	return s.Reconcile(ctx)
}

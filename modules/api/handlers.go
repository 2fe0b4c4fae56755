package api

import (
	"io"
	"strconv"

	"github.com/example/task-approval/modules/auth"
	"github.com/example/task-approval/modules/notification"
	"github.com/example/task-approval/modules/project"
	"github.com/example/task-approval/modules/task"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth          auth.AuthPort
	projects      project.ProjectPort
	tasks         task.TaskPort
	notifications notification.NotificationPort
	uploader      task.AttachmentUploader
	maxUploadSize int64
}

// NewHandlers creates a new Handlers instance. uploader may be nil, which
// disables attachment uploads.
func NewHandlers(
	authPort auth.AuthPort,
	projects project.ProjectPort,
	tasks task.TaskPort,
	notifications notification.NotificationPort,
	uploader task.AttachmentUploader,
	maxUploadSize int64,
) *Handlers {
	return &Handlers{
		auth:          authPort,
		projects:      projects,
		tasks:         tasks,
		notifications: notifications,
		uploader:      uploader,
		maxUploadSize: maxUploadSize,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	profile, err := h.auth.Register(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	tokens, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(tokens)
}

// Refresh handles token refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req auth.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	tokens, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(tokens)
}

// CreateProject handles POST /projects.
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var body CreateProjectBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	p, err := h.projects.CreateProject(c.UserContext(), &project.CreateProjectRequest{
		ActorID:     actorID(c),
		WorkspaceID: body.WorkspaceID,
		Name:        body.Name,
		Description: body.Description,
		HeadID:      body.HeadID,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		MemberIDs:   body.MemberIDs,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GetProject handles GET /projects/:id.
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	p, err := h.projects.GetProject(c.UserContext(), actorID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// AddMember handles POST /projects/:id/members.
func (h *Handlers) AddMember(c *fiber.Ctx) error {
	var body AddMemberBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.UserID == "" {
		return badRequest(c, "user_id is required")
	}

	p, err := h.projects.AddMember(c.UserContext(), actorID(c), c.Params("id"), body.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// RemoveMember handles DELETE /projects/:id/members/:userId.
func (h *Handlers) RemoveMember(c *fiber.Ctx) error {
	p, err := h.projects.RemoveMember(c.UserContext(), actorID(c), c.Params("id"), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// ListProjectTasks handles GET /projects/:id/tasks.
func (h *Handlers) ListProjectTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListProjectTasks(c.UserContext(), actorID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"tasks": tasks, "count": len(tasks)})
}

// AssignableMembers handles GET /projects/:id/assignable-members.
func (h *Handlers) AssignableMembers(c *fiber.Ctx) error {
	members, err := h.tasks.AssignableMembers(c.UserContext(), actorID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := h.tasks.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		Audit:       auditContext(c),
		ProjectID:   body.ProjectID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		AssigneeID:  body.AssigneeID,
		StartDate:   body.StartDate,
		DueDate:     body.DueDate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// GetTask handles GET /tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	t, err := h.tasks.GetTask(c.UserContext(), actorID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// UpdateTask handles PATCH /tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		Audit:       auditContext(c),
		TaskID:      c.Params("id"),
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		StartDate:   body.StartDate,
		DueDate:     body.DueDate,
		AssigneeID:  body.AssigneeID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// UpdateStatus handles PATCH /tasks/:id/status.
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	var body StatusBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := h.tasks.UpdateStatus(c.UserContext(), &task.UpdateStatusRequest{
		Audit:  auditContext(c),
		TaskID: c.Params("id"),
		Status: body.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// ApproveTask handles POST /tasks/:id/approve.
func (h *Handlers) ApproveTask(c *fiber.Ctx) error {
	t, err := h.tasks.ApproveTask(c.UserContext(), &task.TaskActionRequest{
		Audit:  auditContext(c),
		TaskID: c.Params("id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// RejectTask handles POST /tasks/:id/reject.
func (h *Handlers) RejectTask(c *fiber.Ctx) error {
	var body RejectBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := h.tasks.RejectTask(c.UserContext(), &task.RejectTaskRequest{
		Audit:        auditContext(c),
		TaskID:       c.Params("id"),
		Reason:       body.Reason,
		StartDate:    body.StartDate,
		DueDate:      body.DueDate,
		ReassigneeID: body.ReassigneeID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// ReassignTask handles POST /tasks/:id/reassign.
func (h *Handlers) ReassignTask(c *fiber.Ctx) error {
	var body ReassignBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	t, err := h.tasks.ReassignTask(c.UserContext(), &task.ReassignTaskRequest{
		Audit:      auditContext(c),
		TaskID:     c.Params("id"),
		AssigneeID: body.AssigneeID,
		StartDate:  body.StartDate,
		DueDate:    body.DueDate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	msg, err := h.tasks.DeleteTask(c.UserContext(), &task.TaskActionRequest{
		Audit:  auditContext(c),
		TaskID: c.Params("id"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: msg})
}

// AuditTrail handles GET /tasks/:id/audit.
func (h *Handlers) AuditTrail(c *fiber.Ctx) error {
	entries, err := h.tasks.AuditTrail(c.UserContext(), actorID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// UploadAttachments handles multipart POST /tasks/:id/attachments with one
// or more parts named "files".
func (h *Handlers) UploadAttachments(c *fiber.Ctx) error {
	if h.uploader == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "unavailable",
			Message: "Attachment storage is not configured",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "Expected a multipart form")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return badRequest(c, "No files uploaded (use field name 'files')")
	}

	files := make([]task.UploadFile, 0, len(headers))
	for _, header := range headers {
		if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(ErrorResponse{
				Error:   "file_too_large",
				Message: "File " + header.Filename + " exceeds " + strconv.FormatInt(h.maxUploadSize, 10) + " bytes",
			})
		}
		f, err := header.Open()
		if err != nil {
			return badRequest(c, "Failed to open uploaded file")
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return badRequest(c, "Failed to read uploaded file")
		}
		files = append(files, task.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get(fiber.HeaderContentType),
			Data:        data,
		})
	}

	t, err := h.uploader.UploadAttachments(c.UserContext(), &task.UploadAttachmentsRequest{
		Audit:  auditContext(c),
		TaskID: c.Params("id"),
		Files:  files,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// DeleteAttachment handles DELETE /tasks/:id/attachments/:index.
func (h *Handlers) DeleteAttachment(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return badRequest(c, "Attachment index must be a number")
	}

	t, err := h.tasks.DeleteAttachment(c.UserContext(), &task.DeleteAttachmentRequest{
		Audit:  auditContext(c),
		TaskID: c.Params("id"),
		Index:  index,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// ListNotifications handles GET /notifications?unread=true&limit=20.
func (h *Handlers) ListNotifications(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	resp, err := h.notifications.List(c.UserContext(), &notification.ListRequest{
		RecipientID: actorID(c),
		UnreadOnly:  c.Query("unread") == "true",
		Limit:       limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// MarkNotificationRead handles POST /notifications/:id/read.
func (h *Handlers) MarkNotificationRead(c *fiber.Ctx) error {
	n, err := h.notifications.MarkRead(c.UserContext(), actorID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(n)
}

// Reconcile handles POST /admin/reconcile.
func (h *Handlers) Reconcile(c *fiber.Ctx) error {
	report, err := h.tasks.ReconcileCounters(c.UserContext(), actorID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/task-approval/modules/auth"
	"github.com/example/task-approval/modules/cache"
	"github.com/example/task-approval/modules/notification"
	"github.com/example/task-approval/modules/project"
	"github.com/example/task-approval/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config holds the HTTP server settings.
type Config struct {
	Port            int
	RateLimitMax    int // zero disables rate limiting
	RateLimitWindow time.Duration
	MaxUploadSize   int64
}

// APIModule is the HTTP API module.
type APIModule struct {
	config        Config
	app           *fiber.App
	authAdapter   auth.AuthPort
	projects      project.ProjectPort
	tasks         task.TaskPort
	notifications notification.NotificationPort
	uploader      task.AttachmentUploader
	storage       fiber.Storage
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.UsePluginModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule.
func NewModule(config Config) *APIModule {
	return &APIModule{config: config}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "project", "task", "notification"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "project":
		m.projects = project.NewProjectAdapter(container)
	case "task":
		m.tasks = task.NewTaskAdapter(container)
	case "notification":
		m.notifications = notification.NewNotificationAdapter(container)
	}
}

// SetPlugin receives the optional cache plugin, whose storage backs the
// rate limiter so limits hold across replicas.
func (m *APIModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != "cache" {
		return
	}
	if p, ok := plugin.(*cache.PluginModule); ok {
		m.storage = p.Storage()
	}
}

// SetAttachmentUploader wires the in-process upload path.
func (m *APIModule) SetAttachmentUploader(uploader task.AttachmentUploader) {
	m.uploader = uploader
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authAdapter == nil || m.projects == nil || m.tasks == nil || m.notifications == nil {
		return fmt.Errorf("auth, project, task and notification dependencies must be set")
	}
	if m.uploader == nil {
		log.Println("[api] Warning: no attachment uploader set, uploads are disabled")
	}

	handlers := NewHandlers(m.authAdapter, m.projects, m.tasks, m.notifications, m.uploader, m.config.MaxUploadSize)
	m.app = NewApp(m.config, handlers, m.authAdapter, m.storage)

	addr := fmt.Sprintf(":%d", m.config.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":          m.config.Port,
			"uploads":       m.uploader != nil,
			"shared_limits": m.storage != nil,
		},
	}
}

// NewApp builds the Fiber application with middleware and routes. storage
// may be nil, in which case rate limits are kept in memory.
func NewApp(config Config, handlers *Handlers, authPort auth.AuthPort, storage fiber.Storage) *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if config.MaxUploadSize > 0 {
		bodyLimit = int(config.MaxUploadSize)*4 + 1024*1024
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		BodyLimit:             bodyLimit,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	}))
	app.Use(cors.New())
	if config.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        config.RateLimitMax,
			Expiration: config.RateLimitWindow,
			Storage:    storage,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
					Error:   "rate_limit_exceeded",
					Message: "Too many requests, please retry later",
				})
			},
		}))
	}

	setupRoutes(app, handlers, authPort)
	return app
}

// setupRoutes configures all API routes.
func setupRoutes(app *fiber.App, h *Handlers, authPort auth.AuthPort) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	v1 := app.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/refresh", h.Refresh)

	protected := v1.Group("", AuthMiddleware(authPort))

	projects := protected.Group("/projects")
	projects.Post("/", h.CreateProject)
	projects.Get("/:id", h.GetProject)
	projects.Post("/:id/members", h.AddMember)
	projects.Delete("/:id/members/:userId", h.RemoveMember)
	projects.Get("/:id/tasks", h.ListProjectTasks)
	projects.Get("/:id/assignable-members", h.AssignableMembers)

	tasks := protected.Group("/tasks")
	tasks.Post("/", h.CreateTask)
	tasks.Get("/:id", h.GetTask)
	tasks.Patch("/:id", h.UpdateTask)
	tasks.Patch("/:id/status", h.UpdateStatus)
	tasks.Post("/:id/approve", h.ApproveTask)
	tasks.Post("/:id/reject", h.RejectTask)
	tasks.Post("/:id/reassign", h.ReassignTask)
	tasks.Delete("/:id", h.DeleteTask)
	tasks.Get("/:id/audit", h.AuditTrail)
	tasks.Post("/:id/attachments", h.UploadAttachments)
	tasks.Delete("/:id/attachments/:index", h.DeleteAttachment)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.ListNotifications)
	notifications.Post("/:id/read", h.MarkNotificationRead)

	protected.Post("/admin/reconcile", h.Reconcile)
}

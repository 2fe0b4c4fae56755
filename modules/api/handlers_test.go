package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/user"
	"github.com/example/task-approval/modules/notification"
	"github.com/example/task-approval/modules/project"
	"github.com/example/task-approval/modules/task"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPorts struct {
	auth          *mockAuthPort
	projects      *mockProjectPort
	tasks         *mockTaskPort
	notifications *mockNotificationPort
	uploader      *mockUploader
}

func newTestPorts() *testPorts {
	return &testPorts{
		auth: &mockAuthPort{
			validateTokenFunc: func(ctx context.Context, token string) (*domain.Claims, error) {
				if token != "good" {
					return nil, apperr.Permission("invalid token")
				}
				return &domain.Claims{UserID: "user-1", Email: "user@example.com"}, nil
			},
		},
		projects:      &mockProjectPort{},
		tasks:         &mockTaskPort{},
		notifications: &mockNotificationPort{},
		uploader:      &mockUploader{},
	}
}

func (p *testPorts) app(cfg Config) *fiber.App {
	h := NewHandlers(p.auth, p.projects, p.tasks, p.notifications, p.uploader, cfg.MaxUploadSize)
	return NewApp(cfg, h, p.auth, nil)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind   apperr.Kind
		status int
		code   string
	}{
		{apperr.KindValidation, 400, "validation_error"},
		{apperr.KindPermission, 403, "forbidden"},
		{apperr.KindNotFound, 404, "not_found"},
		{apperr.KindPrecondition, 409, "precondition_failed"},
		{apperr.KindConflict, 409, "conflict"},
		{apperr.KindInternal, 500, "server_error"},
		{"", 500, "server_error"},
	}
	for _, tt := range tests {
		status, code := statusFor(tt.kind)
		assert.Equal(t, tt.status, status, "kind %q", tt.kind)
		assert.Equal(t, tt.code, code, "kind %q", tt.kind)
	}
}

func TestHandlers_ErrorKindsReachTheClient(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperr.Validation("startDate is required"), 400, "validation_error"},
		{"permission", apperr.Permission("not allowed to review task"), 403, "forbidden"},
		{"not found", apperr.NotFound("task not found"), 404, "not_found"},
		{"precondition", apperr.Precondition("task is not pending approval"), 409, "precondition_failed"},
		{"conflict", apperr.Conflict("task was modified concurrently"), 409, "conflict"},
		{"transport", io.ErrUnexpectedEOF, 500, "server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ports := newTestPorts()
			ports.tasks.approveFunc = func(ctx context.Context, req *task.TaskActionRequest) (*task.TaskView, error) {
				return nil, tt.err
			}
			resp, body := doJSON(t, ports.app(Config{}), "POST", "/api/v1/tasks/t1/approve", nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestHandlers_RoutesRequireToken(t *testing.T) {
	app := newTestPorts().app(Config{})
	req := httptest.NewRequest("GET", "/api/v1/tasks/t1", nil)
	req.Header.Set("Authorization", "Bearer bad")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandlers_CreateTask(t *testing.T) {
	ports := newTestPorts()
	var got *task.CreateTaskRequest
	ports.tasks.createFunc = func(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskView, error) {
		got = req
		return &task.TaskView{ID: "t1", Title: req.Title, DurationDays: 1}, nil
	}

	resp, body := doJSON(t, ports.app(Config{}), "POST", "/api/v1/tasks", CreateTaskBody{
		ProjectID: "p1", Title: "Draft", AssigneeID: "user-2", StartDate: "2024-03-01", DueDate: "2024-03-01",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "t1", body["id"])

	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.Audit.ActorID)
	assert.NotEmpty(t, got.Audit.RequestID)
	assert.Equal(t, "p1", got.ProjectID)
	assert.Equal(t, "user-2", got.AssigneeID)
}

func TestHandlers_UpdateTaskPassesOnlySuppliedFields(t *testing.T) {
	ports := newTestPorts()
	var got *task.UpdateTaskRequest
	ports.tasks.updateFunc = func(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskView, error) {
		got = req
		return &task.TaskView{ID: req.TaskID}, nil
	}

	resp, _ := doJSON(t, ports.app(Config{}), "PATCH", "/api/v1/tasks/t9", map[string]any{"title": "New", "assignee_id": ""})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, got)
	assert.Equal(t, "t9", got.TaskID)
	require.NotNil(t, got.Title)
	assert.Equal(t, "New", *got.Title)
	require.NotNil(t, got.AssigneeID)
	assert.Empty(t, *got.AssigneeID)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.DueDate)
}

func TestHandlers_StatusRejectAndDelete(t *testing.T) {
	ports := newTestPorts()
	ports.tasks.statusFunc = func(ctx context.Context, req *task.UpdateStatusRequest) (*task.TaskView, error) {
		return &task.TaskView{ID: req.TaskID, Status: "done", ApprovalStatus: "pending-approval"}, nil
	}
	ports.tasks.rejectFunc = func(ctx context.Context, req *task.RejectTaskRequest) (*task.TaskView, error) {
		return &task.TaskView{ID: req.TaskID, RejectionReason: req.Reason, StartDate: req.StartDate, DueDate: req.DueDate}, nil
	}
	ports.tasks.deleteFunc = func(ctx context.Context, req *task.TaskActionRequest) (string, error) {
		return "task deleted", nil
	}
	app := ports.app(Config{})

	resp, body := doJSON(t, app, "PATCH", "/api/v1/tasks/t1/status", StatusBody{Status: "done"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending-approval", body["approval_status"])

	resp, body = doJSON(t, app, "POST", "/api/v1/tasks/t1/reject", RejectBody{
		Reason: "needs more detail", StartDate: "2024-03-05", DueDate: "2024-03-10",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "needs more detail", body["rejection_reason"])
	assert.Equal(t, "2024-03-10", body["due_date"])

	resp, body = doJSON(t, app, "DELETE", "/api/v1/tasks/t1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "task deleted", body["message"])
}

func TestHandlers_ListProjectTasks(t *testing.T) {
	ports := newTestPorts()
	ports.tasks.listFunc = func(ctx context.Context, actorID, projectID string) ([]*task.TaskView, error) {
		assert.Equal(t, "user-1", actorID)
		assert.Equal(t, "p1", projectID)
		return []*task.TaskView{{ID: "a"}, {ID: "b"}}, nil
	}

	resp, body := doJSON(t, ports.app(Config{}), "GET", "/api/v1/projects/p1/tasks", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["count"])
}

func TestHandlers_CreateProjectUsesActor(t *testing.T) {
	ports := newTestPorts()
	ports.projects.createFunc = func(ctx context.Context, req *project.CreateProjectRequest) (*project.ProjectView, error) {
		return &project.ProjectView{ID: "p1", Name: req.Name, HeadID: req.ActorID}, nil
	}

	resp, body := doJSON(t, ports.app(Config{}), "POST", "/api/v1/projects", CreateProjectBody{Name: "Launch", StartDate: "2024-03-01"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "user-1", body["head_id"])
}

func TestHandlers_LoginFailureIsUnauthorized(t *testing.T) {
	ports := newTestPorts()
	ports.auth.loginFunc = func(ctx context.Context, email, password string) (*domain.TokenPair, error) {
		return nil, apperr.Permission("invalid email or password")
	}

	resp, body := doJSON(t, ports.app(Config{}), "POST", "/api/v1/auth/login", map[string]string{"email": "a@b.c", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", body["error"])

	resp, _ = doJSON(t, ports.app(Config{}), "POST", "/api/v1/auth/login", map[string]string{"email": "a@b.c"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlers_DeleteAttachmentIndex(t *testing.T) {
	ports := newTestPorts()
	ports.tasks.deleteAttachFunc = func(ctx context.Context, req *task.DeleteAttachmentRequest) (*task.TaskView, error) {
		assert.Equal(t, 2, req.Index)
		return &task.TaskView{ID: req.TaskID}, nil
	}
	app := ports.app(Config{})

	resp, _ := doJSON(t, app, "DELETE", "/api/v1/tasks/t1/attachments/2", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", "/api/v1/tasks/t1/attachments/first", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func multipartRequest(t *testing.T, path string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer good")
	return req
}

func TestHandlers_UploadAttachments(t *testing.T) {
	ports := newTestPorts()
	var got *task.UploadAttachmentsRequest
	ports.uploader.uploadFunc = func(ctx context.Context, req *task.UploadAttachmentsRequest) (*task.TaskView, error) {
		got = req
		return &task.TaskView{ID: req.TaskID}, nil
	}
	app := ports.app(Config{MaxUploadSize: 16})

	resp, err := app.Test(multipartRequest(t, "/api/v1/tasks/t1/attachments", map[string][]byte{"a.txt": []byte("hello")}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, got)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "a.txt", got.Files[0].Name)
	assert.Equal(t, []byte("hello"), got.Files[0].Data)
	assert.Equal(t, "user-1", got.Audit.ActorID)

	resp, err = app.Test(multipartRequest(t, "/api/v1/tasks/t1/attachments", map[string][]byte{"big.bin": make([]byte, 64)}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHandlers_UploadWithoutStorage(t *testing.T) {
	ports := newTestPorts()
	h := NewHandlers(ports.auth, ports.projects, ports.tasks, ports.notifications, nil, 0)
	app := NewApp(Config{}, h, ports.auth, nil)

	resp, err := app.Test(multipartRequest(t, "/api/v1/tasks/t1/attachments", map[string][]byte{"a.txt": []byte("x")}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandlers_ListNotifications(t *testing.T) {
	ports := newTestPorts()
	ports.notifications.listFunc = func(ctx context.Context, req *notification.ListRequest) (*notification.ListResponse, error) {
		assert.Equal(t, "user-1", req.RecipientID)
		assert.True(t, req.UnreadOnly)
		assert.Equal(t, 5, req.Limit)
		return &notification.ListResponse{
			Notifications: []notification.NotificationView{{ID: "n1", Type: "task_assigned"}},
			Unread:        1,
		}, nil
	}

	resp, body := doJSON(t, ports.app(Config{}), "GET", "/api/v1/notifications?unread=true&limit=5", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["unread"])
}

func TestHandlers_RateLimit(t *testing.T) {
	ports := newTestPorts()
	app := ports.app(Config{RateLimitMax: 2})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

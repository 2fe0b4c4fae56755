package api

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse acknowledges an operation without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateProjectBody is the body of POST /projects.
type CreateProjectBody struct {
	WorkspaceID string   `json:"workspace_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HeadID      string   `json:"head_id"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	MemberIDs   []string `json:"member_ids"`
}

// AddMemberBody is the body of POST /projects/:id/members.
type AddMemberBody struct {
	UserID string `json:"user_id"`
}

// CreateTaskBody is the body of POST /tasks.
type CreateTaskBody struct {
	ProjectID   string `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assignee_id"`
	StartDate   string `json:"start_date"`
	DueDate     string `json:"due_date"`
}

// UpdateTaskBody is the body of PATCH /tasks/:id. Absent fields are left
// unchanged.
type UpdateTaskBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	StartDate   *string `json:"start_date"`
	DueDate     *string `json:"due_date"`
	AssigneeID  *string `json:"assignee_id"`
}

// StatusBody is the body of PATCH /tasks/:id/status.
type StatusBody struct {
	Status string `json:"status"`
}

// RejectBody is the body of POST /tasks/:id/reject.
type RejectBody struct {
	Reason       string `json:"reason"`
	StartDate    string `json:"start_date"`
	DueDate      string `json:"due_date"`
	ReassigneeID string `json:"reassignee_id"`
}

// ReassignBody is the body of POST /tasks/:id/reassign.
type ReassignBody struct {
	AssigneeID string `json:"assignee_id"`
	StartDate  string `json:"start_date"`
	DueDate    string `json:"due_date"`
}

package auth

import (
	"time"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/user"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RegisterResponse represents a user registration response.
type RegisterResponse struct {
	ID         string            `json:"id"`
	Email      string            `json:"email"`
	Name       string            `json:"name"`
	SystemRole domain.SystemRole `json:"system_role"`
	CreatedAt  time.Time         `json:"created_at"`
	Error      *apperr.Wire      `json:"error,omitempty"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse carries a token pair.
type TokenResponse struct {
	domain.TokenPair
	Error *apperr.Wire `json:"error,omitempty"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse represents a get user response.
type GetUserResponse struct {
	User  domain.Profile `json:"user"`
	Error *apperr.Wire   `json:"error,omitempty"`
}

// GetUsersRequest asks for several users at once.
type GetUsersRequest struct {
	UserIDs []string `json:"user_ids"`
}

// GetUsersResponse lists the users found; unknown ids are omitted.
type GetUsersResponse struct {
	Users []domain.Profile `json:"users"`
	Error *apperr.Wire     `json:"error,omitempty"`
}

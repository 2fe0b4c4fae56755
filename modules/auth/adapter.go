package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/task-approval/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// UserDirectory is the read-only view of users other modules depend on.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*domain.Profile, error)
	GetUsers(ctx context.Context, userIDs []string) ([]domain.Profile, error)
}

// AuthPort defines the authentication operations used by the HTTP layer.
type AuthPort interface {
	UserDirectory
	Register(ctx context.Context, req *RegisterRequest) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	if container == nil {
		panic("auth adapter requires non-nil ServiceContainer")
	}
	return &AuthAdapter{container: container}
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

// Register creates an account.
func (a *AuthAdapter) Register(ctx context.Context, req *RegisterRequest) (*domain.Profile, error) {
	var resp RegisterResponse
	if err := callService(ctx, a.container, "register", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return &domain.Profile{
		ID:         resp.ID,
		Email:      resp.Email,
		Name:       resp.Name,
		SystemRole: resp.SystemRole,
	}, nil
}

// Login exchanges credentials for a token pair.
func (a *AuthAdapter) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	var resp TokenResponse
	if err := callService(ctx, a.container, "login", &LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return &resp.TokenPair, nil
}

// Refresh exchanges a refresh token for a new pair.
func (a *AuthAdapter) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	var resp TokenResponse
	if err := callService(ctx, a.container, "refresh-token", &RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return &resp.TokenPair, nil
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	var resp ValidateTokenResponse
	if err := callService(ctx, a.container, "validate-token", &ValidateTokenRequest{Token: token}, &resp); err != nil {
		return nil, err
	}
	if !resp.Valid {
		return nil, errors.New(resp.Error)
	}
	return &domain.Claims{UserID: resp.UserID, Email: resp.Email}, nil
}

// GetUser retrieves a user profile.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*domain.Profile, error) {
	var resp GetUserResponse
	if err := callService(ctx, a.container, "get-user", &GetUserRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// GetUsers retrieves several user profiles.
func (a *AuthAdapter) GetUsers(ctx context.Context, userIDs []string) ([]domain.Profile, error) {
	var resp GetUsersResponse
	if err := callService(ctx, a.container, "get-users", &GetUsersRequest{UserIDs: userIDs}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/user"
	"github.com/example/task-approval/modules/database"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Config holds the auth module settings.
type Config struct {
	JWT           JWTConfig
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
}

// AuthModule owns the user directory and token issuance.
type AuthModule struct {
	config  Config
	dbPlug  *database.PluginModule
	service *AuthService
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*AuthModule)(nil)
	_ mono.ServiceProviderModule = (*AuthModule)(nil)
	_ mono.UsePluginModule       = (*AuthModule)(nil)
	_ mono.HealthCheckableModule = (*AuthModule)(nil)
)

// NewModule creates a new AuthModule.
func NewModule(config Config) *AuthModule {
	return &AuthModule{config: config}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// SetPlugin receives the database plugin.
func (m *AuthModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != "database" {
		return
	}
	if p, ok := database.FromPlugin(plugin); ok {
		m.dbPlug = p
	}
}

// Start wires the service and seeds the admin account.
func (m *AuthModule) Start(ctx context.Context) error {
	if m.dbPlug == nil || m.dbPlug.DB() == nil {
		return fmt.Errorf("required plugin 'database' not registered")
	}

	m.service = NewAuthService(
		NewUserRepository(m.dbPlug.DB()),
		NewPasswordHasher(m.config.BcryptCost),
		NewJWTManager(m.config.JWT),
	)

	created, err := m.service.EnsureAdmin(ctx, m.config.AdminEmail, m.config.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	if created {
		log.Printf("[auth] Seeded admin account %s", m.config.AdminEmail)
	}

	log.Println("[auth] Module started")
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	log.Println("[auth] Module stopped")
	return nil
}

// Health reports whether the service is ready.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "refresh-token", json.Unmarshal, json.Marshal, m.handleRefresh,
	); err != nil {
		return fmt.Errorf("failed to register refresh-token service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-users", json.Unmarshal, json.Marshal, m.handleGetUsers,
	); err != nil {
		return fmt.Errorf("failed to register get-users service: %w", err)
	}

	log.Printf("[auth] Registered services: register, login, refresh-token, validate-token, get-user, get-users")
	return nil
}

// Failures travel in the reply body so the caller can recover their kind.

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Email, req.Name, req.Password, domain.RoleUser)
	if err != nil {
		logInternal("register", err)
		return RegisterResponse{Error: apperr.ToWire(err)}, nil
	}
	return RegisterResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		SystemRole: user.SystemRole,
		CreatedAt:  user.CreatedAt,
	}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (TokenResponse, error) {
	tokens, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		logInternal("login", err)
		return TokenResponse{Error: apperr.ToWire(err)}, nil
	}
	return TokenResponse{TokenPair: *tokens}, nil
}

func (m *AuthModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (TokenResponse, error) {
	tokens, err := m.service.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		logInternal("refresh-token", err)
		return TokenResponse{Error: apperr.ToWire(err)}, nil
	}
	return TokenResponse{TokenPair: *tokens}, nil
}

func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		return ValidateTokenResponse{Valid: false, Error: errMsg}, nil
	}
	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		logInternal("get-user", err)
		return GetUserResponse{Error: apperr.ToWire(err)}, nil
	}
	return GetUserResponse{User: user.Profile()}, nil
}

func (m *AuthModule) handleGetUsers(ctx context.Context, req GetUsersRequest, _ *mono.Msg) (GetUsersResponse, error) {
	users, err := m.service.GetUsers(ctx, req.UserIDs)
	if err != nil {
		logInternal("get-users", err)
		return GetUsersResponse{Error: apperr.ToWire(err)}, nil
	}
	profiles := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return GetUsersResponse{Users: profiles}, nil
}

func logInternal(service string, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		log.Printf("[auth] %s failed: %v", service, err)
	}
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/example/task-approval/domain/apperr"
	domain "github.com/example/task-approval/domain/user"
	"github.com/example/task-approval/modules/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewAuthService(NewUserRepository(db), NewPasswordHasher(bcrypt.MinCost), NewJWTManager(testJWTConfig()))
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	user, err := svc.Register(ctx, "  Alice@Example.com ", "Alice", "password123", "")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.SystemRole)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = svc.Register(ctx, "alice@example.com", "Again", "password123", "")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		role     domain.SystemRole
		wantErr  error
	}{
		{name: "invalid email", email: "not-an-email", password: "password123", wantErr: ErrInvalidEmail},
		{name: "short password", email: "a@example.com", password: "short", wantErr: ErrWeakPassword},
		{name: "long password", email: "a@example.com", password: string(make([]byte, 73)), wantErr: ErrPasswordTooLong},
		{name: "unknown role", email: "a@example.com", password: "password123", role: "owner", wantErr: apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, "", tt.password, tt.role)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_RegisterDefaultsName(t *testing.T) {
	svc := newTestService(t)
	user, err := svc.Register(context.Background(), "bob@example.com", "  ", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Name)
}

func TestAuthService_LoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	user, err := svc.Register(ctx, "carol@example.com", "Carol", "password123", "")
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, "CAROL@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, int64(900), tokens.ExpiresIn)

	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	refreshed, err := svc.RefreshTokens(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshTokens(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrPermission)

	_, err = svc.ValidateToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, "dave@example.com", "Dave", "password123", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "dave@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.EnsureAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureAdmin(ctx, "Admin@Example.com", "adminpass123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin@example.com", "adminpass123")
	require.NoError(t, err)
	assert.False(t, created)

	tokens, err := svc.Login(ctx, "admin@example.com", "adminpass123")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	admin, err := svc.GetUser(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.SystemRole)
}

func TestAuthService_GetUsers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	zoe, err := svc.Register(ctx, "zoe@example.com", "Zoe", "password123", "")
	require.NoError(t, err)
	amy, err := svc.Register(ctx, "amy@example.com", "Amy", "password123", "")
	require.NoError(t, err)

	users, err := svc.GetUsers(ctx, []string{zoe.ID, "missing", amy.ID})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Amy", users[0].Name)
	assert.Equal(t, "Zoe", users[1].Name)

	users, err = svc.GetUsers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = svc.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAuthService_ExpiredAccessToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	issued := time.Now().Add(-time.Hour)
	svc.jwt.now = func() time.Time { return issued }

	_, err := svc.Register(ctx, "erin@example.com", "Erin", "password123", "")
	require.NoError(t, err)
	tokens, err := svc.Login(ctx, "erin@example.com", "password123")
	require.NoError(t, err)

	svc.jwt.now = time.Now
	_, err = svc.ValidateToken(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

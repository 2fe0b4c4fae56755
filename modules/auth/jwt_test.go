package auth

import (
	"errors"
	"testing"
	"time"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:            "test-secret-key",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		Issuer:               "test-issuer",
	}
}

func TestJWTManager_IssueAndVerify(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	access, refresh, err := manager.Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("Issue() returned an empty token")
	}
	if access == refresh {
		t.Error("access and refresh tokens should differ")
	}

	claims, err := manager.Verify(access, tokenAccess)
	if err != nil {
		t.Fatalf("Verify(access) error = %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("claims.UserID = %v, want %v", claims.UserID, "user-123")
	}
	if claims.Email != "test@example.com" {
		t.Errorf("claims.Email = %v, want %v", claims.Email, "test@example.com")
	}
	if claims.Issuer != "test-issuer" {
		t.Errorf("claims.Issuer = %v, want %v", claims.Issuer, "test-issuer")
	}

	claims, err = manager.Verify(refresh, tokenRefresh)
	if err != nil {
		t.Fatalf("Verify(refresh) error = %v", err)
	}
	if claims.TokenType != tokenRefresh {
		t.Errorf("claims.TokenType = %v, want %v", claims.TokenType, tokenRefresh)
	}
}

func TestJWTManager_WrongTokenType(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	access, refresh, err := manager.Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := manager.Verify(refresh, tokenAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(refresh as access) error = %v, want %v", err, ErrInvalidToken)
	}
	if _, err := manager.Verify(access, tokenRefresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(access as refresh) error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	issuedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }

	access, _, err := manager.Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	manager.now = func() time.Time { return issuedAt.Add(16 * time.Minute) }
	if _, err := manager.Verify(access, tokenAccess); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want %v", err, ErrExpiredToken)
	}
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	otherSecret := testJWTConfig()
	otherSecret.SecretKey = "another-secret"
	forged, _, err := NewJWTManager(otherSecret).Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	otherIssuer := testJWTConfig()
	otherIssuer.Issuer = "someone-else"
	foreign, _, err := NewJWTManager(otherIssuer).Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: forged},
		{name: "wrong issuer", token: foreign},
		{name: "garbage", token: "not.a.token"},
		{name: "empty", token: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.Verify(tt.token, tokenAccess); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestJWTManager_DefaultRefreshDuration(t *testing.T) {
	cfg := testJWTConfig()
	cfg.RefreshTokenDuration = 0
	manager := NewJWTManager(cfg)

	if manager.config.RefreshTokenDuration != 7*24*time.Hour {
		t.Errorf("RefreshTokenDuration = %v, want 168h", manager.config.RefreshTokenDuration)
	}
	if got := manager.AccessTokenSeconds(); got != 900 {
		t.Errorf("AccessTokenSeconds() = %d, want 900", got)
	}
}

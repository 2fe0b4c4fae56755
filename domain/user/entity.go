package user

import (
	"time"
)

// SystemRole is a deployment-wide role, independent of any project.
type SystemRole string

const (
	RoleUser       SystemRole = "user"
	RoleAdmin      SystemRole = "admin"
	RoleSuperAdmin SystemRole = "super_admin"
)

// IsValid reports whether r is a known role.
func (r SystemRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r bypasses project-level checks.
func (r SystemRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User represents an account in the user directory.
type User struct {
	ID           string     `gorm:"primaryKey;type:text"`
	Email        string     `gorm:"uniqueIndex;not null;type:text"`
	Name         string     `gorm:"type:text"`
	PasswordHash string     `gorm:"not null;type:text"`
	SystemRole   SystemRole `gorm:"type:text;not null;default:user"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// TokenPair represents access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Claims identifies the actor behind a request.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Profile is the public view of a user handed to other modules.
type Profile struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	SystemRole SystemRole `json:"system_role"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		SystemRole: u.SystemRole,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

// User is an account that can own numbers (role user) or operate the
// inventory (role admin). Full identity management lives outside this
// service; the engine only reads users for lookups and role checks.
// Table: users
type User struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`

	Email     string `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`

	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:10;not null;default:'user';index:idx_users_role" json:"role"`
	IsActive     *bool  `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may operate admin endpoints
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// FullName returns the display name used in notification emails
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Email    *string
	Role     *string
	IsActive *bool
}

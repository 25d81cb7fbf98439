package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values stored in user_roles.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents an authenticated user in the system.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName  string         `gorm:"size:255" json:"full_name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Roles     []UserRole     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
}

// UserRole grants a role to a user. A user is an admin when it has a row with role=admin.
type UserRole struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"uniqueIndex:idx_user_role;not null" json:"user_id"`
	Role   string `gorm:"uniqueIndex:idx_user_role;size:20;not null" json:"role"`
}

// HasRole requires Roles to be preloaded.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

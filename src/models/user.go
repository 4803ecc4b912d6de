package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the permission level of a user account
type Role string

const (
	// RoleAdmin identifies the seeded administrator account
	RoleAdmin Role = "admin"
)

// User represents a password-authenticated account.
// A single admin user is seeded at startup from configuration.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the safe projection of a User returned to callers
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// Public returns the user projection without credential material
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}
}

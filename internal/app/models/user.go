package models

import (
	"time"
)

// User is a registered account as stored in the users collection
type User struct {
	ID        string    `json:"id" example:"V1StGXR8Z5jdHi6BmyT0"`
	Name      string    `json:"name" example:"Jane Doe"`
	Email     string    `json:"email" example:"jane@example.com"`
	Role      RoleType  `json:"role" example:"user"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-01T10:00:00Z"`
}

func (u User) EntityID() string { return u.ID }

// Identity converts a stored user into the caller identity used for access checks
func (u User) Identity() Identity {
	return Identity{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.Name,
		Role:        u.Role,
	}
}

// Credential is the auth collaborator's record for a user, keyed by the user id
type Credential struct {
	UserID       string    `json:"-"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

package dto

import (
	"time"

	"github.com/yigit/flashclass/internal/app/models"
)

// UserResponse represents a user record as shown to clients
type UserResponse struct {
	ID        string    `json:"id" example:"V1StGXR8Z5jdHi6BmyT0"`
	Name      string    `json:"name" example:"Jane Doe"`
	Email     string    `json:"email" example:"jane@example.com"`
	Role      string    `json:"role" example:"user" enums:"user,admin"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserListResponse represents a page of users
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	PaginationInfo
}

// CreateUserRequest is an admin-created account
type CreateUserRequest struct {
	Name     string          `json:"name" binding:"notblank,max=100"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,password"`
	Role     models.RoleType `json:"role" binding:"required,oneof=user admin"`
}

// UpdateRoleRequest sets a role explicitly. An empty role toggles the current one.
type UpdateRoleRequest struct {
	Role models.RoleType `json:"role" binding:"omitempty,oneof=user admin"`
}

// UserPatchResponse is the patch a caller merges into its user list
type UserPatchResponse struct {
	Patch models.UserPatch `json:"patch"`
	User  *UserResponse    `json:"user,omitempty"`
}

// FromUser converts a model to its response
func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// FromUsers converts a list of users
func FromUsers(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, FromUser(&users[i]))
	}
	return out
}

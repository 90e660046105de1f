package dto

import (
	"time"

	"github.com/yigit/abroadcrm/internal/app/models"
)

// UserResponse is the full user representation
type UserResponse struct {
	ID         int64     `json:"id" example:"1"`
	Username   string    `json:"username" example:"maria"`
	Email      string    `json:"email" example:"maria@example.com"`
	FirstName  string    `json:"first_name" example:"Maria"`
	LastName   string    `json:"last_name" example:"Lopez"`
	FullName   string    `json:"full_name" example:"Maria Lopez"`
	Role       string    `json:"role" example:"counselor"`
	Phone      *string   `json:"phone"`
	Department *string   `json:"department"`
	JoinDate   string    `json:"join_date" example:"2025-01-15"`
	IsActive   bool      `json:"is_active" example:"true"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromUser converts a models.User to a UserResponse
func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		Role:       string(u.Role),
		Phone:      u.Phone,
		Department: u.Department,
		JoinDate:   FormatDate(u.JoinDate),
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// FromUsers converts a slice of users
func FromUsers(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, FromUser(u))
	}
	return out
}

// UserCreateRequest is the create shape for users
type UserCreateRequest struct {
	Username   string  `json:"username" binding:"required,max=150"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	FirstName  string  `json:"first_name" binding:"max=150"`
	LastName   string  `json:"last_name" binding:"max=150"`
	Role       string  `json:"role" binding:"omitempty,oneof=admin counselor employee"`
	Phone      *string `json:"phone" binding:"omitempty,max=15"`
	Department *string `json:"department" binding:"omitempty,max=50"`
}

// ToModel builds a user from the request. The password hash is set by the service.
func (r UserCreateRequest) ToModel() *models.User {
	role := models.Role(r.Role)
	if role == "" {
		role = models.RoleEmployee
	}
	return &models.User{
		Username:   r.Username,
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Role:       role,
		Phone:      r.Phone,
		Department: r.Department,
		IsActive:   true,
	}
}

// UserUpdateRequest is the update shape for users. Password changes are not accepted here.
type UserUpdateRequest struct {
	Username   string  `json:"username" binding:"required,max=150"`
	Email      string  `json:"email" binding:"required,email"`
	FirstName  string  `json:"first_name" binding:"max=150"`
	LastName   string  `json:"last_name" binding:"max=150"`
	Role       string  `json:"role" binding:"required,oneof=admin counselor employee"`
	Phone      *string `json:"phone" binding:"omitempty,max=15"`
	Department *string `json:"department" binding:"omitempty,max=50"`
	IsActive   *bool   `json:"is_active" binding:"required"`
}

// NewUserUpdateRequest seeds an update request from the stored row, used for PATCH
func NewUserUpdateRequest(u *models.User) UserUpdateRequest {
	active := u.IsActive
	return UserUpdateRequest{
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       string(u.Role),
		Phone:      u.Phone,
		Department: u.Department,
		IsActive:   &active,
	}
}

// ApplyTo copies the request onto an existing user
func (r UserUpdateRequest) ApplyTo(u *models.User) {
	u.Username = r.Username
	u.Email = r.Email
	u.FirstName = r.FirstName
	u.LastName = r.LastName
	u.Role = models.Role(r.Role)
	u.Phone = r.Phone
	u.Department = r.Department
	if r.IsActive != nil {
		u.IsActive = *r.IsActive
	}
}

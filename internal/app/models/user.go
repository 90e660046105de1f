package models

import (
	"strings"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Role         Role      `db:"role"`
	Phone        *string   `db:"phone"`
	Department   *string   `db:"department"`
	IsActive     bool      `db:"is_active"`
	JoinDate     time.Time `db:"join_date"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// FullName joins first and last name, falling back to the username
func (u *User) FullName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

// UserFilter narrows user listings
type UserFilter struct {
	Role   Role
	Search string
	Page   Page
}

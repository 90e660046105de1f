package models

import "math"

// Role defines the user role
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCounselor Role = "counselor"
	RoleEmployee  Role = "employee"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCounselor, RoleEmployee:
		return true
	}
	return false
}

// Priority is shared by remarks and applications
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Percentage returns round(part/whole*100, 2), or 0 when whole is zero.
func Percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part/whole*100*100) / 100
}

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

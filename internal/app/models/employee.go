package models

import "time"

// EmployeePerformance aggregates a staff member's counters, one row per user
type EmployeePerformance struct {
	ID                        int64     `db:"id"`
	EmployeeID                int64     `db:"employee_id"`
	AssignedStudents          int       `db:"assigned_students"`
	CompletedApplications     int       `db:"completed_applications"`
	SuccessRate               float64   `db:"success_rate"`
	RevenueGenerated          float64   `db:"revenue_generated"`
	Rating                    float64   `db:"rating"`
	MonthlyTargetStudents     int       `db:"monthly_target_students"`
	MonthlyTargetApplications int       `db:"monthly_target_applications"`
	MonthlyTargetRevenue      float64   `db:"monthly_target_revenue"`
	LastUpdated               time.Time `db:"last_updated"`

	EmployeeName string
}

// TargetAchievementPercentage compares assigned students with the monthly target
func (p *EmployeePerformance) TargetAchievementPercentage() float64 {
	return Percentage(float64(p.AssignedStudents), float64(p.MonthlyTargetStudents))
}

// Target types
const (
	TargetStudents     = "students"
	TargetApplications = "applications"
	TargetRevenue      = "revenue"
)

// EmployeeTarget is a monthly goal, unique per (employee, target_type, month)
type EmployeeTarget struct {
	ID            int64     `db:"id"`
	EmployeeID    int64     `db:"employee_id"`
	TargetType    string    `db:"target_type"`
	TargetValue   float64   `db:"target_value"`
	AchievedValue float64   `db:"achieved_value"`
	Month         time.Time `db:"month"`
	CreatedAt     time.Time `db:"created_at"`
}

// AchievementPercentage compares achieved and target values
func (t *EmployeeTarget) AchievementPercentage() float64 {
	return Percentage(t.AchievedValue, t.TargetValue)
}

// FirstOfMonth truncates t to midnight UTC on the first day of its month
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// TargetFilter narrows target listings
type TargetFilter struct {
	EmployeeID *int64
	Month      *time.Time
	Page       Page
}

package dto

import (
	"time"

	"github.com/yigit/abroadcrm/internal/app/models"
)

// PerformanceRequest replaces an employee's performance counters
type PerformanceRequest struct {
	AssignedStudents          int     `json:"assigned_students" binding:"min=0"`
	CompletedApplications     int     `json:"completed_applications" binding:"min=0"`
	SuccessRate               float64 `json:"success_rate" binding:"min=0,max=100"`
	RevenueGenerated          float64 `json:"revenue_generated" binding:"min=0"`
	Rating                    float64 `json:"rating" binding:"min=0,max=9.99"`
	MonthlyTargetStudents     int     `json:"monthly_target_students" binding:"min=0"`
	MonthlyTargetApplications int     `json:"monthly_target_applications" binding:"min=0"`
	MonthlyTargetRevenue      float64 `json:"monthly_target_revenue" binding:"min=0"`
}

// ToModel builds the performance row for employeeID
func (r PerformanceRequest) ToModel(employeeID int64) *models.EmployeePerformance {
	return &models.EmployeePerformance{
		EmployeeID:                employeeID,
		AssignedStudents:          r.AssignedStudents,
		CompletedApplications:     r.CompletedApplications,
		SuccessRate:               r.SuccessRate,
		RevenueGenerated:          r.RevenueGenerated,
		Rating:                    r.Rating,
		MonthlyTargetStudents:     r.MonthlyTargetStudents,
		MonthlyTargetApplications: r.MonthlyTargetApplications,
		MonthlyTargetRevenue:      r.MonthlyTargetRevenue,
	}
}

// PerformanceResponse represents an employee's performance
type PerformanceResponse struct {
	ID                          int64     `json:"id"`
	Employee                    int64     `json:"employee"`
	EmployeeName                string    `json:"employee_name"`
	AssignedStudents            int       `json:"assigned_students"`
	CompletedApplications       int       `json:"completed_applications"`
	SuccessRate                 float64   `json:"success_rate"`
	RevenueGenerated            float64   `json:"revenue_generated"`
	Rating                      float64   `json:"rating"`
	MonthlyTargetStudents       int       `json:"monthly_target_students"`
	MonthlyTargetApplications   int       `json:"monthly_target_applications"`
	MonthlyTargetRevenue        float64   `json:"monthly_target_revenue"`
	TargetAchievementPercentage float64   `json:"target_achievement_percentage"`
	LastUpdated                 time.Time `json:"last_updated"`
}

func FromPerformance(p *models.EmployeePerformance) PerformanceResponse {
	return PerformanceResponse{
		ID:                          p.ID,
		Employee:                    p.EmployeeID,
		EmployeeName:                p.EmployeeName,
		AssignedStudents:            p.AssignedStudents,
		CompletedApplications:       p.CompletedApplications,
		SuccessRate:                 p.SuccessRate,
		RevenueGenerated:            p.RevenueGenerated,
		Rating:                      p.Rating,
		MonthlyTargetStudents:       p.MonthlyTargetStudents,
		MonthlyTargetApplications:   p.MonthlyTargetApplications,
		MonthlyTargetRevenue:        p.MonthlyTargetRevenue,
		TargetAchievementPercentage: p.TargetAchievementPercentage(),
		LastUpdated:                 p.LastUpdated,
	}
}

func FromPerformances(items []*models.EmployeePerformance) []PerformanceResponse {
	out := make([]PerformanceResponse, 0, len(items))
	for _, p := range items {
		out = append(out, FromPerformance(p))
	}
	return out
}

// TargetRequest creates a monthly target. Employee defaults to the requester.
type TargetRequest struct {
	Employee      *int64  `json:"employee"`
	TargetType    string  `json:"target_type" binding:"required,oneof=students applications revenue"`
	TargetValue   float64 `json:"target_value" binding:"required,gt=0"`
	AchievedValue float64 `json:"achieved_value" binding:"min=0"`
	Month         string  `json:"month" binding:"required,datetime=2006-01-02"`
}

// ToModel builds the target with month normalised to its first day
func (r TargetRequest) ToModel(employeeID int64) *models.EmployeeTarget {
	return &models.EmployeeTarget{
		EmployeeID:    employeeID,
		TargetType:    r.TargetType,
		TargetValue:   r.TargetValue,
		AchievedValue: r.AchievedValue,
		Month:         models.FirstOfMonth(ParseDate(r.Month)),
	}
}

// TargetResponse represents a monthly target
type TargetResponse struct {
	ID                    int64     `json:"id"`
	Employee              int64     `json:"employee"`
	TargetType            string    `json:"target_type"`
	TargetValue           float64   `json:"target_value"`
	AchievedValue         float64   `json:"achieved_value"`
	AchievementPercentage float64   `json:"achievement_percentage"`
	Month                 string    `json:"month"`
	CreatedAt             time.Time `json:"created_at"`
}

func FromTarget(t *models.EmployeeTarget) TargetResponse {
	return TargetResponse{
		ID:                    t.ID,
		Employee:              t.EmployeeID,
		TargetType:            t.TargetType,
		TargetValue:           t.TargetValue,
		AchievedValue:         t.AchievedValue,
		AchievementPercentage: t.AchievementPercentage(),
		Month:                 FormatDate(t.Month),
		CreatedAt:             t.CreatedAt,
	}
}

func FromTargets(items []*models.EmployeeTarget) []TargetResponse {
	out := make([]TargetResponse, 0, len(items))
	for _, t := range items {
		out = append(out, FromTarget(t))
	}
	return out
}

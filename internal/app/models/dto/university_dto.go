package dto

import (
	"time"

	"github.com/yigit/abroadcrm/internal/app/models"
)

// UniversityRequest is the create shape for universities
type UniversityRequest struct {
	ID                    int64   `json:"id"`
	Name                  string  `json:"name" binding:"required,max=200"`
	Country               string  `json:"country" binding:"required,max=50"`
	City                  string  `json:"city" binding:"required,max=100"`
	Website               string  `json:"website" binding:"required,url"`
	Type                  string  `json:"type" binding:"required,oneof=public private"`
	EstablishedYear       int     `json:"established_year" binding:"required,min=1000,max=2100"`
	Ranking               int     `json:"ranking" binding:"min=0"`
	WorldRanking          int     `json:"world_ranking" binding:"min=0"`
	Rating                float64 `json:"rating" binding:"min=0,max=9.99"`
	TotalStudents         int     `json:"total_students" binding:"min=0"`
	InternationalStudents int     `json:"international_students" binding:"min=0"`
	AcceptanceRate        float64 `json:"acceptance_rate" binding:"min=0,max=100"`
	TuitionFeeRange       string  `json:"tuition_fee_range" binding:"required,max=100"`
	ApplicationFee        string  `json:"application_fee" binding:"required,max=50"`
	PartnershipStatus     string  `json:"partnership_status" binding:"omitempty,oneof=direct premium preferred standard"`
}

// NewUniversityRequest seeds a request from the stored row
func NewUniversityRequest(u *models.University) UniversityRequest {
	return UniversityRequest{
		ID:                    u.ID,
		Name:                  u.Name,
		Country:               u.Country,
		City:                  u.City,
		Website:               u.Website,
		Type:                  u.Type,
		EstablishedYear:       u.EstablishedYear,
		Ranking:               u.Ranking,
		WorldRanking:          u.WorldRanking,
		Rating:                u.Rating,
		TotalStudents:         u.TotalStudents,
		InternationalStudents: u.InternationalStudents,
		AcceptanceRate:        u.AcceptanceRate,
		TuitionFeeRange:       u.TuitionFeeRange,
		ApplicationFee:        u.ApplicationFee,
		PartnershipStatus:     u.PartnershipStatus,
	}
}

// ApplyTo copies writable fields onto u
func (r UniversityRequest) ApplyTo(u *models.University) {
	u.Name = r.Name
	u.Country = r.Country
	u.City = r.City
	u.Website = r.Website
	u.Type = r.Type
	u.EstablishedYear = r.EstablishedYear
	u.Ranking = r.Ranking
	u.WorldRanking = r.WorldRanking
	u.Rating = r.Rating
	u.TotalStudents = r.TotalStudents
	u.InternationalStudents = r.InternationalStudents
	u.AcceptanceRate = r.AcceptanceRate
	u.TuitionFeeRange = r.TuitionFeeRange
	u.ApplicationFee = r.ApplicationFee
	if r.PartnershipStatus != "" {
		u.PartnershipStatus = r.PartnershipStatus
	}
}

// ToModel builds a new university
func (r UniversityRequest) ToModel() *models.University {
	u := &models.University{PartnershipStatus: "standard"}
	r.ApplyTo(u)
	return u
}

// UniversityResponse is the full university representation
type UniversityResponse struct {
	ID                      int64                `json:"id"`
	Name                    string               `json:"name"`
	Country                 string               `json:"country"`
	City                    string               `json:"city"`
	Website                 string               `json:"website"`
	Type                    string               `json:"type"`
	EstablishedYear         int                  `json:"established_year"`
	Ranking                 int                  `json:"ranking"`
	WorldRanking            int                  `json:"world_ranking"`
	Rating                  float64              `json:"rating"`
	TotalStudents           int                  `json:"total_students"`
	InternationalStudents   int                  `json:"international_students"`
	InternationalPercentage float64              `json:"international_percentage"`
	AcceptanceRate          float64              `json:"acceptance_rate"`
	TuitionFeeRange         string               `json:"tuition_fee_range"`
	ApplicationFee          string               `json:"application_fee"`
	PartnershipStatus       string               `json:"partnership_status"`
	CreatedAt               time.Time            `json:"created_at"`
	UpdatedAt               time.Time            `json:"updated_at"`
	Programs                []ProgramResponse    `json:"programs"`
	Requirements            *RequirementResponse `json:"requirements"`
}

// FromUniversity converts a models.University
func FromUniversity(u *models.University) UniversityResponse {
	resp := UniversityResponse{
		ID:                      u.ID,
		Name:                    u.Name,
		Country:                 u.Country,
		City:                    u.City,
		Website:                 u.Website,
		Type:                    u.Type,
		EstablishedYear:         u.EstablishedYear,
		Ranking:                 u.Ranking,
		WorldRanking:            u.WorldRanking,
		Rating:                  u.Rating,
		TotalStudents:           u.TotalStudents,
		InternationalStudents:   u.InternationalStudents,
		InternationalPercentage: u.InternationalPercentage(),
		AcceptanceRate:          u.AcceptanceRate,
		TuitionFeeRange:         u.TuitionFeeRange,
		ApplicationFee:          u.ApplicationFee,
		PartnershipStatus:       u.PartnershipStatus,
		CreatedAt:               u.CreatedAt,
		UpdatedAt:               u.UpdatedAt,
		Programs:                FromPrograms(u.Programs),
	}
	if u.Requirements != nil {
		req := FromRequirement(u.Requirements)
		resp.Requirements = &req
	}
	return resp
}

// FromUniversities converts a slice of universities
func FromUniversities(universities []*models.University) []UniversityResponse {
	out := make([]UniversityResponse, 0, len(universities))
	for _, u := range universities {
		out = append(out, FromUniversity(u))
	}
	return out
}

// ProgramRequest creates or replaces a program
type ProgramRequest struct {
	Name         string  `json:"name" binding:"required,max=200"`
	Level        string  `json:"level" binding:"required,oneof=bachelor master phd diploma"`
	Duration     string  `json:"duration" binding:"required,max=50"`
	AnnualFee    string  `json:"annual_fee" binding:"required,max=100"`
	Requirements *string `json:"requirements"`
}

// ApplyTo copies fields onto p
func (r ProgramRequest) ApplyTo(p *models.UniversityProgram) {
	p.Name = r.Name
	p.Level = r.Level
	p.Duration = r.Duration
	p.AnnualFee = r.AnnualFee
	p.Requirements = r.Requirements
}

// ProgramResponse represents a program
type ProgramResponse struct {
	ID           int64   `json:"id"`
	University   int64   `json:"university"`
	Name         string  `json:"name"`
	Level        string  `json:"level"`
	Duration     string  `json:"duration"`
	AnnualFee    string  `json:"annual_fee"`
	Requirements *string `json:"requirements"`
}

func FromProgram(p *models.UniversityProgram) ProgramResponse {
	return ProgramResponse{
		ID:           p.ID,
		University:   p.UniversityID,
		Name:         p.Name,
		Level:        p.Level,
		Duration:     p.Duration,
		AnnualFee:    p.AnnualFee,
		Requirements: p.Requirements,
	}
}

func FromPrograms(programs []*models.UniversityProgram) []ProgramResponse {
	out := make([]ProgramResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, FromProgram(p))
	}
	return out
}

// RequirementRequest replaces a university's admission requirements
type RequirementRequest struct {
	EnglishTests         string `json:"english_tests" binding:"required"`
	AcademicRequirements string `json:"academic_requirements" binding:"required"`
	DocumentsRequired    string `json:"documents_required" binding:"required"`
	ApplicationDeadlines string `json:"application_deadlines" binding:"required"`
}

// ApplyTo copies fields onto r
func (req RequirementRequest) ApplyTo(r *models.UniversityRequirement) {
	r.EnglishTests = req.EnglishTests
	r.AcademicRequirements = req.AcademicRequirements
	r.DocumentsRequired = req.DocumentsRequired
	r.ApplicationDeadlines = req.ApplicationDeadlines
}

// RequirementResponse represents admission requirements
type RequirementResponse struct {
	ID                   int64  `json:"id"`
	University           int64  `json:"university"`
	EnglishTests         string `json:"english_tests"`
	AcademicRequirements string `json:"academic_requirements"`
	DocumentsRequired    string `json:"documents_required"`
	ApplicationDeadlines string `json:"application_deadlines"`
}

func FromRequirement(r *models.UniversityRequirement) RequirementResponse {
	return RequirementResponse{
		ID:                   r.ID,
		University:           r.UniversityID,
		EnglishTests:         r.EnglishTests,
		AcademicRequirements: r.AcademicRequirements,
		DocumentsRequired:    r.DocumentsRequired,
		ApplicationDeadlines: r.ApplicationDeadlines,
	}
}

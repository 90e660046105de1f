package models

import "time"

// University is reference data readable by every authenticated user
type University struct {
	ID                    int64     `db:"id"`
	Name                  string    `db:"name"`
	Country               string    `db:"country"`
	City                  string    `db:"city"`
	Website               string    `db:"website"`
	Type                  string    `db:"type"`
	EstablishedYear       int       `db:"established_year"`
	Ranking               int       `db:"ranking"`
	WorldRanking          int       `db:"world_ranking"`
	Rating                float64   `db:"rating"`
	TotalStudents         int       `db:"total_students"`
	InternationalStudents int       `db:"international_students"`
	AcceptanceRate        float64   `db:"acceptance_rate"`
	TuitionFeeRange       string    `db:"tuition_fee_range"`
	ApplicationFee        string    `db:"application_fee"`
	PartnershipStatus     string    `db:"partnership_status"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`

	Programs     []*UniversityProgram
	Requirements *UniversityRequirement
}

// InternationalPercentage is the share of international students
func (u *University) InternationalPercentage() float64 {
	return Percentage(float64(u.InternationalStudents), float64(u.TotalStudents))
}

// UniversityProgram is a degree offered by a university
type UniversityProgram struct {
	ID           int64   `db:"id"`
	UniversityID int64   `db:"university_id"`
	Name         string  `db:"name"`
	Level        string  `db:"level"`
	Duration     string  `db:"duration"`
	AnnualFee    string  `db:"annual_fee"`
	Requirements *string `db:"requirements"`
}

// UniversityRequirement holds admission requirements, one per university
type UniversityRequirement struct {
	ID                   int64  `db:"id"`
	UniversityID         int64  `db:"university_id"`
	EnglishTests         string `db:"english_tests"`
	AcademicRequirements string `db:"academic_requirements"`
	DocumentsRequired    string `db:"documents_required"`
	ApplicationDeadlines string `db:"application_deadlines"`
}

// UniversityFilter narrows university listings
type UniversityFilter struct {
	Country           string
	Type              string
	PartnershipStatus string
	Search            string
	Page              Page
}

package models

import "time"

// ApplicationStatus is the ordered lifecycle of an application
type ApplicationStatus string

const (
	AppStatusInquiryReceived      ApplicationStatus = "inquiry_received"
	AppStatusDocumentReview       ApplicationStatus = "document_review"
	AppStatusApplicationSubmitted ApplicationStatus = "application_submitted"
	AppStatusUniversityReview     ApplicationStatus = "university_review"
	AppStatusDecisionReceived     ApplicationStatus = "decision_received"
	AppStatusVisaProcessing       ApplicationStatus = "visa_processing"
	AppStatusVisaApproved         ApplicationStatus = "visa_approved"
	AppStatusEnrolled             ApplicationStatus = "enrolled"
	AppStatusRejected             ApplicationStatus = "rejected"
	AppStatusWithdrawn            ApplicationStatus = "withdrawn"
)

const (
	DefaultCurrentStep = 1
	DefaultTotalSteps  = 8
)

// Application tracks one student's application to one university
type Application struct {
	ID                int64             `db:"id"`
	ApplicationID     string            `db:"application_id"`
	StudentID         int64             `db:"student_id"`
	UniversityID      int64             `db:"university_id"`
	Program           string            `db:"program"`
	Level             string            `db:"level"`
	Intake            string            `db:"intake"`
	Status            ApplicationStatus `db:"status"`
	Priority          Priority          `db:"priority"`
	CurrentStep       int               `db:"current_step"`
	TotalSteps        int               `db:"total_steps"`
	ApplicationDate   time.Time         `db:"application_date"`
	EstimatedDecision *time.Time        `db:"estimated_decision"`
	LastUpdate        time.Time         `db:"last_update"`
	ApplicationFee    string            `db:"application_fee"`
	CreatedAt         time.Time         `db:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at"`

	StudentName    string
	UniversityName string
	Documents      []*ApplicationDocument
	Timeline       []*ApplicationTimeline
}

// ProgressPercentage is current_step over total_steps
func (a *Application) ProgressPercentage() float64 {
	return Percentage(float64(a.CurrentStep), float64(a.TotalSteps))
}

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	Status       ApplicationStatus
	StudentID    *int64
	UniversityID *int64
	Page         Page
}

// ApplicationDocument is a document required for an application
type ApplicationDocument struct {
	ID            int64      `db:"id"`
	ApplicationID int64      `db:"application_id"`
	Name          string     `db:"name"`
	DocumentType  string     `db:"document_type"`
	Status        string     `db:"status"`
	UploadDate    *time.Time `db:"upload_date"`
	Comments      *string    `db:"comments"`
	FileKey       *string    `db:"file_key"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`

	// FileURL is resolved from FileKey by the file storage on reads
	FileURL *string
}

// ApplicationTimeline is one entry in an application's history
type ApplicationTimeline struct {
	ID            int64     `db:"id"`
	ApplicationID int64     `db:"application_id"`
	Status        string    `db:"status"`
	Description   string    `db:"description"`
	Date          time.Time `db:"date"`
	Completed     bool      `db:"completed"`
	IsCurrent     bool      `db:"is_current"`
}

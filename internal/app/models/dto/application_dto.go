package dto

import (
	"time"

	"github.com/yigit/abroadcrm/internal/app/models"
)

// ApplicationRequest is the create shape for applications. An empty application_id is generated.
type ApplicationRequest struct {
	ID                int64   `json:"id"`
	ApplicationID     string  `json:"application_id" binding:"omitempty,max=20"`
	Student           int64   `json:"student" binding:"required,min=1"`
	University        int64   `json:"university" binding:"required,min=1"`
	Program           string  `json:"program" binding:"required,max=200"`
	Level             string  `json:"level" binding:"required,max=20"`
	Intake            string  `json:"intake" binding:"required,max=50"`
	Status            string  `json:"status" binding:"omitempty,oneof=inquiry_received document_review application_submitted university_review decision_received visa_processing visa_approved enrolled rejected withdrawn"`
	Priority          string  `json:"priority" binding:"omitempty,oneof=high medium low"`
	CurrentStep       *int    `json:"current_step" binding:"omitempty,min=0"`
	TotalSteps        *int    `json:"total_steps" binding:"omitempty,min=0"`
	ApplicationDate   string  `json:"application_date" binding:"required,datetime=2006-01-02"`
	EstimatedDecision *string `json:"estimated_decision" binding:"omitempty,datetime=2006-01-02"`
	ApplicationFee    string  `json:"application_fee" binding:"required,max=50"`
}

// NewApplicationRequest seeds a request from the stored row
func NewApplicationRequest(a *models.Application) ApplicationRequest {
	current, total := a.CurrentStep, a.TotalSteps
	return ApplicationRequest{
		ID:                a.ID,
		ApplicationID:     a.ApplicationID,
		Student:           a.StudentID,
		University:        a.UniversityID,
		Program:           a.Program,
		Level:             a.Level,
		Intake:            a.Intake,
		Status:            string(a.Status),
		Priority:          string(a.Priority),
		CurrentStep:       &current,
		TotalSteps:        &total,
		ApplicationDate:   FormatDate(a.ApplicationDate),
		EstimatedDecision: FormatDatePtr(a.EstimatedDecision),
		ApplicationFee:    a.ApplicationFee,
	}
}

// ApplyTo copies writable fields onto a
func (r ApplicationRequest) ApplyTo(a *models.Application) {
	if r.ApplicationID != "" {
		a.ApplicationID = r.ApplicationID
	}
	a.StudentID = r.Student
	a.UniversityID = r.University
	a.Program = r.Program
	a.Level = r.Level
	a.Intake = r.Intake
	if r.Status != "" {
		a.Status = models.ApplicationStatus(r.Status)
	}
	if r.Priority != "" {
		a.Priority = models.Priority(r.Priority)
	}
	if r.CurrentStep != nil {
		a.CurrentStep = *r.CurrentStep
	}
	if r.TotalSteps != nil {
		a.TotalSteps = *r.TotalSteps
	}
	a.ApplicationDate = ParseDate(r.ApplicationDate)
	a.EstimatedDecision = ParseDatePtr(r.EstimatedDecision)
	a.ApplicationFee = r.ApplicationFee
}

// ToModel builds a new application with lifecycle defaults
func (r ApplicationRequest) ToModel() *models.Application {
	a := &models.Application{
		Status:      models.AppStatusInquiryReceived,
		Priority:    models.PriorityMedium,
		CurrentStep: models.DefaultCurrentStep,
		TotalSteps:  models.DefaultTotalSteps,
	}
	r.ApplyTo(a)
	return a
}

// ApplicationResponse is the full application representation
type ApplicationResponse struct {
	ID                 int64              `json:"id"`
	ApplicationID      string             `json:"application_id"`
	Student            int64              `json:"student"`
	StudentName        string             `json:"student_name"`
	University         int64              `json:"university"`
	UniversityName     string             `json:"university_name"`
	Program            string             `json:"program"`
	Level              string             `json:"level"`
	Intake             string             `json:"intake"`
	Status             string             `json:"status"`
	Priority           string             `json:"priority"`
	CurrentStep        int                `json:"current_step"`
	TotalSteps         int                `json:"total_steps"`
	ProgressPercentage float64            `json:"progress_percentage"`
	ApplicationDate    string             `json:"application_date"`
	EstimatedDecision  *string            `json:"estimated_decision"`
	LastUpdate         time.Time          `json:"last_update"`
	ApplicationFee     string             `json:"application_fee"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Documents          []DocumentResponse `json:"documents"`
	Timeline           []TimelineResponse `json:"timeline"`
}

// FromApplication converts a models.Application
func FromApplication(a *models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:                 a.ID,
		ApplicationID:      a.ApplicationID,
		Student:            a.StudentID,
		StudentName:        a.StudentName,
		University:         a.UniversityID,
		UniversityName:     a.UniversityName,
		Program:            a.Program,
		Level:              a.Level,
		Intake:             a.Intake,
		Status:             string(a.Status),
		Priority:           string(a.Priority),
		CurrentStep:        a.CurrentStep,
		TotalSteps:         a.TotalSteps,
		ProgressPercentage: a.ProgressPercentage(),
		ApplicationDate:    FormatDate(a.ApplicationDate),
		EstimatedDecision:  FormatDatePtr(a.EstimatedDecision),
		LastUpdate:         a.LastUpdate,
		ApplicationFee:     a.ApplicationFee,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
		Documents:          FromDocuments(a.Documents),
		Timeline:           FromTimeline(a.Timeline),
	}
}

// FromApplications converts a slice of applications
func FromApplications(apps []*models.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, FromApplication(a))
	}
	return out
}

// DocumentRequest creates or patches an application document
type DocumentRequest struct {
	Name         string  `json:"name" binding:"required,max=200"`
	DocumentType string  `json:"document_type" binding:"required,oneof=academic personal reference test_score essay other"`
	Status       string  `json:"status" binding:"omitempty,oneof=pending approved revision_required rejected"`
	Comments     *string `json:"comments"`
}

// NewDocumentRequest seeds a request from the stored row
func NewDocumentRequest(d *models.ApplicationDocument) DocumentRequest {
	return DocumentRequest{
		Name:         d.Name,
		DocumentType: d.DocumentType,
		Status:       d.Status,
		Comments:     d.Comments,
	}
}

// ApplyTo copies fields onto d
func (r DocumentRequest) ApplyTo(d *models.ApplicationDocument) {
	d.Name = r.Name
	d.DocumentType = r.DocumentType
	if r.Status != "" {
		d.Status = r.Status
	}
	d.Comments = r.Comments
}

// DocumentResponse represents a document; file_url is set once a file is uploaded
type DocumentResponse struct {
	ID           int64      `json:"id"`
	Application  int64      `json:"application"`
	Name         string     `json:"name"`
	DocumentType string     `json:"document_type"`
	Status       string     `json:"status"`
	UploadDate   *time.Time `json:"upload_date"`
	Comments     *string    `json:"comments"`
	File         *string    `json:"file"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func FromDocument(d *models.ApplicationDocument) DocumentResponse {
	return DocumentResponse{
		ID:           d.ID,
		Application:  d.ApplicationID,
		Name:         d.Name,
		DocumentType: d.DocumentType,
		Status:       d.Status,
		UploadDate:   d.UploadDate,
		Comments:     d.Comments,
		File:         d.FileURL,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func FromDocuments(docs []*models.ApplicationDocument) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromDocument(d))
	}
	return out
}

// TimelineRequest appends an entry to an application's history
type TimelineRequest struct {
	Status      string     `json:"status" binding:"required,max=50"`
	Description string     `json:"description" binding:"required"`
	Date        *time.Time `json:"date"`
	Completed   bool       `json:"completed"`
	IsCurrent   bool       `json:"is_current"`
}

// ToModel builds the entry, defaulting the date to now
func (r TimelineRequest) ToModel(applicationID int64, now time.Time) *models.ApplicationTimeline {
	date := now
	if r.Date != nil {
		date = *r.Date
	}
	return &models.ApplicationTimeline{
		ApplicationID: applicationID,
		Status:        r.Status,
		Description:   r.Description,
		Date:          date,
		Completed:     r.Completed,
		IsCurrent:     r.IsCurrent,
	}
}

// TimelineResponse represents a timeline entry
type TimelineResponse struct {
	ID          int64     `json:"id"`
	Application int64     `json:"application"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Completed   bool      `json:"completed"`
	IsCurrent   bool      `json:"is_current"`
}

func FromTimelineEntry(t *models.ApplicationTimeline) TimelineResponse {
	return TimelineResponse{
		ID:          t.ID,
		Application: t.ApplicationID,
		Status:      t.Status,
		Description: t.Description,
		Date:        t.Date,
		Completed:   t.Completed,
		IsCurrent:   t.IsCurrent,
	}
}

func FromTimeline(entries []*models.ApplicationTimeline) []TimelineResponse {
	out := make([]TimelineResponse, 0, len(entries))
	for _, t := range entries {
		out = append(out, FromTimelineEntry(t))
	}
	return out
}

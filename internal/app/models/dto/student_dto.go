package dto

import (
	"time"

	"github.com/yigit/abroadcrm/internal/app/models"
)

// StudentRequest is the create shape for students, used by POST, PUT and PATCH
type StudentRequest struct {
	ID                 int64   `json:"id"`
	FirstName          string  `json:"first_name" binding:"required,max=50"`
	LastName           string  `json:"last_name" binding:"required,max=50"`
	Email              string  `json:"email" binding:"required,email"`
	Phone              string  `json:"phone" binding:"required,max=15"`
	DateOfBirth        string  `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	Gender             string  `json:"gender" binding:"required,oneof=male female other"`
	Address            string  `json:"address" binding:"required"`
	CurrentEducation   string  `json:"current_education" binding:"required,oneof=12th diploma bachelor master phd"`
	FieldOfStudy       string  `json:"field_of_study" binding:"required,max=100"`
	Institution        string  `json:"institution" binding:"required,max=200"`
	GPA                string  `json:"gpa" binding:"required,max=20"`
	GraduationYear     int     `json:"graduation_year" binding:"required,min=1900,max=2100"`
	EnglishProficiency *string `json:"english_proficiency" binding:"omitempty,max=50"`
	TestScore          *string `json:"test_score" binding:"omitempty,max=100"`
	PreferredCountry   string  `json:"preferred_country" binding:"required,max=50"`
	IntendedProgram    string  `json:"intended_program" binding:"required,oneof=12th diploma bachelor master phd"`
	PreferredField     string  `json:"preferred_field" binding:"required,max=100"`
	IntakeYear         string  `json:"intake_year" binding:"required,max=20"`
	Budget             *string `json:"budget" binding:"omitempty,max=50"`
	AssignedCounselor  *int64  `json:"assigned_counselor"`
	Status             string  `json:"status" binding:"omitempty,oneof=inquiry document_review applied visa_approved enrolled rejected withdrawn"`
	AdditionalNotes    *string `json:"additional_notes"`
}

// NewStudentRequest seeds a request from the stored row, used for PATCH and as the write response
func NewStudentRequest(s *models.Student) StudentRequest {
	return StudentRequest{
		ID:                 s.ID,
		FirstName:          s.FirstName,
		LastName:           s.LastName,
		Email:              s.Email,
		Phone:              s.Phone,
		DateOfBirth:        FormatDate(s.DateOfBirth),
		Gender:             s.Gender,
		Address:            s.Address,
		CurrentEducation:   s.CurrentEducation,
		FieldOfStudy:       s.FieldOfStudy,
		Institution:        s.Institution,
		GPA:                s.GPA,
		GraduationYear:     s.GraduationYear,
		EnglishProficiency: s.EnglishProficiency,
		TestScore:          s.TestScore,
		PreferredCountry:   s.PreferredCountry,
		IntendedProgram:    s.IntendedProgram,
		PreferredField:     s.PreferredField,
		IntakeYear:         s.IntakeYear,
		Budget:             s.Budget,
		AssignedCounselor:  s.AssignedCounselorID,
		Status:             string(s.Status),
		AdditionalNotes:    s.AdditionalNotes,
	}
}

// ApplyTo copies every writable field onto s
func (r StudentRequest) ApplyTo(s *models.Student) {
	s.FirstName = r.FirstName
	s.LastName = r.LastName
	s.Email = r.Email
	s.Phone = r.Phone
	s.DateOfBirth = ParseDate(r.DateOfBirth)
	s.Gender = r.Gender
	s.Address = r.Address
	s.CurrentEducation = r.CurrentEducation
	s.FieldOfStudy = r.FieldOfStudy
	s.Institution = r.Institution
	s.GPA = r.GPA
	s.GraduationYear = r.GraduationYear
	s.EnglishProficiency = r.EnglishProficiency
	s.TestScore = r.TestScore
	s.PreferredCountry = r.PreferredCountry
	s.IntendedProgram = r.IntendedProgram
	s.PreferredField = r.PreferredField
	s.IntakeYear = r.IntakeYear
	s.Budget = r.Budget
	s.AssignedCounselorID = r.AssignedCounselor
	if r.Status != "" {
		s.Status = models.StudentStatus(r.Status)
	}
	s.AdditionalNotes = r.AdditionalNotes
}

// ToModel builds a new student from the request
func (r StudentRequest) ToModel() *models.Student {
	s := &models.Student{Status: models.StudentStatusInquiry}
	r.ApplyTo(s)
	return s
}

// StudentResponse is the full student representation
type StudentResponse struct {
	ID                 int64            `json:"id"`
	FirstName          string           `json:"first_name"`
	LastName           string           `json:"last_name"`
	FullName           string           `json:"full_name"`
	Email              string           `json:"email"`
	Phone              string           `json:"phone"`
	DateOfBirth        string           `json:"date_of_birth"`
	Gender             string           `json:"gender"`
	Address            string           `json:"address"`
	CurrentEducation   string           `json:"current_education"`
	FieldOfStudy       string           `json:"field_of_study"`
	Institution        string           `json:"institution"`
	GPA                string           `json:"gpa"`
	GraduationYear     int              `json:"graduation_year"`
	EnglishProficiency *string          `json:"english_proficiency"`
	TestScore          *string          `json:"test_score"`
	PreferredCountry   string           `json:"preferred_country"`
	IntendedProgram    string           `json:"intended_program"`
	PreferredField     string           `json:"preferred_field"`
	IntakeYear         string           `json:"intake_year"`
	Budget             *string          `json:"budget"`
	AssignedCounselor  *int64           `json:"assigned_counselor"`
	CounselorName      *string          `json:"counselor_name"`
	Status             string           `json:"status"`
	AdditionalNotes    *string          `json:"additional_notes"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Remarks            []RemarkResponse `json:"remarks"`
}

// FromStudent converts a models.Student to its full representation
func FromStudent(s *models.Student) StudentResponse {
	return StudentResponse{
		ID:                 s.ID,
		FirstName:          s.FirstName,
		LastName:           s.LastName,
		FullName:           s.FullName(),
		Email:              s.Email,
		Phone:              s.Phone,
		DateOfBirth:        FormatDate(s.DateOfBirth),
		Gender:             s.Gender,
		Address:            s.Address,
		CurrentEducation:   s.CurrentEducation,
		FieldOfStudy:       s.FieldOfStudy,
		Institution:        s.Institution,
		GPA:                s.GPA,
		GraduationYear:     s.GraduationYear,
		EnglishProficiency: s.EnglishProficiency,
		TestScore:          s.TestScore,
		PreferredCountry:   s.PreferredCountry,
		IntendedProgram:    s.IntendedProgram,
		PreferredField:     s.PreferredField,
		IntakeYear:         s.IntakeYear,
		Budget:             s.Budget,
		AssignedCounselor:  s.AssignedCounselorID,
		CounselorName:      s.CounselorName,
		Status:             string(s.Status),
		AdditionalNotes:    s.AdditionalNotes,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		Remarks:            FromRemarks(s.Remarks),
	}
}

// FromStudents converts a slice of students
func FromStudents(students []*models.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, FromStudent(s))
	}
	return out
}

// RemarkRequest is the create shape for remarks. Counselor is accepted for compatibility
// but always replaced with the requester.
type RemarkRequest struct {
	ID           int64   `json:"id"`
	Student      int64   `json:"student" binding:"required,min=1"`
	Counselor    *int64  `json:"counselor"`
	ContactType  string  `json:"contact_type" binding:"required,oneof=call email meeting whatsapp"`
	Content      string  `json:"content" binding:"required"`
	NextFollowUp *string `json:"next_follow_up" binding:"omitempty,datetime=2006-01-02"`
	Priority     string  `json:"priority" binding:"omitempty,oneof=high medium low"`
}

// NewRemarkRequest seeds a request from the stored row
func NewRemarkRequest(r *models.StudentRemark) RemarkRequest {
	counselor := r.CounselorID
	return RemarkRequest{
		ID:           r.ID,
		Student:      r.StudentID,
		Counselor:    &counselor,
		ContactType:  string(r.ContactType),
		Content:      r.Content,
		NextFollowUp: FormatDatePtr(r.NextFollowUp),
		Priority:     string(r.Priority),
	}
}

// ApplyTo copies writable fields onto r. The counselor is never copied.
func (req RemarkRequest) ApplyTo(r *models.StudentRemark) {
	r.StudentID = req.Student
	r.ContactType = models.ContactType(req.ContactType)
	r.Content = req.Content
	r.NextFollowUp = ParseDatePtr(req.NextFollowUp)
	if req.Priority != "" {
		r.Priority = models.Priority(req.Priority)
	}
}

// ToModel builds a new remark from the request
func (req RemarkRequest) ToModel() *models.StudentRemark {
	r := &models.StudentRemark{Priority: models.PriorityMedium}
	req.ApplyTo(r)
	return r
}

// RemarkResponse is the full remark representation
type RemarkResponse struct {
	ID            int64     `json:"id"`
	Student       int64     `json:"student"`
	Counselor     int64     `json:"counselor"`
	CounselorName string    `json:"counselor_name"`
	ContactType   string    `json:"contact_type"`
	Content       string    `json:"content"`
	NextFollowUp  *string   `json:"next_follow_up"`
	Priority      string    `json:"priority"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromRemark converts a models.StudentRemark
func FromRemark(r *models.StudentRemark) RemarkResponse {
	return RemarkResponse{
		ID:            r.ID,
		Student:       r.StudentID,
		Counselor:     r.CounselorID,
		CounselorName: r.CounselorName,
		ContactType:   string(r.ContactType),
		Content:       r.Content,
		NextFollowUp:  FormatDatePtr(r.NextFollowUp),
		Priority:      string(r.Priority),
		CreatedAt:     r.CreatedAt,
	}
}

// FromRemarks converts a slice of remarks
func FromRemarks(remarks []*models.StudentRemark) []RemarkResponse {
	out := make([]RemarkResponse, 0, len(remarks))
	for _, r := range remarks {
		out = append(out, FromRemark(r))
	}
	return out
}

// StudentStatsResponse counts visible students by status
type StudentStatsResponse struct {
	TotalStudents  int64 `json:"total_students"`
	Inquiry        int64 `json:"inquiry"`
	DocumentReview int64 `json:"document_review"`
	Applied        int64 `json:"applied"`
	VisaApproved   int64 `json:"visa_approved"`
	Enrolled       int64 `json:"enrolled"`
}

// FromStudentStats converts the aggregate
func FromStudentStats(s *models.StudentStats) StudentStatsResponse {
	return StudentStatsResponse{
		TotalStudents:  s.Total,
		Inquiry:        s.ByStatus[models.StudentStatusInquiry],
		DocumentReview: s.ByStatus[models.StudentStatusDocumentReview],
		Applied:        s.ByStatus[models.StudentStatusApplied],
		VisaApproved:   s.ByStatus[models.StudentStatusVisaApproved],
		Enrolled:       s.ByStatus[models.StudentStatusEnrolled],
	}
}

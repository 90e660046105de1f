package models

import (
	"strings"
	"time"
)

// StudentStatus is the pipeline stage of a prospective student
type StudentStatus string

const (
	StudentStatusInquiry        StudentStatus = "inquiry"
	StudentStatusDocumentReview StudentStatus = "document_review"
	StudentStatusApplied        StudentStatus = "applied"
	StudentStatusVisaApproved   StudentStatus = "visa_approved"
	StudentStatusEnrolled       StudentStatus = "enrolled"
	StudentStatusRejected       StudentStatus = "rejected"
	StudentStatusWithdrawn      StudentStatus = "withdrawn"
)

// StudentStatuses lists every status in pipeline order
var StudentStatuses = []StudentStatus{
	StudentStatusInquiry,
	StudentStatusDocumentReview,
	StudentStatusApplied,
	StudentStatusVisaApproved,
	StudentStatusEnrolled,
	StudentStatusRejected,
	StudentStatusWithdrawn,
}

// Student defines the student model based on the 'students' table
type Student struct {
	ID                  int64         `db:"id"`
	FirstName           string        `db:"first_name"`
	LastName            string        `db:"last_name"`
	Email               string        `db:"email"`
	Phone               string        `db:"phone"`
	DateOfBirth         time.Time     `db:"date_of_birth"`
	Gender              string        `db:"gender"`
	Address             string        `db:"address"`
	CurrentEducation    string        `db:"current_education"`
	FieldOfStudy        string        `db:"field_of_study"`
	Institution         string        `db:"institution"`
	GPA                 string        `db:"gpa"`
	GraduationYear      int           `db:"graduation_year"`
	EnglishProficiency  *string       `db:"english_proficiency"`
	TestScore           *string       `db:"test_score"`
	PreferredCountry    string        `db:"preferred_country"`
	IntendedProgram     string        `db:"intended_program"`
	PreferredField      string        `db:"preferred_field"`
	IntakeYear          string        `db:"intake_year"`
	Budget              *string       `db:"budget"`
	AssignedCounselorID *int64        `db:"assigned_counselor_id"`
	Status              StudentStatus `db:"status"`
	AdditionalNotes     *string       `db:"additional_notes"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`

	// Populated on detail reads
	CounselorName *string
	Remarks       []*StudentRemark
}

// FullName joins first and last name
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StudentFilter narrows student listings
type StudentFilter struct {
	Status              StudentStatus
	PreferredCountry    string
	AssignedCounselorID *int64
	Search              string
	// Ordering is a column name, optionally prefixed with '-' for descending
	Ordering string
	Page     Page
}

// StudentStats counts visible students per pipeline stage
type StudentStats struct {
	Total    int64
	ByStatus map[StudentStatus]int64
}

// ContactType is the channel a remark was recorded for
type ContactType string

const (
	ContactCall     ContactType = "call"
	ContactEmail    ContactType = "email"
	ContactMeeting  ContactType = "meeting"
	ContactWhatsApp ContactType = "whatsapp"
)

// StudentRemark is a counselor's note on a student
type StudentRemark struct {
	ID           int64       `db:"id"`
	StudentID    int64       `db:"student_id"`
	CounselorID  int64       `db:"counselor_id"`
	ContactType  ContactType `db:"contact_type"`
	Content      string      `db:"content"`
	NextFollowUp *time.Time  `db:"next_follow_up"`
	Priority     Priority    `db:"priority"`
	CreatedAt    time.Time   `db:"created_at"`

	CounselorName string
}

// RemarkFilter narrows remark listings
type RemarkFilter struct {
	StudentID   *int64
	ContactType ContactType
	Priority    Priority
	Page        Page
}

package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

// PostgreSQL SQLSTATE codes
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation && pgErr.ConstraintName == constraintName
}

// IsUniqueViolation reports any unique violation regardless of constraint
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation
}

// ConstraintField maps a constraint name to the API field and message reported to clients
type ConstraintField struct {
	Field   string
	Message string
}

// Constraints is the lookup table used by Translate. Constraint names come from the migrations.
var Constraints = map[string]ConstraintField{
	"users_username_key":                     {"username", "A user with that username already exists."},
	"users_email_key":                        {"email", "user with this email already exists."},
	"students_email_key":                     {"email", "student with this email already exists."},
	"applications_application_id_key":        {"application_id", "application with this application id already exists."},
	"employee_performance_employee_key":      {"employee", "employee performance with this employee already exists."},
	"employee_targets_employee_type_month":   {"non_field_errors", "The fields employee, target_type, month must make a unique set."},
	"university_requirements_university_key": {"university", "university requirement with this university already exists."},
	"students_assigned_counselor_id_fkey":    {"assigned_counselor", "Invalid pk - object does not exist."},
	"student_remarks_student_id_fkey":        {"student", "Invalid pk - object does not exist."},
	"applications_student_id_fkey":           {"student", "Invalid pk - object does not exist."},
	"applications_university_id_fkey":        {"university", "Invalid pk - object does not exist."},
	"employee_targets_employee_id_fkey":      {"employee", "Invalid pk - object does not exist."},
	"employee_performance_employee_id_fkey":  {"employee", "Invalid pk - object does not exist."},
}

// Translate turns unique and foreign key violations into field errors.
// Any other error is returned unchanged.
func Translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	cf, known := Constraints[pgErr.ConstraintName]
	switch pgErr.Code {
	case CodeUniqueViolation:
		if !known {
			cf = ConstraintField{Field: "non_field_errors", Message: "A record with these values already exists."}
		}
		return apperrors.NewFieldConflictError(cf.Field, cf.Message)
	case CodeForeignKeyViolation:
		if !known {
			cf = ConstraintField{Field: "non_field_errors", Message: "Referenced object does not exist."}
		}
		return apperrors.NewFieldValidationError(cf.Field, cf.Message)
	}
	return err
}

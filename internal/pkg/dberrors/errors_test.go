package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

func TestTranslate_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "students_email_key"}

	err := Translate(fmt.Errorf("insert student: %w", pgErr))
	require.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Equal(t, []string{"student with this email already exists."}, fields["email"])
	assert.True(t, IsDuplicateConstraintError(pgErr, "students_email_key"))
	assert.False(t, IsDuplicateConstraintError(pgErr, "users_email_key"))
}

func TestTranslate_TargetUniqueSet(t *testing.T) {
	err := Translate(&pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "employee_targets_employee_type_month"})
	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Contains(t, fields, "non_field_errors")
}

func TestTranslate_ForeignKey(t *testing.T) {
	err := Translate(&pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "applications_university_id_fkey"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	fields, _ := apperrors.FieldsOf(err)
	assert.Contains(t, fields, "university")
}

func TestTranslate_PassThrough(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, Translate(plain))

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), Translate(other))
	assert.False(t, IsUniqueViolation(other))
}

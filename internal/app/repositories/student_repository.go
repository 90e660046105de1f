package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

var studentColumns = []string{
	"students.id", "students.first_name", "students.last_name", "students.email", "students.phone",
	"students.date_of_birth", "students.gender", "students.address", "students.current_education",
	"students.field_of_study", "students.institution", "students.gpa", "students.graduation_year",
	"students.english_proficiency", "students.test_score", "students.preferred_country",
	"students.intended_program", "students.preferred_field", "students.intake_year", "students.budget",
	"students.assigned_counselor_id", "students.status", "students.additional_notes",
	"students.created_at", "students.updated_at",
}

// studentOrderings whitelists the ordering query parameter
var studentOrderings = map[string]string{
	"created_at":  "students.created_at ASC",
	"-created_at": "students.created_at DESC",
	"updated_at":  "students.updated_at ASC",
	"-updated_at": "students.updated_at DESC",
	"first_name":  "students.first_name ASC",
	"-first_name": "students.first_name DESC",
	"last_name":   "students.last_name ASC",
	"-last_name":  "students.last_name DESC",
}

func scanStudent(row scanner) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone,
		&s.DateOfBirth, &s.Gender, &s.Address, &s.CurrentEducation,
		&s.FieldOfStudy, &s.Institution, &s.GPA, &s.GraduationYear,
		&s.EnglishProficiency, &s.TestScore, &s.PreferredCountry,
		&s.IntendedProgram, &s.PreferredField, &s.IntakeYear, &s.Budget,
		&s.AssignedCounselorID, &s.Status, &s.AdditionalNotes,
		&s.CreatedAt, &s.UpdatedAt,
		&s.CounselorName,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).
		Column("CASE WHEN users.id IS NULL THEN NULL ELSE " + displayName("users") + " END").
		From("students").
		LeftJoin("users ON users.id = students.assigned_counselor_id")
}

// Create inserts a student and sets its id and timestamps
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	ts := now()
	s.CreatedAt, s.UpdatedAt = ts, ts
	if s.Status == "" {
		s.Status = models.StudentStatusInquiry
	}

	query := r.sb.Insert("students").
		Columns("first_name", "last_name", "email", "phone", "date_of_birth", "gender", "address",
			"current_education", "field_of_study", "institution", "gpa", "graduation_year",
			"english_proficiency", "test_score", "preferred_country", "intended_program",
			"preferred_field", "intake_year", "budget", "assigned_counselor_id", "status",
			"additional_notes", "created_at", "updated_at").
		Values(s.FirstName, s.LastName, s.Email, s.Phone, s.DateOfBirth, s.Gender, s.Address,
			s.CurrentEducation, s.FieldOfStudy, s.Institution, s.GPA, s.GraduationYear,
			s.EnglishProficiency, s.TestScore, s.PreferredCountry, s.IntendedProgram,
			s.PreferredField, s.IntakeYear, s.Budget, s.AssignedCounselorID, s.Status,
			s.AdditionalNotes, s.CreatedAt, s.UpdatedAt).
		Suffix("RETURNING id")

	return insertReturning(ctx, r.db, query, &s.ID)
}

// GetByID retrieves a visible student with the counselor's name
func (r *StudentRepository) GetByID(ctx context.Context, id int64, scope auth.Predicate) (*models.Student, error) {
	query := r.selectStudents().
		Where(squirrel.Eq{"students.id": id}).
		Where(scope)

	return queryOne(ctx, r.db, query, scanStudent, apperrors.ErrStudentNotFound)
}

func studentConditions(filter models.StudentFilter, scope auth.Predicate) squirrel.And {
	conds := squirrel.And{scope}
	if filter.Status != "" {
		conds = append(conds, squirrel.Eq{"students.status": filter.Status})
	}
	if filter.PreferredCountry != "" {
		conds = append(conds, squirrel.Eq{"students.preferred_country": filter.PreferredCountry})
	}
	if filter.AssignedCounselorID != nil {
		conds = append(conds, squirrel.Eq{"students.assigned_counselor_id": *filter.AssignedCounselorID})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"students.first_name": pattern},
			squirrel.ILike{"students.last_name": pattern},
			squirrel.ILike{"students.email": pattern},
			squirrel.ILike{"students.phone": pattern},
		})
	}
	return conds
}

// List returns a page of visible students and the total number matching the filter
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter, scope auth.Predicate) ([]*models.Student, int64, error) {
	conds := studentConditions(filter, scope)

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("students").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	order, ok := studentOrderings[filter.Ordering]
	if !ok {
		order = studentOrderings["-created_at"]
	}

	query := paginate(r.selectStudents().Where(conds).OrderBy(order, "students.id DESC"), filter.Page)
	students, err := collect(ctx, r.db, query, scanStudent)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// Update writes every mutable column of a visible student
func (r *StudentRepository) Update(ctx context.Context, s *models.Student, scope auth.Predicate) error {
	s.UpdatedAt = now()

	query := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"first_name":            s.FirstName,
			"last_name":             s.LastName,
			"email":                 s.Email,
			"phone":                 s.Phone,
			"date_of_birth":         s.DateOfBirth,
			"gender":                s.Gender,
			"address":               s.Address,
			"current_education":     s.CurrentEducation,
			"field_of_study":        s.FieldOfStudy,
			"institution":           s.Institution,
			"gpa":                   s.GPA,
			"graduation_year":       s.GraduationYear,
			"english_proficiency":   s.EnglishProficiency,
			"test_score":            s.TestScore,
			"preferred_country":     s.PreferredCountry,
			"intended_program":      s.IntendedProgram,
			"preferred_field":       s.PreferredField,
			"intake_year":           s.IntakeYear,
			"budget":                s.Budget,
			"assigned_counselor_id": s.AssignedCounselorID,
			"status":                s.Status,
			"additional_notes":      s.AdditionalNotes,
			"updated_at":            s.UpdatedAt,
		}).
		Where(squirrel.Eq{"students.id": s.ID}).
		Where(scope)

	return execAffecting(ctx, r.db, query, apperrors.ErrStudentNotFound)
}

// Delete removes a visible student, cascading to remarks and applications
func (r *StudentRepository) Delete(ctx context.Context, id int64, scope auth.Predicate) error {
	query := r.sb.Delete("students").
		Where(squirrel.Eq{"students.id": id}).
		Where(scope)

	return execAffecting(ctx, r.db, query, apperrors.ErrStudentNotFound)
}

// Stats counts visible students per status
func (r *StudentRepository) Stats(ctx context.Context, scope auth.Predicate) (*models.StudentStats, error) {
	query := r.sb.Select("students.status", "COUNT(*)").
		From("students").
		Where(scope).
		GroupBy("students.status")

	type bucket struct {
		status models.StudentStatus
		n      int64
	}
	buckets, err := collect(ctx, r.db, query, func(row scanner) (*bucket, error) {
		var b bucket
		if err := row.Scan(&b.status, &b.n); err != nil {
			return nil, err
		}
		return &b, nil
	})
	if err != nil {
		return nil, err
	}

	stats := &models.StudentStats{ByStatus: make(map[models.StudentStatus]int64, len(models.StudentStatuses))}
	for _, b := range buckets {
		stats.ByStatus[b.status] = b.n
		stats.Total += b.n
	}
	return stats, nil
}

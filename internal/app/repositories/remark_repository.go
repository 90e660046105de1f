package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

func scanRemark(row scanner) (*models.StudentRemark, error) {
	var rm models.StudentRemark
	err := row.Scan(
		&rm.ID, &rm.StudentID, &rm.CounselorID, &rm.ContactType, &rm.Content,
		&rm.NextFollowUp, &rm.Priority, &rm.CreatedAt, &rm.CounselorName,
	)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

// RemarkRepository handles student remark database operations
type RemarkRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRemarkRepository creates a new RemarkRepository
func NewRemarkRepository(db *pgxpool.Pool) *RemarkRepository {
	return &RemarkRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func (r *RemarkRepository) selectRemarks() squirrel.SelectBuilder {
	return r.sb.Select(
		"student_remarks.id", "student_remarks.student_id", "student_remarks.counselor_id",
		"student_remarks.contact_type", "student_remarks.content", "student_remarks.next_follow_up",
		"student_remarks.priority", "student_remarks.created_at", displayName("users"),
	).
		From("student_remarks").
		Join("users ON users.id = student_remarks.counselor_id")
}

// Create inserts a remark. CounselorID must already be set to the author.
func (r *RemarkRepository) Create(ctx context.Context, rm *models.StudentRemark) error {
	rm.CreatedAt = now()
	if rm.Priority == "" {
		rm.Priority = models.PriorityMedium
	}

	query := r.sb.Insert("student_remarks").
		Columns("student_id", "counselor_id", "contact_type", "content", "next_follow_up", "priority", "created_at").
		Values(rm.StudentID, rm.CounselorID, rm.ContactType, rm.Content, rm.NextFollowUp, rm.Priority, rm.CreatedAt).
		Suffix("RETURNING id")

	return insertReturning(ctx, r.db, query, &rm.ID)
}

// GetByID retrieves a visible remark
func (r *RemarkRepository) GetByID(ctx context.Context, id int64, scope auth.Predicate) (*models.StudentRemark, error) {
	query := r.selectRemarks().
		Where(squirrel.Eq{"student_remarks.id": id}).
		Where(scope)

	return queryOne(ctx, r.db, query, scanRemark, apperrors.ErrRemarkNotFound)
}

// List returns a page of visible remarks, newest first
func (r *RemarkRepository) List(ctx context.Context, filter models.RemarkFilter, scope auth.Predicate) ([]*models.StudentRemark, int64, error) {
	conds := squirrel.And{scope}
	if filter.StudentID != nil {
		conds = append(conds, squirrel.Eq{"student_remarks.student_id": *filter.StudentID})
	}
	if filter.ContactType != "" {
		conds = append(conds, squirrel.Eq{"student_remarks.contact_type": filter.ContactType})
	}
	if filter.Priority != "" {
		conds = append(conds, squirrel.Eq{"student_remarks.priority": filter.Priority})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("student_remarks").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	query := paginate(r.selectRemarks().Where(conds).OrderBy("student_remarks.created_at DESC", "student_remarks.id DESC"), filter.Page)
	remarks, err := collect(ctx, r.db, query, scanRemark)
	if err != nil {
		return nil, 0, err
	}
	return remarks, total, nil
}

// ListByStudent returns every remark on a student, newest first
func (r *RemarkRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.StudentRemark, error) {
	query := r.selectRemarks().
		Where(squirrel.Eq{"student_remarks.student_id": studentID}).
		OrderBy("student_remarks.created_at DESC", "student_remarks.id DESC")

	return collect(ctx, r.db, query, scanRemark)
}

// Update writes the mutable columns of a visible remark. The author is never changed.
func (r *RemarkRepository) Update(ctx context.Context, rm *models.StudentRemark, scope auth.Predicate) error {
	query := r.sb.Update("student_remarks").
		Set("student_id", rm.StudentID).
		Set("contact_type", rm.ContactType).
		Set("content", rm.Content).
		Set("next_follow_up", rm.NextFollowUp).
		Set("priority", rm.Priority).
		Where(squirrel.Eq{"student_remarks.id": rm.ID}).
		Where(scope)

	return execAffecting(ctx, r.db, query, apperrors.ErrRemarkNotFound)
}

// Delete removes a visible remark
func (r *RemarkRepository) Delete(ctx context.Context, id int64, scope auth.Predicate) error {
	query := r.sb.Delete("student_remarks").
		Where(squirrel.Eq{"student_remarks.id": id}).
		Where(scope)

	return execAffecting(ctx, r.db, query, apperrors.ErrRemarkNotFound)
}

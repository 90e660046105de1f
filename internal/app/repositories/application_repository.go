package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/db"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	"github.com/yigit/abroadcrm/internal/pkg/dberrors"
)

var applicationColumns = []string{
	"applications.id", "applications.application_id", "applications.student_id", "applications.university_id",
	"applications.program", "applications.level", "applications.intake", "applications.status",
	"applications.priority", "applications.current_step", "applications.total_steps",
	"applications.application_date", "applications.estimated_decision", "applications.last_update",
	"applications.application_fee", "applications.created_at", "applications.updated_at",
	"TRIM(students.first_name || ' ' || students.last_name)", "universities.name",
}

var documentColumns = []string{
	"id", "application_id", "name", "document_type", "status", "upload_date", "comments", "file_key",
	"created_at", "updated_at",
}

func scanApplication(row scanner) (*models.Application, error) {
	var a models.Application
	err := row.Scan(
		&a.ID, &a.ApplicationID, &a.StudentID, &a.UniversityID,
		&a.Program, &a.Level, &a.Intake, &a.Status,
		&a.Priority, &a.CurrentStep, &a.TotalSteps,
		&a.ApplicationDate, &a.EstimatedDecision, &a.LastUpdate,
		&a.ApplicationFee, &a.CreatedAt, &a.UpdatedAt,
		&a.StudentName, &a.UniversityName,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanDocument(row scanner) (*models.ApplicationDocument, error) {
	var d models.ApplicationDocument
	err := row.Scan(
		&d.ID, &d.ApplicationID, &d.Name, &d.DocumentType, &d.Status, &d.UploadDate, &d.Comments, &d.FileKey,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanTimeline(row scanner) (*models.ApplicationTimeline, error) {
	var t models.ApplicationTimeline
	if err := row.Scan(&t.ID, &t.ApplicationID, &t.Status, &t.Description, &t.Date, &t.Completed, &t.IsCurrent); err != nil {
		return nil, err
	}
	return &t, nil
}

// ApplicationRepository handles application, document and timeline database operations
type ApplicationRepository struct {
	database *db.PostgresDB
	db       *pgxpool.Pool
	sb       squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(database *db.PostgresDB) *ApplicationRepository {
	return &ApplicationRepository{
		database: database,
		db:       database.Pool,
		sb:       statementBuilder(),
	}
}

func (r *ApplicationRepository) selectApplications() squirrel.SelectBuilder {
	return r.sb.Select(applicationColumns...).
		From("applications").
		Join("students ON students.id = applications.student_id").
		Join("universities ON universities.id = applications.university_id")
}

// Create inserts an application with lifecycle defaults
func (r *ApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	ts := now()
	a.CreatedAt, a.UpdatedAt, a.LastUpdate = ts, ts, ts
	if a.Status == "" {
		a.Status = models.AppStatusInquiryReceived
	}
	if a.Priority == "" {
		a.Priority = models.PriorityMedium
	}

	query := r.sb.Insert("applications").
		Columns("application_id", "student_id", "university_id", "program", "level", "intake", "status",
			"priority", "current_step", "total_steps", "application_date", "estimated_decision",
			"last_update", "application_fee", "created_at", "updated_at").
		Values(a.ApplicationID, a.StudentID, a.UniversityID, a.Program, a.Level, a.Intake, a.Status,
			a.Priority, a.CurrentStep, a.TotalSteps, a.ApplicationDate, a.EstimatedDecision,
			a.LastUpdate, a.ApplicationFee, a.CreatedAt, a.UpdatedAt).
		Suffix("RETURNING id")

	return insertReturning(ctx, r.db, query, &a.ID)
}

// GetByID retrieves a visible application with student and university names
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64, scope auth.Predicate) (*models.Application, error) {
	query := r.selectApplications().
		Where(squirrel.Eq{"applications.id": id}).
		Where(scope)

	return queryOne(ctx, r.db, query, scanApplication, apperrors.ErrApplicationNotFound)
}

// List returns a page of visible applications, newest first
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter, scope auth.Predicate) ([]*models.Application, int64, error) {
	conds := squirrel.And{scope}
	if filter.Status != "" {
		conds = append(conds, squirrel.Eq{"applications.status": filter.Status})
	}
	if filter.StudentID != nil {
		conds = append(conds, squirrel.Eq{"applications.student_id": *filter.StudentID})
	}
	if filter.UniversityID != nil {
		conds = append(conds, squirrel.Eq{"applications.university_id": *filter.UniversityID})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("applications").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	query := paginate(r.selectApplications().Where(conds).OrderBy("applications.created_at DESC", "applications.id DESC"), filter.Page)
	apps, err := collect(ctx, r.db, query, scanApplication)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Update writes every mutable column of a visible application
func (r *ApplicationRepository) Update(ctx context.Context, a *models.Application, scope auth.Predicate) error {
	ts := now()
	a.UpdatedAt, a.LastUpdate = ts, ts

	query := r.sb.Update("applications").
		SetMap(map[string]interface{}{
			"application_id":     a.ApplicationID,
			"student_id":         a.StudentID,
			"university_id":      a.UniversityID,
			"program":            a.Program,
			"level":              a.Level,
			"intake":             a.Intake,
			"status":             a.Status,
			"priority":           a.Priority,
			"current_step":       a.CurrentStep,
			"total_steps":        a.TotalSteps,
			"application_date":   a.ApplicationDate,
			"estimated_decision": a.EstimatedDecision,
			"last_update":        a.LastUpdate,
			"application_fee":    a.ApplicationFee,
			"updated_at":         a.UpdatedAt,
		}).
		Where(squirrel.Eq{"applications.id": a.ID}).
		Where(scope)

	return execAffecting(ctx, r.db, query, apperrors.ErrApplicationNotFound)
}

// Delete removes a visible application with its documents and timeline
func (r *ApplicationRepository) Delete(ctx context.Context, id int64, scope auth.Predicate) error {
	query := r.sb.Delete("applications").
		Where(squirrel.Eq{"applications.id": id}).
		Where(scope)

	return execAffecting(ctx, r.db, query, apperrors.ErrApplicationNotFound)
}

// CreateDocument inserts a document
func (r *ApplicationRepository) CreateDocument(ctx context.Context, d *models.ApplicationDocument) error {
	ts := now()
	d.CreatedAt, d.UpdatedAt = ts, ts
	if d.Status == "" {
		d.Status = "pending"
	}

	query := r.sb.Insert("application_documents").
		Columns("application_id", "name", "document_type", "status", "upload_date", "comments", "file_key", "created_at", "updated_at").
		Values(d.ApplicationID, d.Name, d.DocumentType, d.Status, d.UploadDate, d.Comments, d.FileKey, d.CreatedAt, d.UpdatedAt).
		Suffix("RETURNING id")

	return insertReturning(ctx, r.db, query, &d.ID)
}

// GetDocument retrieves a document belonging to applicationID
func (r *ApplicationRepository) GetDocument(ctx context.Context, applicationID, documentID int64) (*models.ApplicationDocument, error) {
	query := r.sb.Select(documentColumns...).
		From("application_documents").
		Where(squirrel.Eq{"id": documentID, "application_id": applicationID})

	return queryOne(ctx, r.db, query, scanDocument, apperrors.ErrDocumentNotFound)
}

// ListDocuments returns an application's documents ordered by name
func (r *ApplicationRepository) ListDocuments(ctx context.Context, applicationID int64) ([]*models.ApplicationDocument, error) {
	query := r.sb.Select(documentColumns...).
		From("application_documents").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("name ASC", "id ASC")

	return collect(ctx, r.db, query, scanDocument)
}

// UpdateDocument rewrites a document's mutable columns
func (r *ApplicationRepository) UpdateDocument(ctx context.Context, d *models.ApplicationDocument) error {
	d.UpdatedAt = now()

	query := r.sb.Update("application_documents").
		Set("name", d.Name).
		Set("document_type", d.DocumentType).
		Set("status", d.Status).
		Set("upload_date", d.UploadDate).
		Set("comments", d.Comments).
		Set("file_key", d.FileKey).
		Set("updated_at", d.UpdatedAt).
		Where(squirrel.Eq{"id": d.ID, "application_id": d.ApplicationID})

	return execAffecting(ctx, r.db, query, apperrors.ErrDocumentNotFound)
}

// DeleteDocument removes a document belonging to applicationID
func (r *ApplicationRepository) DeleteDocument(ctx context.Context, applicationID, documentID int64) error {
	query := r.sb.Delete("application_documents").
		Where(squirrel.Eq{"id": documentID, "application_id": applicationID})

	return execAffecting(ctx, r.db, query, apperrors.ErrDocumentNotFound)
}

// AddTimelineEntry appends an entry in a transaction, clearing other current entries first
// when the new one is current
func (r *ApplicationRepository) AddTimelineEntry(ctx context.Context, entry *models.ApplicationTimeline) error {
	return r.database.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if entry.IsCurrent {
			sql, args, err := r.sb.Update("application_timeline").
				Set("is_current", false).
				Where(squirrel.Eq{"application_id": entry.ApplicationID, "is_current": true}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build clear current query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("error clearing current timeline entry: %w", err)
			}
		}

		sql, args, err := r.sb.Insert("application_timeline").
			Columns("application_id", "status", "description", "date", "completed", "is_current").
			Values(entry.ApplicationID, entry.Status, entry.Description, entry.Date, entry.Completed, entry.IsCurrent).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build timeline insert query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&entry.ID); err != nil {
			if translated := dberrors.Translate(err); translated != err {
				return translated
			}
			return fmt.Errorf("error inserting timeline entry: %w", err)
		}

		sql, args, err = r.sb.Update("applications").
			Set("last_update", now()).
			Where(squirrel.Eq{"id": entry.ApplicationID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build last update query: %w", err)
		}
		_, err = tx.Exec(ctx, sql, args...)
		return err
	})
}

// ListTimeline returns an application's history ordered by date
func (r *ApplicationRepository) ListTimeline(ctx context.Context, applicationID int64) ([]*models.ApplicationTimeline, error) {
	query := r.sb.Select("id", "application_id", "status", "description", "date", "completed", "is_current").
		From("application_timeline").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("date ASC", "id ASC")

	return collect(ctx, r.db, query, scanTimeline)
}

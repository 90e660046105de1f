package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

var universityColumns = []string{
	"universities.id", "universities.name", "universities.country", "universities.city",
	"universities.website", "universities.type", "universities.established_year", "universities.ranking",
	"universities.world_ranking", "universities.rating", "universities.total_students",
	"universities.international_students", "universities.acceptance_rate", "universities.tuition_fee_range",
	"universities.application_fee", "universities.partnership_status", "universities.created_at",
	"universities.updated_at",
}

func scanUniversity(row scanner) (*models.University, error) {
	var u models.University
	err := row.Scan(
		&u.ID, &u.Name, &u.Country, &u.City,
		&u.Website, &u.Type, &u.EstablishedYear, &u.Ranking,
		&u.WorldRanking, &u.Rating, &u.TotalStudents,
		&u.InternationalStudents, &u.AcceptanceRate, &u.TuitionFeeRange,
		&u.ApplicationFee, &u.PartnershipStatus, &u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanProgram(row scanner) (*models.UniversityProgram, error) {
	var p models.UniversityProgram
	if err := row.Scan(&p.ID, &p.UniversityID, &p.Name, &p.Level, &p.Duration, &p.AnnualFee, &p.Requirements); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanRequirement(row scanner) (*models.UniversityRequirement, error) {
	var q models.UniversityRequirement
	err := row.Scan(&q.ID, &q.UniversityID, &q.EnglishTests, &q.AcademicRequirements, &q.DocumentsRequired, &q.ApplicationDeadlines)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// UniversityRepository handles university, program and requirement database operations
type UniversityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUniversityRepository creates a new UniversityRepository
func NewUniversityRepository(db *pgxpool.Pool) *UniversityRepository {
	return &UniversityRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create inserts a university
func (r *UniversityRepository) Create(ctx context.Context, u *models.University) error {
	ts := now()
	u.CreatedAt, u.UpdatedAt = ts, ts
	if u.PartnershipStatus == "" {
		u.PartnershipStatus = "standard"
	}

	query := r.sb.Insert("universities").
		Columns("name", "country", "city", "website", "type", "established_year", "ranking",
			"world_ranking", "rating", "total_students", "international_students", "acceptance_rate",
			"tuition_fee_range", "application_fee", "partnership_status", "created_at", "updated_at").
		Values(u.Name, u.Country, u.City, u.Website, u.Type, u.EstablishedYear, u.Ranking,
			u.WorldRanking, u.Rating, u.TotalStudents, u.InternationalStudents, u.AcceptanceRate,
			u.TuitionFeeRange, u.ApplicationFee, u.PartnershipStatus, u.CreatedAt, u.UpdatedAt).
		Suffix("RETURNING id")

	return insertReturning(ctx, r.db, query, &u.ID)
}

// GetByID retrieves a university
func (r *UniversityRepository) GetByID(ctx context.Context, id int64) (*models.University, error) {
	query := r.sb.Select(universityColumns...).
		From("universities").
		Where(squirrel.Eq{"universities.id": id})

	return queryOne(ctx, r.db, query, scanUniversity, apperrors.ErrUniversityNotFound)
}

// List returns a page of universities ordered by name
func (r *UniversityRepository) List(ctx context.Context, filter models.UniversityFilter) ([]*models.University, int64, error) {
	conds := squirrel.And{}
	if filter.Country != "" {
		conds = append(conds, squirrel.Eq{"universities.country": filter.Country})
	}
	if filter.Type != "" {
		conds = append(conds, squirrel.Eq{"universities.type": filter.Type})
	}
	if filter.PartnershipStatus != "" {
		conds = append(conds, squirrel.Eq{"universities.partnership_status": filter.PartnershipStatus})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"universities.name": pattern},
			squirrel.ILike{"universities.city": pattern},
		})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("universities").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	query := paginate(r.sb.Select(universityColumns...).From("universities").Where(conds).OrderBy("universities.name ASC"), filter.Page)
	universities, err := collect(ctx, r.db, query, scanUniversity)
	if err != nil {
		return nil, 0, err
	}
	return universities, total, nil
}

// Update writes every mutable column of a university
func (r *UniversityRepository) Update(ctx context.Context, u *models.University) error {
	u.UpdatedAt = now()

	query := r.sb.Update("universities").
		SetMap(map[string]interface{}{
			"name":                   u.Name,
			"country":                u.Country,
			"city":                   u.City,
			"website":                u.Website,
			"type":                   u.Type,
			"established_year":       u.EstablishedYear,
			"ranking":                u.Ranking,
			"world_ranking":          u.WorldRanking,
			"rating":                 u.Rating,
			"total_students":         u.TotalStudents,
			"international_students": u.InternationalStudents,
			"acceptance_rate":        u.AcceptanceRate,
			"tuition_fee_range":      u.TuitionFeeRange,
			"application_fee":        u.ApplicationFee,
			"partnership_status":     u.PartnershipStatus,
			"updated_at":             u.UpdatedAt,
		}).
		Where(squirrel.Eq{"universities.id": u.ID})

	return execAffecting(ctx, r.db, query, apperrors.ErrUniversityNotFound)
}

// Delete removes a university with its programs, requirements and applications
func (r *UniversityRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, r.sb.Delete("universities").Where(squirrel.Eq{"universities.id": id}), apperrors.ErrUniversityNotFound)
}

// CreateProgram inserts a program
func (r *UniversityRepository) CreateProgram(ctx context.Context, p *models.UniversityProgram) error {
	query := r.sb.Insert("university_programs").
		Columns("university_id", "name", "level", "duration", "annual_fee", "requirements").
		Values(p.UniversityID, p.Name, p.Level, p.Duration, p.AnnualFee, p.Requirements).
		Suffix("RETURNING id")

	return insertReturning(ctx, r.db, query, &p.ID)
}

// ListPrograms returns a university's programs ordered by name
func (r *UniversityRepository) ListPrograms(ctx context.Context, universityID int64) ([]*models.UniversityProgram, error) {
	query := r.sb.Select("id", "university_id", "name", "level", "duration", "annual_fee", "requirements").
		From("university_programs").
		Where(squirrel.Eq{"university_id": universityID}).
		OrderBy("name ASC")

	return collect(ctx, r.db, query, scanProgram)
}

// UpdateProgram rewrites a program belonging to its university
func (r *UniversityRepository) UpdateProgram(ctx context.Context, p *models.UniversityProgram) error {
	query := r.sb.Update("university_programs").
		Set("name", p.Name).
		Set("level", p.Level).
		Set("duration", p.Duration).
		Set("annual_fee", p.AnnualFee).
		Set("requirements", p.Requirements).
		Where(squirrel.Eq{"id": p.ID, "university_id": p.UniversityID})

	return execAffecting(ctx, r.db, query, apperrors.ErrProgramNotFound)
}

// DeleteProgram removes a program belonging to universityID
func (r *UniversityRepository) DeleteProgram(ctx context.Context, universityID, programID int64) error {
	query := r.sb.Delete("university_programs").
		Where(squirrel.Eq{"id": programID, "university_id": universityID})

	return execAffecting(ctx, r.db, query, apperrors.ErrProgramNotFound)
}

// GetRequirement returns a university's admission requirements
func (r *UniversityRepository) GetRequirement(ctx context.Context, universityID int64) (*models.UniversityRequirement, error) {
	query := r.sb.Select("id", "university_id", "english_tests", "academic_requirements", "documents_required", "application_deadlines").
		From("university_requirements").
		Where(squirrel.Eq{"university_id": universityID})

	return queryOne(ctx, r.db, query, scanRequirement, apperrors.ErrRequirementNotFound)
}

// UpsertRequirement creates or replaces the requirements of a university
func (r *UniversityRepository) UpsertRequirement(ctx context.Context, q *models.UniversityRequirement) error {
	query := r.sb.Insert("university_requirements").
		Columns("university_id", "english_tests", "academic_requirements", "documents_required", "application_deadlines").
		Values(q.UniversityID, q.EnglishTests, q.AcademicRequirements, q.DocumentsRequired, q.ApplicationDeadlines).
		Suffix(`ON CONFLICT (university_id) DO UPDATE SET
			english_tests = EXCLUDED.english_tests,
			academic_requirements = EXCLUDED.academic_requirements,
			documents_required = EXCLUDED.documents_required,
			application_deadlines = EXCLUDED.application_deadlines
			RETURNING id`)

	return insertReturning(ctx, r.db, query, &q.ID)
}

package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

func scanPerformance(row scanner) (*models.EmployeePerformance, error) {
	var p models.EmployeePerformance
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.AssignedStudents, &p.CompletedApplications, &p.SuccessRate,
		&p.RevenueGenerated, &p.Rating, &p.MonthlyTargetStudents, &p.MonthlyTargetApplications,
		&p.MonthlyTargetRevenue, &p.LastUpdated, &p.EmployeeName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanTarget(row scanner) (*models.EmployeeTarget, error) {
	var t models.EmployeeTarget
	err := row.Scan(&t.ID, &t.EmployeeID, &t.TargetType, &t.TargetValue, &t.AchievedValue, &t.Month, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EmployeeRepository handles employee performance and target database operations
type EmployeeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func (r *EmployeeRepository) selectPerformance() squirrel.SelectBuilder {
	return r.sb.Select(
		"employee_performance.id", "employee_performance.employee_id",
		"employee_performance.assigned_students", "employee_performance.completed_applications",
		"employee_performance.success_rate", "employee_performance.revenue_generated",
		"employee_performance.rating", "employee_performance.monthly_target_students",
		"employee_performance.monthly_target_applications", "employee_performance.monthly_target_revenue",
		"employee_performance.last_updated", displayName("users"),
	).
		From("employee_performance").
		Join("users ON users.id = employee_performance.employee_id")
}

func (r *EmployeeRepository) selectTargets() squirrel.SelectBuilder {
	return r.sb.Select(
		"employee_targets.id", "employee_targets.employee_id", "employee_targets.target_type",
		"employee_targets.target_value", "employee_targets.achieved_value", "employee_targets.month",
		"employee_targets.created_at",
	).From("employee_targets")
}

// GetPerformance retrieves the visible performance row of an employee
func (r *EmployeeRepository) GetPerformance(ctx context.Context, employeeID int64, scope auth.Predicate) (*models.EmployeePerformance, error) {
	query := r.selectPerformance().
		Where(squirrel.Eq{"employee_performance.employee_id": employeeID}).
		Where(scope)

	return queryOne(ctx, r.db, query, scanPerformance, apperrors.ErrPerformanceNotFound)
}

// ListPerformance returns a page of visible performance rows
func (r *EmployeeRepository) ListPerformance(ctx context.Context, page models.Page, scope auth.Predicate) ([]*models.EmployeePerformance, int64, error) {
	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("employee_performance").Where(scope))
	if err != nil {
		return nil, 0, err
	}

	query := paginate(r.selectPerformance().Where(scope).OrderBy("employee_performance.employee_id ASC"), page)
	items, err := collect(ctx, r.db, query, scanPerformance)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpsertPerformance creates or replaces the performance row of p.EmployeeID
func (r *EmployeeRepository) UpsertPerformance(ctx context.Context, p *models.EmployeePerformance) error {
	p.LastUpdated = now()

	query := r.sb.Insert("employee_performance").
		Columns("employee_id", "assigned_students", "completed_applications", "success_rate",
			"revenue_generated", "rating", "monthly_target_students", "monthly_target_applications",
			"monthly_target_revenue", "last_updated").
		Values(p.EmployeeID, p.AssignedStudents, p.CompletedApplications, p.SuccessRate,
			p.RevenueGenerated, p.Rating, p.MonthlyTargetStudents, p.MonthlyTargetApplications,
			p.MonthlyTargetRevenue, p.LastUpdated).
		Suffix(`ON CONFLICT (employee_id) DO UPDATE SET
			assigned_students = EXCLUDED.assigned_students,
			completed_applications = EXCLUDED.completed_applications,
			success_rate = EXCLUDED.success_rate,
			revenue_generated = EXCLUDED.revenue_generated,
			rating = EXCLUDED.rating,
			monthly_target_students = EXCLUDED.monthly_target_students,
			monthly_target_applications = EXCLUDED.monthly_target_applications,
			monthly_target_revenue = EXCLUDED.monthly_target_revenue,
			last_updated = EXCLUDED.last_updated
			RETURNING id`)

	return insertReturning(ctx, r.db, query, &p.ID)
}

// CreateTarget inserts a monthly target
func (r *EmployeeRepository) CreateTarget(ctx context.Context, t *models.EmployeeTarget) error {
	t.CreatedAt = now()
	t.Month = models.FirstOfMonth(t.Month)

	query := r.sb.Insert("employee_targets").
		Columns("employee_id", "target_type", "target_value", "achieved_value", "month", "created_at").
		Values(t.EmployeeID, t.TargetType, t.TargetValue, t.AchievedValue, t.Month, t.CreatedAt).
		Suffix("RETURNING id")

	return insertReturning(ctx, r.db, query, &t.ID)
}

// GetTarget retrieves a visible target
func (r *EmployeeRepository) GetTarget(ctx context.Context, id int64, scope auth.Predicate) (*models.EmployeeTarget, error) {
	query := r.selectTargets().
		Where(squirrel.Eq{"employee_targets.id": id}).
		Where(scope)

	return queryOne(ctx, r.db, query, scanTarget, apperrors.ErrTargetNotFound)
}

// ListTargets returns a page of visible targets, latest month first
func (r *EmployeeRepository) ListTargets(ctx context.Context, filter models.TargetFilter, scope auth.Predicate) ([]*models.EmployeeTarget, int64, error) {
	conds := squirrel.And{scope}
	if filter.EmployeeID != nil {
		conds = append(conds, squirrel.Eq{"employee_targets.employee_id": *filter.EmployeeID})
	}
	if filter.Month != nil {
		conds = append(conds, squirrel.Eq{"employee_targets.month": models.FirstOfMonth(*filter.Month)})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("employee_targets").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	query := paginate(r.selectTargets().Where(conds).OrderBy("employee_targets.month DESC", "employee_targets.target_type ASC"), filter.Page)
	items, err := collect(ctx, r.db, query, scanTarget)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteTarget removes a visible target
func (r *EmployeeRepository) DeleteTarget(ctx context.Context, id int64, scope auth.Predicate) error {
	query := r.sb.Delete("employee_targets").
		Where(squirrel.Eq{"employee_targets.id": id}).
		Where(scope)

	return execAffecting(ctx, r.db, query, apperrors.ErrTargetNotFound)
}

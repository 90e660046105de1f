package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/app/repositories"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
)

// EmployeeService defines the interface for staff performance and target operations
type EmployeeService interface {
	ListPerformance(ctx context.Context, identity auth.Identity, page models.Page) (*dto.PaginatedResponse, error)
	GetPerformance(ctx context.Context, identity auth.Identity, employeeID int64) (*dto.PerformanceResponse, error)
	PutPerformance(ctx context.Context, identity auth.Identity, employeeID int64, req dto.PerformanceRequest) (*dto.PerformanceResponse, error)

	ListTargets(ctx context.Context, identity auth.Identity, filter models.TargetFilter) (*dto.PaginatedResponse, error)
	// CreateTarget sets a monthly target. Non-admins may only target themselves.
	CreateTarget(ctx context.Context, identity auth.Identity, req dto.TargetRequest) (*dto.TargetResponse, error)
	DeleteTarget(ctx context.Context, identity auth.Identity, id int64) error
}

type employeeServiceImpl struct {
	employeeRepo repositories.EmployeeStore
	userRepo     repositories.UserStore
	policy       auth.Policy
	logger       zerolog.Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(
	employeeRepo repositories.EmployeeStore,
	userRepo repositories.UserStore,
	policy auth.Policy,
	logger zerolog.Logger,
) EmployeeService {
	return &employeeServiceImpl{
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		policy:       policy,
		logger:       logger,
	}
}

func (s *employeeServiceImpl) ListPerformance(ctx context.Context, identity auth.Identity, page models.Page) (*dto.PaginatedResponse, error) {
	page = helpers.NormalizePage(page)
	items, total, err := s.employeeRepo.ListPerformance(ctx, page, s.policy.VisibleRows(identity, auth.EntityPerformance))
	if err != nil {
		return nil, fmt.Errorf("error listing performance: %w", err)
	}
	resp := helpers.NewPaginatedResponse(dto.FromPerformances(items), total, page)
	return &resp, nil
}

func (s *employeeServiceImpl) GetPerformance(ctx context.Context, identity auth.Identity, employeeID int64) (*dto.PerformanceResponse, error) {
	p, err := s.employeeRepo.GetPerformance(ctx, employeeID, s.policy.VisibleRows(identity, auth.EntityPerformance))
	if err != nil {
		return nil, err
	}
	resp := dto.FromPerformance(p)
	return &resp, nil
}

func (s *employeeServiceImpl) PutPerformance(ctx context.Context, identity auth.Identity, employeeID int64, req dto.PerformanceRequest) (*dto.PerformanceResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	employee, err := s.userRepo.GetByID(ctx, employeeID, auth.Unscoped(auth.EntityUser))
	if err != nil {
		return nil, err
	}

	p := req.ToModel(employeeID)
	if err := s.employeeRepo.UpsertPerformance(ctx, p); err != nil {
		return nil, err
	}
	p.EmployeeName = employee.FullName()

	resp := dto.FromPerformance(p)
	return &resp, nil
}

func (s *employeeServiceImpl) ListTargets(ctx context.Context, identity auth.Identity, filter models.TargetFilter) (*dto.PaginatedResponse, error) {
	filter.Page = helpers.NormalizePage(filter.Page)
	items, total, err := s.employeeRepo.ListTargets(ctx, filter, s.policy.VisibleRows(identity, auth.EntityTarget))
	if err != nil {
		return nil, fmt.Errorf("error listing targets: %w", err)
	}
	resp := helpers.NewPaginatedResponse(dto.FromTargets(items), total, filter.Page)
	return &resp, nil
}

func (s *employeeServiceImpl) CreateTarget(ctx context.Context, identity auth.Identity, req dto.TargetRequest) (*dto.TargetResponse, error) {
	employeeID := identity.UserID
	if req.Employee != nil {
		employeeID = *req.Employee
	}
	if employeeID != identity.UserID && !identity.IsAdmin() {
		return nil, apperrors.NewFieldValidationError("employee", "You may only set targets for yourself.")
	}

	t := req.ToModel(employeeID)
	if err := s.employeeRepo.CreateTarget(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("targetID", t.ID).Int64("employeeID", employeeID).Str("type", t.TargetType).Msg("Target created")
	resp := dto.FromTarget(t)
	return &resp, nil
}

func (s *employeeServiceImpl) DeleteTarget(ctx context.Context, identity auth.Identity, id int64) error {
	return s.employeeRepo.DeleteTarget(ctx, id, s.policy.VisibleRows(identity, auth.EntityTarget))
}

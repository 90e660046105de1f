package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/app/repositories"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
)

// UniversityService defines the interface for university, program and requirement operations.
// Reads are open to every authenticated user, writes need the admin role.
type UniversityService interface {
	List(ctx context.Context, filter models.UniversityFilter) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, id int64) (*dto.UniversityResponse, error)
	Create(ctx context.Context, identity auth.Identity, req dto.UniversityRequest) (*dto.UniversityRequest, error)
	RequestFor(ctx context.Context, id int64) (dto.UniversityRequest, error)
	Update(ctx context.Context, identity auth.Identity, id int64, req dto.UniversityRequest) (*dto.UniversityRequest, error)
	Delete(ctx context.Context, identity auth.Identity, id int64) error

	ListPrograms(ctx context.Context, universityID int64) ([]dto.ProgramResponse, error)
	CreateProgram(ctx context.Context, identity auth.Identity, universityID int64, req dto.ProgramRequest) (*dto.ProgramResponse, error)
	UpdateProgram(ctx context.Context, identity auth.Identity, universityID, programID int64, req dto.ProgramRequest) (*dto.ProgramResponse, error)
	DeleteProgram(ctx context.Context, identity auth.Identity, universityID, programID int64) error

	GetRequirements(ctx context.Context, universityID int64) (*dto.RequirementResponse, error)
	PutRequirements(ctx context.Context, identity auth.Identity, universityID int64, req dto.RequirementRequest) (*dto.RequirementResponse, error)
}

type universityServiceImpl struct {
	universityRepo repositories.UniversityStore
	logger         zerolog.Logger
}

// NewUniversityService creates a new UniversityService
func NewUniversityService(universityRepo repositories.UniversityStore, logger zerolog.Logger) UniversityService {
	return &universityServiceImpl{
		universityRepo: universityRepo,
		logger:         logger,
	}
}

func (s *universityServiceImpl) List(ctx context.Context, filter models.UniversityFilter) (*dto.PaginatedResponse, error) {
	filter.Page = helpers.NormalizePage(filter.Page)
	universities, total, err := s.universityRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing universities: %w", err)
	}
	for _, u := range universities {
		if err := s.withChildren(ctx, u); err != nil {
			return nil, err
		}
	}
	resp := helpers.NewPaginatedResponse(dto.FromUniversities(universities), total, filter.Page)
	return &resp, nil
}

// withChildren loads programs and, when present, requirements
func (s *universityServiceImpl) withChildren(ctx context.Context, u *models.University) error {
	programs, err := s.universityRepo.ListPrograms(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("error loading programs: %w", err)
	}
	u.Programs = programs

	req, err := s.universityRepo.GetRequirement(ctx, u.ID)
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		u.Requirements = nil
	case err != nil:
		return fmt.Errorf("error loading requirements: %w", err)
	default:
		u.Requirements = req
	}
	return nil
}

func (s *universityServiceImpl) Get(ctx context.Context, id int64) (*dto.UniversityResponse, error) {
	u, err := s.universityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.withChildren(ctx, u); err != nil {
		return nil, err
	}
	resp := dto.FromUniversity(u)
	return &resp, nil
}

func (s *universityServiceImpl) Create(ctx context.Context, identity auth.Identity, req dto.UniversityRequest) (*dto.UniversityRequest, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	u := req.ToModel()
	if err := s.universityRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("universityID", u.ID).Str("name", u.Name).Msg("University created")
	resp := dto.NewUniversityRequest(u)
	return &resp, nil
}

func (s *universityServiceImpl) RequestFor(ctx context.Context, id int64) (dto.UniversityRequest, error) {
	u, err := s.universityRepo.GetByID(ctx, id)
	if err != nil {
		return dto.UniversityRequest{}, err
	}
	return dto.NewUniversityRequest(u), nil
}

func (s *universityServiceImpl) Update(ctx context.Context, identity auth.Identity, id int64, req dto.UniversityRequest) (*dto.UniversityRequest, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	u, err := s.universityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.ApplyTo(u)
	if err := s.universityRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := dto.NewUniversityRequest(u)
	return &resp, nil
}

func (s *universityServiceImpl) Delete(ctx context.Context, identity auth.Identity, id int64) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	if err := s.universityRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("universityID", id).Msg("University deleted")
	return nil
}

func (s *universityServiceImpl) ListPrograms(ctx context.Context, universityID int64) ([]dto.ProgramResponse, error) {
	if _, err := s.universityRepo.GetByID(ctx, universityID); err != nil {
		return nil, err
	}
	programs, err := s.universityRepo.ListPrograms(ctx, universityID)
	if err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}
	return dto.FromPrograms(programs), nil
}

func (s *universityServiceImpl) CreateProgram(ctx context.Context, identity auth.Identity, universityID int64, req dto.ProgramRequest) (*dto.ProgramResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if _, err := s.universityRepo.GetByID(ctx, universityID); err != nil {
		return nil, err
	}

	program := &models.UniversityProgram{UniversityID: universityID}
	req.ApplyTo(program)
	if err := s.universityRepo.CreateProgram(ctx, program); err != nil {
		return nil, err
	}

	resp := dto.FromProgram(program)
	return &resp, nil
}

func (s *universityServiceImpl) UpdateProgram(ctx context.Context, identity auth.Identity, universityID, programID int64, req dto.ProgramRequest) (*dto.ProgramResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	program := &models.UniversityProgram{ID: programID, UniversityID: universityID}
	req.ApplyTo(program)
	if err := s.universityRepo.UpdateProgram(ctx, program); err != nil {
		return nil, err
	}

	resp := dto.FromProgram(program)
	return &resp, nil
}

func (s *universityServiceImpl) DeleteProgram(ctx context.Context, identity auth.Identity, universityID, programID int64) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	return s.universityRepo.DeleteProgram(ctx, universityID, programID)
}

func (s *universityServiceImpl) GetRequirements(ctx context.Context, universityID int64) (*dto.RequirementResponse, error) {
	if _, err := s.universityRepo.GetByID(ctx, universityID); err != nil {
		return nil, err
	}
	req, err := s.universityRepo.GetRequirement(ctx, universityID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromRequirement(req)
	return &resp, nil
}

func (s *universityServiceImpl) PutRequirements(ctx context.Context, identity auth.Identity, universityID int64, req dto.RequirementRequest) (*dto.RequirementResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if _, err := s.universityRepo.GetByID(ctx, universityID); err != nil {
		return nil, err
	}

	requirement := &models.UniversityRequirement{UniversityID: universityID}
	req.ApplyTo(requirement)
	if err := s.universityRepo.UpsertRequirement(ctx, requirement); err != nil {
		return nil, err
	}

	resp := dto.FromRequirement(requirement)
	return &resp, nil
}

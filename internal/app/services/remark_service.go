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

// RemarkService defines the interface for counselor remark operations
type RemarkService interface {
	List(ctx context.Context, identity auth.Identity, filter models.RemarkFilter) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, identity auth.Identity, id int64) (*dto.RemarkResponse, error)
	// Create records a remark authored by the requester, whatever counselor the request names
	Create(ctx context.Context, identity auth.Identity, req dto.RemarkRequest) (*dto.RemarkRequest, error)
	RequestFor(ctx context.Context, identity auth.Identity, id int64) (dto.RemarkRequest, error)
	Update(ctx context.Context, identity auth.Identity, id int64, req dto.RemarkRequest) (*dto.RemarkRequest, error)
	Delete(ctx context.Context, identity auth.Identity, id int64) error
}

type remarkServiceImpl struct {
	remarkRepo  repositories.RemarkStore
	studentRepo repositories.StudentStore
	policy      auth.Policy
	logger      zerolog.Logger
}

// NewRemarkService creates a new RemarkService
func NewRemarkService(
	remarkRepo repositories.RemarkStore,
	studentRepo repositories.StudentStore,
	policy auth.Policy,
	logger zerolog.Logger,
) RemarkService {
	return &remarkServiceImpl{
		remarkRepo:  remarkRepo,
		studentRepo: studentRepo,
		policy:      policy,
		logger:      logger,
	}
}

func (s *remarkServiceImpl) scope(identity auth.Identity) auth.Predicate {
	return s.policy.VisibleRows(identity, auth.EntityRemark)
}

// checkStudent rejects students the requester cannot see, the same way as absent ones
func (s *remarkServiceImpl) checkStudent(ctx context.Context, identity auth.Identity, studentID int64) error {
	_, err := s.studentRepo.GetByID(ctx, studentID, s.policy.VisibleRows(identity, auth.EntityStudent))
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return apperrors.NewFieldValidationError("student", invalidPK)
	}
	return err
}

func (s *remarkServiceImpl) List(ctx context.Context, identity auth.Identity, filter models.RemarkFilter) (*dto.PaginatedResponse, error) {
	filter.Page = helpers.NormalizePage(filter.Page)
	remarks, total, err := s.remarkRepo.List(ctx, filter, s.scope(identity))
	if err != nil {
		return nil, fmt.Errorf("error listing remarks: %w", err)
	}
	resp := helpers.NewPaginatedResponse(dto.FromRemarks(remarks), total, filter.Page)
	return &resp, nil
}

func (s *remarkServiceImpl) Get(ctx context.Context, identity auth.Identity, id int64) (*dto.RemarkResponse, error) {
	remark, err := s.remarkRepo.GetByID(ctx, id, s.scope(identity))
	if err != nil {
		return nil, err
	}
	resp := dto.FromRemark(remark)
	return &resp, nil
}

func (s *remarkServiceImpl) Create(ctx context.Context, identity auth.Identity, req dto.RemarkRequest) (*dto.RemarkRequest, error) {
	if err := s.checkStudent(ctx, identity, req.Student); err != nil {
		return nil, err
	}

	remark := req.ToModel()
	remark.CounselorID = identity.UserID
	if err := s.remarkRepo.Create(ctx, remark); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("remarkID", remark.ID).Int64("studentID", remark.StudentID).Msg("Remark created")
	resp := dto.NewRemarkRequest(remark)
	return &resp, nil
}

func (s *remarkServiceImpl) RequestFor(ctx context.Context, identity auth.Identity, id int64) (dto.RemarkRequest, error) {
	remark, err := s.remarkRepo.GetByID(ctx, id, s.scope(identity))
	if err != nil {
		return dto.RemarkRequest{}, err
	}
	return dto.NewRemarkRequest(remark), nil
}

func (s *remarkServiceImpl) Update(ctx context.Context, identity auth.Identity, id int64, req dto.RemarkRequest) (*dto.RemarkRequest, error) {
	scope := s.scope(identity)
	remark, err := s.remarkRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if req.Student != remark.StudentID {
		if err := s.checkStudent(ctx, identity, req.Student); err != nil {
			return nil, err
		}
	}

	req.ApplyTo(remark)
	if err := s.remarkRepo.Update(ctx, remark, scope); err != nil {
		return nil, err
	}

	resp := dto.NewRemarkRequest(remark)
	return &resp, nil
}

func (s *remarkServiceImpl) Delete(ctx context.Context, identity auth.Identity, id int64) error {
	return s.remarkRepo.Delete(ctx, id, s.scope(identity))
}

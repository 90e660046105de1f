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

// StudentService defines the interface for student operations
type StudentService interface {
	List(ctx context.Context, identity auth.Identity, filter models.StudentFilter) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, identity auth.Identity, id int64) (*dto.StudentResponse, error)
	Create(ctx context.Context, identity auth.Identity, req dto.StudentRequest) (*dto.StudentRequest, error)
	RequestFor(ctx context.Context, identity auth.Identity, id int64) (dto.StudentRequest, error)
	Update(ctx context.Context, identity auth.Identity, id int64, req dto.StudentRequest) (*dto.StudentRequest, error)
	Delete(ctx context.Context, identity auth.Identity, id int64) error
	Stats(ctx context.Context, identity auth.Identity) (*dto.StudentStatsResponse, error)
}

type studentServiceImpl struct {
	studentRepo repositories.StudentStore
	remarkRepo  repositories.RemarkStore
	policy      auth.Policy
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo repositories.StudentStore,
	remarkRepo repositories.RemarkStore,
	policy auth.Policy,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		remarkRepo:  remarkRepo,
		policy:      policy,
		logger:      logger,
	}
}

func (s *studentServiceImpl) scope(identity auth.Identity) auth.Predicate {
	return s.policy.VisibleRows(identity, auth.EntityStudent)
}

// assignCounselor applies the counselor rule for non-admins: an omitted counselor becomes
// the requester, anyone else is rejected.
func assignCounselor(identity auth.Identity, req *dto.StudentRequest) error {
	if identity.IsAdmin() {
		return nil
	}
	if req.AssignedCounselor == nil {
		self := identity.UserID
		req.AssignedCounselor = &self
		return nil
	}
	if *req.AssignedCounselor != identity.UserID {
		return apperrors.NewFieldValidationError("assigned_counselor", "You may only assign students to yourself.")
	}
	return nil
}

func (s *studentServiceImpl) withRemarks(ctx context.Context, student *models.Student) error {
	remarks, err := s.remarkRepo.ListByStudent(ctx, student.ID)
	if err != nil {
		return fmt.Errorf("error loading student remarks: %w", err)
	}
	student.Remarks = remarks
	return nil
}

func (s *studentServiceImpl) List(ctx context.Context, identity auth.Identity, filter models.StudentFilter) (*dto.PaginatedResponse, error) {
	filter.Page = helpers.NormalizePage(filter.Page)
	students, total, err := s.studentRepo.List(ctx, filter, s.scope(identity))
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	for _, student := range students {
		if err := s.withRemarks(ctx, student); err != nil {
			return nil, err
		}
	}
	resp := helpers.NewPaginatedResponse(dto.FromStudents(students), total, filter.Page)
	return &resp, nil
}

func (s *studentServiceImpl) Get(ctx context.Context, identity auth.Identity, id int64) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, id, s.scope(identity))
	if err != nil {
		return nil, err
	}
	if err := s.withRemarks(ctx, student); err != nil {
		return nil, err
	}
	resp := dto.FromStudent(student)
	return &resp, nil
}

func (s *studentServiceImpl) Create(ctx context.Context, identity auth.Identity, req dto.StudentRequest) (*dto.StudentRequest, error) {
	if err := assignCounselor(identity, &req); err != nil {
		return nil, err
	}

	student := req.ToModel()
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", student.ID).Int64("by", identity.UserID).Msg("Student created")
	resp := dto.NewStudentRequest(student)
	return &resp, nil
}

func (s *studentServiceImpl) RequestFor(ctx context.Context, identity auth.Identity, id int64) (dto.StudentRequest, error) {
	student, err := s.studentRepo.GetByID(ctx, id, s.scope(identity))
	if err != nil {
		return dto.StudentRequest{}, err
	}
	return dto.NewStudentRequest(student), nil
}

func (s *studentServiceImpl) Update(ctx context.Context, identity auth.Identity, id int64, req dto.StudentRequest) (*dto.StudentRequest, error) {
	scope := s.scope(identity)
	student, err := s.studentRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if err := assignCounselor(identity, &req); err != nil {
		return nil, err
	}

	req.ApplyTo(student)
	if err := s.studentRepo.Update(ctx, student, scope); err != nil {
		return nil, err
	}

	resp := dto.NewStudentRequest(student)
	return &resp, nil
}

func (s *studentServiceImpl) Delete(ctx context.Context, identity auth.Identity, id int64) error {
	if err := s.studentRepo.Delete(ctx, id, s.scope(identity)); err != nil {
		return err
	}
	s.logger.Info().Int64("studentID", id).Int64("by", identity.UserID).Msg("Student deleted")
	return nil
}

func (s *studentServiceImpl) Stats(ctx context.Context, identity auth.Identity) (*dto.StudentStatsResponse, error) {
	stats, err := s.studentRepo.Stats(ctx, s.scope(identity))
	if err != nil {
		return nil, fmt.Errorf("error computing student stats: %w", err)
	}
	resp := dto.FromStudentStats(stats)
	return &resp, nil
}

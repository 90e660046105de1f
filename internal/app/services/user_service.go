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
	pkgauth "github.com/yigit/abroadcrm/internal/pkg/auth"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
)

// UserService defines the interface for staff account operations
type UserService interface {
	List(ctx context.Context, identity auth.Identity, filter models.UserFilter) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, identity auth.Identity, id int64) (*dto.UserResponse, error)
	Create(ctx context.Context, identity auth.Identity, req dto.UserCreateRequest) (*dto.UserResponse, error)
	// UpdateRequestFor returns the update shape of a visible user, the base for PATCH
	UpdateRequestFor(ctx context.Context, identity auth.Identity, id int64) (dto.UserUpdateRequest, error)
	Update(ctx context.Context, identity auth.Identity, id int64, req dto.UserUpdateRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, identity auth.Identity, id int64) error
}

type userServiceImpl struct {
	userRepo repositories.UserStore
	policy   auth.Policy
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserStore, policy auth.Policy, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		policy:   policy,
		logger:   logger,
	}
}

func (s *userServiceImpl) scope(identity auth.Identity) auth.Predicate {
	return s.policy.VisibleRows(identity, auth.EntityUser)
}

func (s *userServiceImpl) List(ctx context.Context, identity auth.Identity, filter models.UserFilter) (*dto.PaginatedResponse, error) {
	filter.Page = helpers.NormalizePage(filter.Page)
	users, total, err := s.userRepo.List(ctx, filter, s.scope(identity))
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	resp := helpers.NewPaginatedResponse(dto.FromUsers(users), total, filter.Page)
	return &resp, nil
}

func (s *userServiceImpl) Get(ctx context.Context, identity auth.Identity, id int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id, s.scope(identity))
	if err != nil {
		return nil, err
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

func (s *userServiceImpl) Create(ctx context.Context, identity auth.Identity, req dto.UserCreateRequest) (*dto.UserResponse, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	user := req.ToModel()
	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Int64("by", identity.UserID).Msg("User created")
	resp := dto.FromUser(user)
	return &resp, nil
}

func (s *userServiceImpl) UpdateRequestFor(ctx context.Context, identity auth.Identity, id int64) (dto.UserUpdateRequest, error) {
	user, err := s.userRepo.GetByID(ctx, id, s.scope(identity))
	if err != nil {
		return dto.UserUpdateRequest{}, err
	}
	return dto.NewUserUpdateRequest(user), nil
}

func (s *userServiceImpl) Update(ctx context.Context, identity auth.Identity, id int64, req dto.UserUpdateRequest) (*dto.UserResponse, error) {
	scope := s.scope(identity)
	user, err := s.userRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	// only admins may change roles or activation
	if !identity.IsAdmin() {
		fields := apperrors.FieldErrors{}
		if models.Role(req.Role) != user.Role {
			fields.Add("role", "You do not have permission to change the role.")
		}
		if req.IsActive != nil && *req.IsActive != user.IsActive {
			fields.Add("is_active", "You do not have permission to change the active status.")
		}
		if err := fields.Validation(); err != nil {
			return nil, err
		}
	}

	req.ApplyTo(user)
	if err := s.userRepo.Update(ctx, user, scope); err != nil {
		return nil, err
	}

	resp := dto.FromUser(user)
	return &resp, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, identity auth.Identity, id int64) error {
	if err := s.userRepo.Delete(ctx, id, s.scope(identity)); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Int64("by", identity.UserID).Msg("User deleted")
	return nil
}

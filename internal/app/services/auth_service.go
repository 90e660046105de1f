package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/app/repositories"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	pkgauth "github.com/yigit/abroadcrm/internal/pkg/auth"
)

// AuthService defines the authentication gateway
type AuthService interface {
	// Authenticate checks credentials. Unknown users, wrong passwords and inactive accounts
	// all fail with apperrors.ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// ResolveAccessToken validates an access token and reloads its user
	ResolveAccessToken(ctx context.Context, token string) (*models.User, error)
	// Logout revokes a refresh token. It never fails; problems are only logged.
	Logout(ctx context.Context, refreshToken string)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
}

type authServiceImpl struct {
	userRepo   repositories.UserStore
	blacklist  repositories.TokenBlacklist
	jwtService *pkgauth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.UserStore,
	blacklist repositories.TokenBlacklist,
	jwtService *pkgauth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		blacklist:  blacklist,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (s *authServiceImpl) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if !pkgauth.CheckPassword(user.PasswordHash, password) || !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return &dto.LoginResponse{
		User:         dto.FromUser(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Message:      "Login successful",
	}, nil
}

func (s *authServiceImpl) ResolveAccessToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtService.ValidateToken(token, pkgauth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID, auth.Unscoped(auth.EntityUser))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", apperrors.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("error loading token user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", apperrors.ErrTokenInvalid)
	}
	return user, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		s.logger.Warn().Msg("Logout called without a refresh token")
		return
	}

	claims, err := s.jwtService.ParseRefreshTokenIgnoringExpiry(refreshToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Logout with unparseable refresh token")
		return
	}
	if err := s.revoke(ctx, claims); err != nil {
		s.logger.Warn().Err(err).Str("jti", claims.ID).Msg("Failed to revoke refresh token on logout")
		return
	}
	s.logger.Info().Int64("userID", claims.UserID).Msg("User logged out")
}

func (s *authServiceImpl) revoke(ctx context.Context, claims *pkgauth.Claims) error {
	expiresAt := time.Now().UTC()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.blacklist.Revoke(ctx, claims.ID, expiresAt)
}

func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken, pkgauth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking token blacklist: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID, auth.Unscoped(auth.EntityUser))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading token user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	// rotate: the presented refresh token cannot be used again
	if err := s.revoke(ctx, claims); err != nil {
		return nil, fmt.Errorf("error revoking refresh token: %w", err)
	}

	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}, nil
}

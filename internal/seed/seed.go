package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/abroadcrm/internal/app/models"
	appRepos "github.com/yigit/abroadcrm/internal/app/repositories"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/abroadcrm/internal/pkg/auth"
)

// AdminAccount holds the bootstrap admin credentials
type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// EnsureAdmin creates the bootstrap admin account when no user with its username exists.
// An existing account is left untouched, whatever its role or password.
func EnsureAdmin(ctx context.Context, userRepo appRepos.UserStore, account AdminAccount, lgr zerolog.Logger) error {
	if account.Username == "" || account.Password == "" {
		lgr.Info().Msg("No bootstrap admin configured, skipping seed")
		return nil
	}

	_, err := userRepo.GetByUsername(ctx, account.Username)
	if err == nil {
		lgr.Debug().Str("username", account.Username).Msg("Bootstrap admin already exists")
		return nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return fmt.Errorf("error checking bootstrap admin: %w", err)
	}

	hash, err := pkgAuth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("error hashing bootstrap admin password: %w", err)
	}

	admin := &appModels.User{
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: hash,
		Role:         appModels.RoleAdmin,
		IsActive:     true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("error creating bootstrap admin: %w", err)
	}

	lgr.Info().Str("username", admin.Username).Int64("userID", admin.ID).Msg("Bootstrap admin account created")
	return nil
}

package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/repositories/memory"
	pkgAuth "github.com/yigit/abroadcrm/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureAdmin(t *testing.T) {
	pkgAuth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	users := memory.New().Repositories().Users
	account := AdminAccount{Username: "admin", Email: "admin@example.com", Password: "admin123"}

	require.NoError(t, EnsureAdmin(ctx, users, account, zerolog.Nop()))
	admin, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.True(t, pkgAuth.CheckPassword(admin.PasswordHash, "admin123"))

	// a second run keeps the existing account
	account.Password = "changed"
	require.NoError(t, EnsureAdmin(ctx, users, account, zerolog.Nop()))
	again, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.True(t, pkgAuth.CheckPassword(again.PasswordHash, "admin123"))
}

func TestEnsureAdmin_SkipsWithoutCredentials(t *testing.T) {
	ctx := context.Background()
	users := memory.New().Repositories().Users

	require.NoError(t, EnsureAdmin(ctx, users, AdminAccount{}, zerolog.Nop()))
	_, err := users.GetByUsername(ctx, "admin")
	assert.Error(t, err)
}

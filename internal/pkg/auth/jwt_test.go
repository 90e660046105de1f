package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

func newTestService(secret string) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       secret,
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "abroadcrm-test",
	})
}

var testUser = &models.User{ID: 42, Username: "maria", Role: models.RoleCounselor}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService("secret")

	pair, err := svc.GenerateTokenPair(testUser)
	require.NoError(t, err)
	assert.Equal(t, 3600, pair.ExpiresIn)
	assert.Equal(t, 86400, pair.RefreshExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, "counselor", claims.Role)
	assert.NotEmpty(t, claims.ID)

	refresh, err := svc.ValidateToken(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestValidate_WrongType(t *testing.T) {
	svc := newTestService("secret")
	pair, err := svc.GenerateTokenPair(testUser)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	_, err = svc.ValidateToken(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidate_Expired(t *testing.T) {
	svc := newTestService("secret")
	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	pair, err := svc.GenerateTokenPair(testUser)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	claims, err := svc.ParseRefreshTokenIgnoringExpiry(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestValidate_WrongSecretAndGarbage(t *testing.T) {
	pair, err := newTestService("secret").GenerateTokenPair(testUser)
	require.NoError(t, err)

	other := newTestService("another-secret")
	_, err = other.ValidateToken(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	_, err = other.ParseRefreshTokenIgnoringExpiry(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	for _, garbage := range []string{"", "not-a-token", "a.b.c"} {
		_, err = other.ValidateToken(garbage, TokenTypeAccess)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid, garbage)
	}
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("bearer   xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
	_, err = ExtractBearerToken("Basic Zm9vOmJhcg==")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	_, err = ExtractBearerToken("Bearer")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestPassword(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "admin124"))
}

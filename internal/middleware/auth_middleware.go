package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/abroadcrm/internal/pkg/auth"
)

const (
	identityKey    = "identity"
	currentUserKey = "currentUser"
)

// AccessTokenResolver turns a bearer token into its live user
type AccessTokenResolver interface {
	ResolveAccessToken(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	resolver AccessTokenResolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(resolver AccessTokenResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// JWTAuth validates the bearer token and loads the requester. The user is reloaded on every
// request, so role changes and deactivation apply immediately.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := pkgAuth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		user, err := m.resolver.ResolveAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(currentUserKey, user)
		c.Set(identityKey, auth.Identity{UserID: user.ID, Username: user.Username, Role: user.Role})
		c.Next()
	}
}

// RoleRequired rejects requesters whose role is not one of roles
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			HandleAPIError(c, apperrors.ErrUnauthorized)
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		HandleAPIError(c, apperrors.NewForbiddenError("You do not have permission to perform this action."))
	}
}

// CurrentIdentity returns the identity set by JWTAuth
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

// CurrentUser returns the user loaded by JWTAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

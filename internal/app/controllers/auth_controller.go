package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/app/services"
	"github.com/yigit/abroadcrm/internal/middleware"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticates a staff member and returns an access and refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		c.logger.Warn().Msg("Invalid login request payload")
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Verify reports whether the presented access token is valid
// @Summary Verify access token
// @Description Returns the token's user when the access token is valid
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.VerifyResponse "Token valid"
// @Failure 401 {object} dto.ErrorResponse "Missing, invalid or expired token"
// @Router /auth/verify [get]
func (c *AuthController) Verify(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	ctx.JSON(http.StatusOK, dto.VerifyResponse{
		User:    dto.FromUser(user),
		Message: "Token valid",
	})
}

// Logout revokes a refresh token
// @Summary Logout
// @Description Revokes the given refresh token. Always reports success, even for unknown or malformed tokens.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LogoutRequest false "Refresh token to revoke, as refreshToken or refresh"
// @Success 200 {object} dto.MessageResponse "Logout successful"
// @Failure 401 {object} dto.ErrorResponse "Missing, invalid or expired access token"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.LogoutRequest
	// a malformed body is treated like a missing token
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Debug().Err(err).Msg("Logout body could not be decoded")
	}

	c.authService.Logout(ctx.Request.Context(), req.Token())
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Logout successful"})
}

// Me returns the authenticated user
// @Summary Current user
// @Description Returns the profile of the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse "Current user"
// @Failure 401 {object} dto.ErrorResponse "Missing, invalid or expired token"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}
	ctx.JSON(http.StatusOK, dto.FromUser(user))
}

// RefreshToken handles refresh token request
// @Summary Refresh access token
// @Description Exchanges a valid refresh token for a new token pair. The presented refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse "Token refreshed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid, expired or revoked refresh token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(ctx, &req) {
		return
	}

	tokenResponse, err := c.authService.Refresh(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Refresh token failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Msg("Token refreshed successfully")
	ctx.JSON(http.StatusOK, tokenResponse)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/app/services"
	"github.com/yigit/abroadcrm/internal/middleware"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
)

// UserController handles staff account endpoints
type UserController struct {
	userService services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// ListUsers lists the users visible to the requester
// @Summary List users
// @Description Admins see every account, other roles only their own
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role" Enums(admin, counselor, employee)
// @Param search query string false "Search username, name or email"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.UserResponse}} "Users retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}

	filter := models.UserFilter{
		Role:   models.Role(ctx.Query("role")),
		Search: ctx.Query("search"),
		Page:   helpers.ParsePaginationParams(ctx),
	}
	page, err := c.userService.List(ctx.Request.Context(), ident, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, page, "Users retrieved successfully")
}

// GetUser returns one visible user
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.Get(ctx.Request.Context(), ident, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user, "User retrieved successfully")
}

// CreateUser creates a staff account
// @Summary Create user
// @Description Admin only
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UserCreateRequest true "User information"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 409 {object} dto.ErrorResponse "Username or email already exists"
// @Router /auth/users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	var req dto.UserCreateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.Create(ctx.Request.Context(), ident, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", user.ID).Int64("by", ident.UserID).Msg("User created")
	respondCreated(ctx, user, "User created successfully")
}

// UpdateUser replaces a user
// @Summary Replace user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UserUpdateRequest true "User information"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Username or email already exists"
// @Router /auth/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	c.update(ctx, false)
}

// PatchUser partially updates a user
// @Summary Update user fields
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UserUpdateRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/users/{id} [patch]
func (c *UserController) PatchUser(ctx *gin.Context) {
	c.update(ctx, true)
}

func (c *UserController) update(ctx *gin.Context, partial bool) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UserUpdateRequest
	if partial {
		var err error
		if req, err = c.userService.UpdateRequestFor(ctx.Request.Context(), ident, id); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.Update(ctx.Request.Context(), ident, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, user, "User updated successfully")
}

// DeleteUser deletes a user
// @Summary Delete user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "User deleted"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.Delete(ctx.Request.Context(), ident, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", id).Int64("by", ident.UserID).Msg("User deleted")
	ctx.Status(http.StatusNoContent)
}

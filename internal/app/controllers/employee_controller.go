package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/app/services"
	"github.com/yigit/abroadcrm/internal/middleware"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
)

// EmployeeController handles staff performance and target endpoints
type EmployeeController struct {
	employeeService services.EmployeeService
	logger          zerolog.Logger
}

// NewEmployeeController creates a new EmployeeController
func NewEmployeeController(employeeService services.EmployeeService, logger zerolog.Logger) *EmployeeController {
	return &EmployeeController{
		employeeService: employeeService,
		logger:          logger,
	}
}

// ListPerformance lists visible performance records
// @Summary List performance
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.PerformanceResponse}} "Performance retrieved successfully"
// @Router /employees/performance [get]
func (c *EmployeeController) ListPerformance(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}

	page, err := c.employeeService.ListPerformance(ctx.Request.Context(), ident, helpers.ParsePaginationParams(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, page, "Performance retrieved successfully")
}

// GetPerformance returns one employee's performance
// @Summary Get performance
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Employee user ID"
// @Success 200 {object} dto.APIResponse{data=dto.PerformanceResponse} "Performance retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Performance record not found"
// @Router /employees/{userId}/performance [get]
func (c *EmployeeController) GetPerformance(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	performance, err := c.employeeService.GetPerformance(ctx.Request.Context(), ident, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, performance, "Performance retrieved successfully")
}

// PutPerformance creates or replaces an employee's performance counters
// @Summary Set performance
// @Description Admin only
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Employee user ID"
// @Param request body dto.PerformanceRequest true "Performance counters"
// @Success 200 {object} dto.APIResponse{data=dto.PerformanceResponse} "Performance saved successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /employees/{userId}/performance [put]
func (c *EmployeeController) PutPerformance(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	var req dto.PerformanceRequest
	if !bindJSON(ctx, &req) {
		return
	}

	performance, err := c.employeeService.PutPerformance(ctx.Request.Context(), ident, userID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, performance, "Performance saved successfully")
}

// ListTargets lists visible monthly targets
// @Summary List targets
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param employee query int false "Employee user ID"
// @Param month query string false "Month, YYYY-MM or any date within it"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.TargetResponse}} "Targets retrieved successfully"
// @Router /employees/targets [get]
func (c *EmployeeController) ListTargets(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}

	filter := models.TargetFilter{
		EmployeeID: helpers.OptionalInt64Query(ctx, "employee"),
		Month:      parseMonth(ctx.Query("month")),
		Page:       helpers.ParsePaginationParams(ctx),
	}
	page, err := c.employeeService.ListTargets(ctx.Request.Context(), ident, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, page, "Targets retrieved successfully")
}

// parseMonth accepts YYYY-MM or YYYY-MM-DD. Anything else is ignored.
func parseMonth(raw string) *time.Time {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			month := models.FirstOfMonth(t)
			return &month
		}
	}
	return nil
}

// CreateTarget sets a monthly target
// @Summary Create target
// @Description Admins may target any user, others only themselves. Month is normalised to its first day.
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TargetRequest true "Target"
// @Success 201 {object} dto.APIResponse{data=dto.TargetResponse} "Target created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Target already set for this month"
// @Router /employees/targets [post]
func (c *EmployeeController) CreateTarget(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	var req dto.TargetRequest
	if !bindJSON(ctx, &req) {
		return
	}

	target, err := c.employeeService.CreateTarget(ctx.Request.Context(), ident, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, target, "Target created successfully")
}

// DeleteTarget removes a target
// @Summary Delete target
// @Tags employees
// @Security BearerAuth
// @Param id path int true "Target ID"
// @Success 204 "Target deleted"
// @Failure 404 {object} dto.ErrorResponse "Target not found"
// @Router /employees/targets/{id} [delete]
func (c *EmployeeController) DeleteTarget(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.employeeService.DeleteTarget(ctx.Request.Context(), ident, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

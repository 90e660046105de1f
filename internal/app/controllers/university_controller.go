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

// UniversityController handles university, program and requirement endpoints
type UniversityController struct {
	universityService services.UniversityService
	logger            zerolog.Logger
}

// NewUniversityController creates a new UniversityController
func NewUniversityController(universityService services.UniversityService, logger zerolog.Logger) *UniversityController {
	return &UniversityController{
		universityService: universityService,
		logger:            logger,
	}
}

// ListUniversities lists universities
// @Summary List universities
// @Tags universities
// @Produce json
// @Security BearerAuth
// @Param country query string false "Country"
// @Param type query string false "Type" Enums(public, private)
// @Param partnership_status query string false "Partnership status" Enums(premium, standard, basic)
// @Param search query string false "Search name or city"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.UniversityResponse}} "Universities retrieved successfully"
// @Router /universities [get]
func (c *UniversityController) ListUniversities(ctx *gin.Context) {
	filter := models.UniversityFilter{
		Country:           ctx.Query("country"),
		Type:              ctx.Query("type"),
		PartnershipStatus: ctx.Query("partnership_status"),
		Search:            ctx.Query("search"),
		Page:              helpers.ParsePaginationParams(ctx),
	}
	page, err := c.universityService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, page, "Universities retrieved successfully")
}

// GetUniversity returns a university with its programs and requirements
// @Summary Get university
// @Tags universities
// @Produce json
// @Security BearerAuth
// @Param id path int true "University ID"
// @Success 200 {object} dto.APIResponse{data=dto.UniversityResponse} "University retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "University not found"
// @Router /universities/{id} [get]
func (c *UniversityController) GetUniversity(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	university, err := c.universityService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, university, "University retrieved successfully")
}

// CreateUniversity creates a university
// @Summary Create university
// @Description Admin only
// @Tags universities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UniversityRequest true "University information"
// @Success 201 {object} dto.APIResponse{data=dto.UniversityRequest} "University created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Router /universities [post]
func (c *UniversityController) CreateUniversity(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	var req dto.UniversityRequest
	if !bindJSON(ctx, &req) {
		return
	}

	university, err := c.universityService.Create(ctx.Request.Context(), ident, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("universityID", university.ID).Msg("University created")
	respondCreated(ctx, university, "University created successfully")
}

// UpdateUniversity replaces a university
// @Summary Replace university
// @Tags universities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "University ID"
// @Param request body dto.UniversityRequest true "University information"
// @Success 200 {object} dto.APIResponse{data=dto.UniversityRequest} "University updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "University not found"
// @Router /universities/{id} [put]
func (c *UniversityController) UpdateUniversity(ctx *gin.Context) {
	c.updateUniversity(ctx, false)
}

// PatchUniversity partially updates a university
// @Summary Update university fields
// @Tags universities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "University ID"
// @Param request body dto.UniversityRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UniversityRequest} "University updated successfully"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "University not found"
// @Router /universities/{id} [patch]
func (c *UniversityController) PatchUniversity(ctx *gin.Context) {
	c.updateUniversity(ctx, true)
}

func (c *UniversityController) updateUniversity(ctx *gin.Context, partial bool) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UniversityRequest
	if partial {
		var err error
		if req, err = c.universityService.RequestFor(ctx.Request.Context(), id); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}
	if !bindJSON(ctx, &req) {
		return
	}

	university, err := c.universityService.Update(ctx.Request.Context(), ident, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, university, "University updated successfully")
}

// DeleteUniversity deletes a university with its programs, requirements and applications
// @Summary Delete university
// @Tags universities
// @Security BearerAuth
// @Param id path int true "University ID"
// @Success 204 "University deleted"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "University not found"
// @Router /universities/{id} [delete]
func (c *UniversityController) DeleteUniversity(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.universityService.Delete(ctx.Request.Context(), ident, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("universityID", id).Msg("University deleted")
	ctx.Status(http.StatusNoContent)
}

// ListPrograms lists a university's programs
// @Summary List programs
// @Tags universities
// @Produce json
// @Security BearerAuth
// @Param id path int true "University ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ProgramResponse} "Programs retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "University not found"
// @Router /universities/{id}/programs [get]
func (c *UniversityController) ListPrograms(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	programs, err := c.universityService.ListPrograms(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, programs, "Programs retrieved successfully")
}

// CreateProgram adds a program to a university
// @Summary Create program
// @Tags universities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "University ID"
// @Param request body dto.ProgramRequest true "Program"
// @Success 201 {object} dto.APIResponse{data=dto.ProgramResponse} "Program created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "University not found"
// @Router /universities/{id}/programs [post]
func (c *UniversityController) CreateProgram(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ProgramRequest
	if !bindJSON(ctx, &req) {
		return
	}

	program, err := c.universityService.CreateProgram(ctx.Request.Context(), ident, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, program, "Program created successfully")
}

// UpdateProgram replaces a program
// @Summary Replace program
// @Tags universities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "University ID"
// @Param programId path int true "Program ID"
// @Param request body dto.ProgramRequest true "Program"
// @Success 200 {object} dto.APIResponse{data=dto.ProgramResponse} "Program updated successfully"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /universities/{id}/programs/{programId} [put]
func (c *UniversityController) UpdateProgram(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	programID, ok := pathID(ctx, "programId")
	if !ok {
		return
	}
	var req dto.ProgramRequest
	if !bindJSON(ctx, &req) {
		return
	}

	program, err := c.universityService.UpdateProgram(ctx.Request.Context(), ident, id, programID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, program, "Program updated successfully")
}

// DeleteProgram removes a program
// @Summary Delete program
// @Tags universities
// @Security BearerAuth
// @Param id path int true "University ID"
// @Param programId path int true "Program ID"
// @Success 204 "Program deleted"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /universities/{id}/programs/{programId} [delete]
func (c *UniversityController) DeleteProgram(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	programID, ok := pathID(ctx, "programId")
	if !ok {
		return
	}

	if err := c.universityService.DeleteProgram(ctx.Request.Context(), ident, id, programID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetRequirements returns a university's admission requirements
// @Summary Get requirements
// @Tags universities
// @Produce json
// @Security BearerAuth
// @Param id path int true "University ID"
// @Success 200 {object} dto.APIResponse{data=dto.RequirementResponse} "Requirements retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "University or requirements not found"
// @Router /universities/{id}/requirements [get]
func (c *UniversityController) GetRequirements(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	requirements, err := c.universityService.GetRequirements(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, requirements, "Requirements retrieved successfully")
}

// PutRequirements creates or replaces a university's admission requirements
// @Summary Set requirements
// @Tags universities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "University ID"
// @Param request body dto.RequirementRequest true "Requirements"
// @Success 200 {object} dto.APIResponse{data=dto.RequirementResponse} "Requirements saved successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "University not found"
// @Router /universities/{id}/requirements [put]
func (c *UniversityController) PutRequirements(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.RequirementRequest
	if !bindJSON(ctx, &req) {
		return
	}

	requirements, err := c.universityService.PutRequirements(ctx.Request.Context(), ident, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, requirements, "Requirements saved successfully")
}

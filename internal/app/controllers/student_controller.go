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

// StudentController handles student and remark endpoints
type StudentController struct {
	studentService services.StudentService
	remarkService  services.RemarkService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, remarkService services.RemarkService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		remarkService:  remarkService,
		logger:         logger,
	}
}

// ListStudents lists the students visible to the requester
// @Summary List students
// @Description Admins see every student, counselors only the students assigned to them
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param status query string false "Pipeline status"
// @Param preferred_country query string false "Preferred country"
// @Param assigned_counselor query int false "Assigned counselor ID"
// @Param search query string false "Search first name, last name, email or phone"
// @Param ordering query string false "Ordering" Enums(created_at, -created_at, first_name, -first_name, last_name, -last_name, updated_at, -updated_at)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.StudentResponse}} "Students retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}

	filter := models.StudentFilter{
		Status:              models.StudentStatus(ctx.Query("status")),
		PreferredCountry:    ctx.Query("preferred_country"),
		AssignedCounselorID: helpers.OptionalInt64Query(ctx, "assigned_counselor"),
		Search:              ctx.Query("search"),
		Ordering:            ctx.Query("ordering"),
		Page:                helpers.ParsePaginationParams(ctx),
	}
	page, err := c.studentService.List(ctx.Request.Context(), ident, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, page, "Students retrieved successfully")
}

// GetStudent returns a student with its remarks
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), ident, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, student, "Student retrieved successfully")
}

// CreateStudent creates a student
// @Summary Create student
// @Description Non-admins may only assign students to themselves; an omitted counselor defaults to the requester
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentRequest} "Student created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	var req dto.StudentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), ident, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("studentID", student.ID).Int64("by", ident.UserID).Msg("Student created")
	respondCreated(ctx, student, "Student created successfully")
}

// UpdateStudent replaces a student
// @Summary Replace student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.StudentRequest true "Student information"
// @Success 200 {object} dto.APIResponse{data=dto.StudentRequest} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	c.updateStudent(ctx, false)
}

// PatchStudent partially updates a student
// @Summary Update student fields
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.StudentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.StudentRequest} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [patch]
func (c *StudentController) PatchStudent(ctx *gin.Context) {
	c.updateStudent(ctx, true)
}

func (c *StudentController) updateStudent(ctx *gin.Context, partial bool) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.StudentRequest
	if partial {
		var err error
		if req, err = c.studentService.RequestFor(ctx.Request.Context(), ident, id); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}
	if !bindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), ident, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, student, "Student updated successfully")
}

// DeleteStudent deletes a student with its remarks and applications
// @Summary Delete student
// @Tags students
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 204 "Student deleted"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.studentService.Delete(ctx.Request.Context(), ident, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("studentID", id).Int64("by", ident.UserID).Msg("Student deleted")
	ctx.Status(http.StatusNoContent)
}

// GetStats counts the visible students per pipeline stage
// @Summary Student statistics
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StudentStatsResponse "Counts per status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /students/stats [get]
func (c *StudentController) GetStats(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}

	stats, err := c.studentService.Stats(ctx.Request.Context(), ident)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// ListRemarks lists the remarks visible to the requester
// @Summary List remarks
// @Tags remarks
// @Produce json
// @Security BearerAuth
// @Param student query int false "Student ID"
// @Param contact_type query string false "Contact type" Enums(call, email, meeting, whatsapp)
// @Param priority query string false "Priority" Enums(low, medium, high)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.RemarkResponse}} "Remarks retrieved successfully"
// @Router /students/remarks [get]
func (c *StudentController) ListRemarks(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}

	filter := models.RemarkFilter{
		StudentID:   helpers.OptionalInt64Query(ctx, "student"),
		ContactType: models.ContactType(ctx.Query("contact_type")),
		Priority:    models.Priority(ctx.Query("priority")),
		Page:        helpers.ParsePaginationParams(ctx),
	}
	page, err := c.remarkService.List(ctx.Request.Context(), ident, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, page, "Remarks retrieved successfully")
}

// GetRemark returns one remark
// @Summary Get remark
// @Tags remarks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Remark ID"
// @Success 200 {object} dto.APIResponse{data=dto.RemarkResponse} "Remark retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Remark not found"
// @Router /students/remarks/{id} [get]
func (c *StudentController) GetRemark(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	remark, err := c.remarkService.Get(ctx.Request.Context(), ident, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, remark, "Remark retrieved successfully")
}

// CreateRemark records a remark authored by the requester
// @Summary Create remark
// @Description The counselor is always the authenticated user
// @Tags remarks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RemarkRequest true "Remark"
// @Success 201 {object} dto.APIResponse{data=dto.RemarkRequest} "Remark created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or student not visible"
// @Router /students/remarks [post]
func (c *StudentController) CreateRemark(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	var req dto.RemarkRequest
	if !bindJSON(ctx, &req) {
		return
	}

	remark, err := c.remarkService.Create(ctx.Request.Context(), ident, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, remark, "Remark created successfully")
}

// UpdateRemark replaces a remark
// @Summary Replace remark
// @Tags remarks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Remark ID"
// @Param request body dto.RemarkRequest true "Remark"
// @Success 200 {object} dto.APIResponse{data=dto.RemarkRequest} "Remark updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Remark not found"
// @Router /students/remarks/{id} [put]
func (c *StudentController) UpdateRemark(ctx *gin.Context) {
	c.updateRemark(ctx, false)
}

// PatchRemark partially updates a remark
// @Summary Update remark fields
// @Tags remarks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Remark ID"
// @Param request body dto.RemarkRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.RemarkRequest} "Remark updated successfully"
// @Failure 404 {object} dto.ErrorResponse "Remark not found"
// @Router /students/remarks/{id} [patch]
func (c *StudentController) PatchRemark(ctx *gin.Context) {
	c.updateRemark(ctx, true)
}

func (c *StudentController) updateRemark(ctx *gin.Context, partial bool) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.RemarkRequest
	if partial {
		var err error
		if req, err = c.remarkService.RequestFor(ctx.Request.Context(), ident, id); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}
	if !bindJSON(ctx, &req) {
		return
	}

	remark, err := c.remarkService.Update(ctx.Request.Context(), ident, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, remark, "Remark updated successfully")
}

// DeleteRemark deletes a remark
// @Summary Delete remark
// @Tags remarks
// @Security BearerAuth
// @Param id path int true "Remark ID"
// @Success 204 "Remark deleted"
// @Failure 404 {object} dto.ErrorResponse "Remark not found"
// @Router /students/remarks/{id} [delete]
func (c *StudentController) DeleteRemark(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.remarkService.Delete(ctx.Request.Context(), ident, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

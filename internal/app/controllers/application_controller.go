package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/app/services"
	"github.com/yigit/abroadcrm/internal/middleware"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
)

// ApplicationController handles application, document and timeline endpoints
type ApplicationController struct {
	applicationService services.ApplicationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// ListApplications lists the applications of visible students
// @Summary List applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Application status"
// @Param student query int false "Student ID"
// @Param university query int false "University ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.ApplicationResponse}} "Applications retrieved successfully"
// @Router /applications [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}

	filter := models.ApplicationFilter{
		Status:       models.ApplicationStatus(ctx.Query("status")),
		StudentID:    helpers.OptionalInt64Query(ctx, "student"),
		UniversityID: helpers.OptionalInt64Query(ctx, "university"),
		Page:         helpers.ParsePaginationParams(ctx),
	}
	page, err := c.applicationService.List(ctx.Request.Context(), ident, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, page, "Applications retrieved successfully")
}

// GetApplication returns an application with its documents and timeline
// @Summary Get application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	application, err := c.applicationService.Get(ctx.Request.Context(), ident, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, application, "Application retrieved successfully")
}

// CreateApplication creates an application for a visible student
// @Summary Create application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApplicationRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationRequest} "Application created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or student not visible"
// @Failure 409 {object} dto.ErrorResponse "Application ID already exists"
// @Router /applications [post]
func (c *ApplicationController) CreateApplication(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	var req dto.ApplicationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	application, err := c.applicationService.Create(ctx.Request.Context(), ident, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("applicationID", application.ID).Int64("by", ident.UserID).Msg("Application created")
	respondCreated(ctx, application, "Application created successfully")
}

// UpdateApplication replaces an application
// @Summary Replace application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.ApplicationRequest true "Application"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationRequest} "Application updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [put]
func (c *ApplicationController) UpdateApplication(ctx *gin.Context) {
	c.updateApplication(ctx, false)
}

// PatchApplication partially updates an application
// @Summary Update application fields
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.ApplicationRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationRequest} "Application updated successfully"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [patch]
func (c *ApplicationController) PatchApplication(ctx *gin.Context) {
	c.updateApplication(ctx, true)
}

func (c *ApplicationController) updateApplication(ctx *gin.Context, partial bool) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.ApplicationRequest
	if partial {
		var err error
		if req, err = c.applicationService.RequestFor(ctx.Request.Context(), ident, id); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}
	if !bindJSON(ctx, &req) {
		return
	}

	application, err := c.applicationService.Update(ctx.Request.Context(), ident, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, application, "Application updated successfully")
}

// DeleteApplication deletes an application with its documents and timeline
// @Summary Delete application
// @Tags applications
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 204 "Application deleted"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [delete]
func (c *ApplicationController) DeleteApplication(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.applicationService.Delete(ctx.Request.Context(), ident, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("applicationID", id).Int64("by", ident.UserID).Msg("Application deleted")
	ctx.Status(http.StatusNoContent)
}

// ListDocuments lists an application's documents
// @Summary List documents
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.DocumentResponse} "Documents retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/documents [get]
func (c *ApplicationController) ListDocuments(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	documents, err := c.applicationService.ListDocuments(ctx.Request.Context(), ident, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, documents, "Documents retrieved successfully")
}

// CreateDocument adds a required document to an application
// @Summary Create document
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.DocumentRequest true "Document"
// @Success 201 {object} dto.APIResponse{data=dto.DocumentResponse} "Document created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/documents [post]
func (c *ApplicationController) CreateDocument(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.DocumentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	document, err := c.applicationService.CreateDocument(ctx.Request.Context(), ident, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, document, "Document created successfully")
}

// PatchDocument partially updates a document, typically its review status
// @Summary Update document fields
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param docId path int true "Document ID"
// @Param request body dto.DocumentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.DocumentResponse} "Document updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Application or document not found"
// @Router /applications/{id}/documents/{docId} [patch]
func (c *ApplicationController) PatchDocument(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	docID, ok := pathID(ctx, "docId")
	if !ok {
		return
	}

	req, err := c.applicationService.DocumentRequestFor(ctx.Request.Context(), ident, id, docID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if !bindJSON(ctx, &req) {
		return
	}

	document, err := c.applicationService.UpdateDocument(ctx.Request.Context(), ident, id, docID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, document, "Document updated successfully")
}

// DeleteDocument removes a document and its stored file
// @Summary Delete document
// @Tags applications
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param docId path int true "Document ID"
// @Success 204 "Document deleted"
// @Failure 404 {object} dto.ErrorResponse "Application or document not found"
// @Router /applications/{id}/documents/{docId} [delete]
func (c *ApplicationController) DeleteDocument(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	docID, ok := pathID(ctx, "docId")
	if !ok {
		return
	}

	if err := c.applicationService.DeleteDocument(ctx.Request.Context(), ident, id, docID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UploadDocumentFile attaches a file to a document
// @Summary Upload document file
// @Description Stores the file and marks the document as uploaded. A previous file is replaced.
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param docId path int true "Document ID"
// @Param file formData file true "Document file"
// @Success 200 {object} dto.APIResponse{data=dto.DocumentResponse} "File uploaded successfully"
// @Failure 400 {object} dto.ErrorResponse "No file submitted"
// @Failure 404 {object} dto.ErrorResponse "Application or document not found"
// @Router /applications/{id}/documents/{docId}/file [post]
func (c *ApplicationController) UploadDocumentFile(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	docID, ok := pathID(ctx, "docId")
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		c.logger.Warn().Err(err).Msg("Upload without a file part")
		middleware.HandleAPIError(ctx, apperrors.NewFieldValidationError("file", "No file was submitted."))
		return
	}

	document, err := c.applicationService.UploadDocumentFile(ctx.Request.Context(), ident, id, docID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("documentID", docID).Int64("size", file.Size).Msg("Document file uploaded")
	respondOK(ctx, document, "File uploaded successfully")
}

// ListTimeline lists an application's history
// @Summary List timeline
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.TimelineResponse} "Timeline retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/timeline [get]
func (c *ApplicationController) ListTimeline(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	entries, err := c.applicationService.ListTimeline(ctx.Request.Context(), ident, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, entries, "Timeline retrieved successfully")
}

// AddTimelineEntry appends an entry to an application's history
// @Summary Add timeline entry
// @Description A current entry clears the current flag on every other entry
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.TimelineRequest true "Timeline entry"
// @Success 201 {object} dto.APIResponse{data=dto.TimelineResponse} "Timeline entry added successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/timeline [post]
func (c *ApplicationController) AddTimelineEntry(ctx *gin.Context) {
	ident, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.TimelineRequest
	if !bindJSON(ctx, &req) {
		return
	}

	entry, err := c.applicationService.AddTimelineEntry(ctx.Request.Context(), ident, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, entry, "Timeline entry added successfully")
}

// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/middleware"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
	"github.com/yigit/abroadcrm/internal/pkg/validation"
)

// identity returns the requester set by the auth middleware, writing 401 when absent
func identity(ctx *gin.Context) (auth.Identity, bool) {
	ident, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return auth.Identity{}, false
	}
	return ident, true
}

// pathID parses a numeric path parameter. Anything else cannot name a row, so it is a 404.
func pathID(ctx *gin.Context, key string) (int64, bool) {
	id, ok := helpers.ParseIDParam(ctx, key)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrResourceNotFound)
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the body into obj, writing the 400 response on failure
func bindJSON(ctx *gin.Context, obj interface{}) bool {
	if err := validation.BindJSON(ctx, obj); err != nil {
		middleware.HandleAPIError(ctx, err)
		return false
	}
	return true
}

func respondOK(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data, message))
}

func respondCreated(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(data, message))
}

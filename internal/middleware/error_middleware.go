package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	"github.com/yigit/abroadcrm/internal/pkg/logger"
)

// NotFoundMessage is the body of every 404, whatever entity was missing or hidden
const NotFoundMessage = "Not found."

// HandleAPIError maps a service error to its status code and writes the error envelope
func HandleAPIError(c *gin.Context, err error) {
	if fields, ok := apperrors.FieldsOf(err); ok {
		if errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			abortWithError(c, http.StatusConflict,
				dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Resource already exists").WithDetails(fields))
			return
		}
		abortWithError(c, http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").WithDetails(fields))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		abortWithError(c, http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, NotFoundMessage))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, messageOr(err, "Permission denied")))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		abortWithError(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials"))
	case errors.Is(err, apperrors.ErrTokenExpired):
		abortWithError(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token has expired"))
	case errors.Is(err, apperrors.ErrTokenRevoked):
		abortWithError(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Token has been revoked"))
	case errors.Is(err, apperrors.ErrTokenInvalid):
		abortWithError(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"))
	case errors.Is(err, apperrors.ErrTokenNotFound), errors.Is(err, apperrors.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication credentials were not provided."))
	case errors.Is(err, apperrors.ErrBadRequest):
		abortWithError(c, http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, messageOr(err, "Bad request")))
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		abortWithError(c, http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"))
	}
}

// messageOr returns the message of a CustomError, or fallback for bare sentinels
func messageOr(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

func abortWithError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

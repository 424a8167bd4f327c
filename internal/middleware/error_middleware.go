package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolcore/internal/app/models/dto"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// HandleAPIError maps an error returned by a service onto the error envelope.
// The message of a CustomError is passed through, as are its details.
func HandleAPIError(c *gin.Context, err error) {
	var status int
	var code dto.ErrorCode
	var message string

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		status, code, message = http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrConflict):
		status, code, message = http.StatusConflict, dto.ErrorCodeConflict, "Conflict"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		status, code, message = http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"
	case errors.Is(err, apperrors.ErrTokenExpired):
		status, code, message = http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"
	case errors.Is(err, apperrors.ErrTokenInvalid):
		status, code, message = http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"
	case errors.Is(err, apperrors.ErrValidationFailed):
		status, code, message = http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"
	case errors.Is(err, apperrors.ErrBadRequest):
		status, code, message = http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"
	default:
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("Unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		))
		return
	}

	detail := dto.NewErrorDetail(code, message)

	var verrs *apperrors.ValidationErrors
	var custom *apperrors.CustomError
	switch {
	case errors.As(err, &verrs):
		detail = detail.WithDetails(verrs.Messages)
	case errors.As(err, &custom):
		detail.Message = custom.Error()
		if len(custom.Details) > 0 {
			detail = detail.WithDetails(custom.Details)
		}
	default:
		detail.Message = err.Error()
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

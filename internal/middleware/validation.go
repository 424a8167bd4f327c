package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/schoolcore/internal/app/models/dto"
	"github.com/yigit/schoolcore/internal/pkg/validation"
)

var validate = validation.New()

// BindAndValidate decodes the JSON body into obj and runs its validate tags.
// On failure the 400 response is written and false is returned.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid request format")
		errorDetail = errorDetail.WithDetails(err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}

	if err := validate.Struct(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(HandleValidationError(err)))
		return false
	}
	return true
}

// HandleValidationError turns validator errors into one error detail
func HandleValidationError(err error) *dto.ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").WithDetails(err.Error())
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, formatValidationError(e))
	}

	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").WithDetails(messages)
	if len(verrs) == 1 {
		detail = detail.WithField(strings.ToLower(verrs[0].Field()))
	}
	return detail
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case validation.TagSchoolDate:
		return e.Field() + " must be a date formatted as YYYY-MM-DD"
	case validation.TagWeekday:
		return e.Field() + " must be a weekday name"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

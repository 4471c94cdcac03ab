package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/chess2earn/backend/internal/service"
	"github.com/chess2earn/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type successStruct struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func successResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, successStruct{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func errorResponse(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorStruct{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// serviceErrorResponse maps the service error taxonomy onto HTTP statuses
// and machine codes. Anything unmapped is logged and collapsed into a
// generic 500 so internals never leak.
func serviceErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailExists):
		errorResponse(c, http.StatusBadRequest, CodeEmailExists, "Email already exists")
	case errors.Is(err, service.ErrUsernameTaken):
		errorResponse(c, http.StatusBadRequest, CodeUsernameTaken, "Username already taken")
	case errors.Is(err, service.ErrInvalidCode):
		errorResponse(c, http.StatusUnauthorized, CodeInvalidCode, "Invalid or expired verification code")
	case errors.Is(err, service.ErrCodeExpired):
		errorResponse(c, http.StatusUnauthorized, CodeExpired, "Verification code has expired")
	case errors.Is(err, service.ErrTooManyAttempts):
		errorResponse(c, http.StatusUnauthorized, CodeTooManyAttempts, "Too many failed attempts. Please request a new code")
	case errors.Is(err, service.ErrUserNotFound):
		errorResponse(c, http.StatusNotFound, CodeUserNotFound, "User not found")
	case errors.Is(err, service.ErrEmailNotVerified):
		errorResponse(c, http.StatusBadRequest, CodeEmailNotVerified, "Email not verified. Please complete registration")
	case errors.Is(err, service.ErrResendRateLimited):
		errorResponse(c, http.StatusTooManyRequests, CodeRateLimitExceeded, "Please wait 2 minutes before requesting a new code")
	case errors.Is(err, service.ErrInvalidToken):
		errorResponse(c, http.StatusUnauthorized, CodeInvalidToken, "Invalid token")
	default:
		logger.Error("unexpected service error", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, CodeInternalError, "Internal server error")
	}
}

func validationErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		errorResponse(c, http.StatusBadRequest, CodeValidationError, "Invalid request body")
		return
	}

	out := make([]ValidationError, len(verr))
	for i, ferr := range verr {
		out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorStruct{
		Success: false,
		Error:   "Validation failed",
		Code:    CodeValidationError,
		Details: out,
	})
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "numeric":
		return "Code must be numeric"
	case "len":
		return fmt.Sprintf("Must be exactly %v characters", value)
	case "min":
		return fmt.Sprintf("Must be at least %v characters", value)
	case "max":
		return fmt.Sprintf("Must be at most %v characters", value)
	case "username":
		return "Username can only contain letters, numbers, and underscores"
	case "refcode":
		return "Invalid referral code format"
	}
	return tag
}

// refreshErrorResponse differs from the general mapping in one way: a
// vanished user yields 401, not 404, since refresh is an authentication
// endpoint.
func refreshErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		errorResponse(c, http.StatusUnauthorized, CodeInvalidToken, "Invalid token")
	case errors.Is(err, service.ErrUserNotFound):
		errorResponse(c, http.StatusUnauthorized, CodeUserNotFound, "User not found")
	default:
		logger.Error("unexpected refresh error", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, CodeInternalError, "Internal server error")
	}
}

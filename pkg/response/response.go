package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/logger"
	"anoa.com/courseplatform/pkg/ratelimiter"
	"anoa.com/courseplatform/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every error answer. Details is only set for validation failures.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details []validator.FieldError `json:"details,omitempty"`
}

// ContextUserIDKey is where the auth middleware stores the authenticated user id.
const ContextUserIDKey = "user_id"

var log = logger.Nop()

// SetLogger replaces the logger used for internal error reporting.
func SetLogger(l *logger.Logger) {
	if l != nil {
		log = l
	}
}

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(ContextUserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ParseUUIDParam reads a uuid path parameter, answering 400 when it is malformed.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid %s", name)})
		return uuid.Nil, false
	}
	return id, true
}

// ValidationError answers 400 for request binding failures.
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   validator.FormatValidationError(err),
		Details: validator.FieldErrors(err),
	})
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	var rateLimitErr *ratelimiter.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: rateLimitErr.Message})
		return
	}

	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		log.Error("internal error",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(code, ErrorResponse{Error: err.Error()})
}

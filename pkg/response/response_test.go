package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/courseplatform/pkg/apperror"
	"anoa.com/courseplatform/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	ResponseError(c, err)
	return w
}

func TestResponseErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
		body string
	}{
		{"not found", fmt.Errorf("course not found: %w", apperror.ErrNotFound), http.StatusNotFound, "course not found"},
		{"duplicate key", fmt.Errorf("create enrollment: %w", gorm.ErrDuplicatedKey), http.StatusConflict, "duplicated key"},
		{"internal is hidden", errors.New("dial tcp: refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := respond(tc.err)
			assert.Equal(t, tc.want, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestResponseErrorRateLimit(t *testing.T) {
	err := fmt.Errorf("login: %w", &ratelimiter.RateLimitError{Message: "too many attempts", RetryAfter: 90 * time.Second})

	w := respond(err)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "90", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "too many attempts")
}

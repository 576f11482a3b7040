package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("course not found: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("not the owner: %w", ErrForbidden), http.StatusForbidden},
		{"bad request", fmt.Errorf("lesson is not part of course: %w", ErrBadRequest), http.StatusBadRequest},
		{"conflict", fmt.Errorf("title taken: %w", ErrConflict), http.StatusConflict},
		{"duplicate key", fmt.Errorf("insert enrollment: %w", gorm.ErrDuplicatedKey), http.StatusConflict},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"unavailable", ErrUnavailable, http.StatusServiceUnavailable},
		{"internal", fmt.Errorf("role missing: %w", ErrInternal), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

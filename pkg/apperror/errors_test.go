package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("discussion not found: %w", ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("only the author can do that: %w", ErrForbidden), http.StatusForbidden},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"bad request", fmt.Errorf("content is required: %w", ErrBadRequest), http.StatusBadRequest},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"app error", New(http.StatusTeapot, "short and stout", nil), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := New(http.StatusForbidden, "", ErrForbidden)
	assert.Equal(t, "forbidden", err.Error())
	assert.True(t, errors.Is(err, ErrForbidden))

	err = New(http.StatusBadRequest, "bad vote type", nil)
	assert.Equal(t, "bad vote type", err.Error())
}

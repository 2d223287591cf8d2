package common

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrValidation, http.StatusBadRequest},
		{ErrLimitReached, http.StatusBadRequest},
		{ErrPreconditionFailed, http.StatusBadRequest},
		{ErrConflict, http.StatusConflict},
		{ErrRequestTimeout, http.StatusRequestTimeout},
		{ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatusFromError(tt.err); got != tt.want {
			t.Errorf("HTTPStatusFromError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHTTPStatusFromWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("team is not ready to start: %w", ErrPreconditionFailed)
	if got := HTTPStatusFromError(wrapped); got != http.StatusBadRequest {
		t.Errorf("wrapped precondition failure = %d, want %d", got, http.StatusBadRequest)
	}
}

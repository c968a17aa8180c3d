package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthenticated("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusBadRequest},
		{New(KindUnavailable, "down"), http.StatusServiceUnavailable},
		{Internal(errors.New("db down"), "oops"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("token reused")
	err := fmt.Errorf("refresh: %w", Wrap(KindUnauthenticated, cause, "Invalid refresh token"))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
	assert.Equal(t, "Invalid refresh token", MessageOf(err))
	assert.True(t, Is(err, KindUnauthenticated))
}

func TestMessageOf_HidesPlainErrors(t *testing.T) {
	assert.Equal(t, "Something went wrong", MessageOf(errors.New("connection refused 10.0.0.3")))
}

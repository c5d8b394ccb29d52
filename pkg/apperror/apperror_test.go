package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/flyobo-travel-api/pkg/apperror"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperror.Validation("missing"), http.StatusBadRequest},
		{"conflict", apperror.Conflict("dup"), http.StatusBadRequest},
		{"auth", apperror.Auth("bad"), http.StatusUnauthorized},
		{"forbidden", apperror.Forbidden("no"), http.StatusForbidden},
		{"not found", apperror.NotFound("gone"), http.StatusNotFound},
		{"expired", apperror.Expired("late"), http.StatusGone},
		{"internal", apperror.Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{"foreign error", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, apperror.StatusOf(tt.err))
		})
	}
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	cause := errors.New("smtp timeout")
	err := fmt.Errorf("send otp: %w", apperror.Internal("Error sending OTP email", cause))

	require.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	require.ErrorIs(t, err, cause)

	ae, ok := apperror.As(err)
	require.True(t, ok)
	require.Equal(t, "Error sending OTP email", ae.Message)
}

func TestKindOfForeignError(t *testing.T) {
	require.Equal(t, apperror.KindInternal, apperror.KindOf(errors.New("x")))
	require.Equal(t, apperror.KindExpired, apperror.KindOf(apperror.Expired("OTP has expired")))
}

package common

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFromError(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", Errorf("problem 7: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", errors.Wrap(ErrForbidden, "admin"), http.StatusForbidden},
		{"validation", Errorf("title: %w", ErrValidation), http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"lock", ErrJobLockFailed, http.StatusConflict},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"pending", Errorf("job x: %w", ErrPending), http.StatusAccepted},
		{"unique violation", errors.Wrap(&pgconn.PgError{Code: "23505"}, "insert"), http.StatusConflict},
		{"other pg", &pgconn.PgError{Code: "42P01"}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, HTTPStatusFromError(tc.err))
		})
	}
}

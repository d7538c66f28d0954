package server

import (
	"errors"
	"net/http"
	"testing"

	"stemhub/core/auth"
	"stemhub/service"
	"stemhub/storage"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		err     error
		status  int
		message string
	}{
		{service.ErrNotFound.New("the track with ID %s not found", "x"), http.StatusNotFound, "the track with ID x not found"},
		{storage.ErrNotFound.New("track/x"), http.StatusNotFound, "file not found"},
		{service.ErrValidation.Wrap(FieldErrors{"name": "is required"}), http.StatusBadRequest, "name: is required"},
		{ErrMalformed.New("request body is empty"), http.StatusBadRequest, "request body is empty"},
		{storage.ErrInvalidFileType.New("image/png"), http.StatusBadRequest, ""},
		{storage.ErrFileTooLarge.New("too big"), http.StatusRequestEntityTooLarge, ""},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge, ""},
		{storage.TooLarge(10 << 20), http.StatusRequestEntityTooLarge, "File too large. The limit is 10 MiB."},
		{auth.ErrUnauthorized.New("Invalid or expired token"), http.StatusUnauthorized, "Invalid or expired token"},
		{auth.ErrForbidden.New("nope"), http.StatusForbidden, "nope"},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal server error"},
	} {
		status, message := classify(tc.err)
		require.Equal(t, tc.status, status, "%v", tc.err)
		if tc.message != "" {
			require.Equal(t, tc.message, message)
		}
	}
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	err := FieldErrors{"user": "is required", "name": "is required"}
	require.Equal(t, "name: is required; user: is required", err.Error())
}

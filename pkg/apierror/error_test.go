package apierror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeAndMessage(t *testing.T) {
	tests := []struct {
		err     *Error
		status  int
		message string
	}{
		{Unknown("boom"), http.StatusInternalServerError, "unknown error: boom"},
		{StoreFailure("insert failed"), http.StatusInternalServerError, "database error: insert failed"},
		{UserNotFound(), http.StatusNotFound, "user not found"},
		{NotAuthenticated(), http.StatusForbidden, "not logged in"},
		{IncorrectCredentials(), http.StatusUnauthorized, "incorrect credentials"},
		{InvalidInput("email is required"), http.StatusBadRequest, "invalid input: email is required"},
		{EmailAlreadyRegistered(), http.StatusBadRequest, "email taken"},
		{PermissionDenied(), http.StatusUnauthorized, "permission denied"},
	}

	for _, tc := range tests {
		t.Run(tc.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.StatusCode())
			assert.Equal(t, tc.message, tc.err.Message())
		})
	}
}

func TestCauseIsInternal(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: users.email")
	err := StoreFailure("unknown database error").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "database error: unknown database error", err.Message())
	assert.Contains(t, err.Error(), "UNIQUE constraint")
}

func TestInvalidInputf(t *testing.T) {
	err := InvalidInputf("%s must be a number", "erau_id")
	assert.Equal(t, "invalid input: erau_id must be a number", err.Message())
}

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/matryer/is"
)

func TestPredicatesUnwrap(t *testing.T) {
	is := is.New(t)

	notFound := NewNotFoundError("device not found", nil)
	wrapped := fmt.Errorf("failed to delete device: %w", notFound)

	is.True(IsNotFound(wrapped))
	is.True(!IsValidation(wrapped))

	// a database error wrapping a not found error still reports not found
	layered := NewDatabaseError("lookup failed", notFound)
	is.True(IsNotFound(layered))

	is.True(IsSessionInvalid(NewSessionError("bad hash", nil)))
	is.True(IsAuthorization(NewAuthorizationError("denied", nil)))
	is.True(!IsNotFound(fmt.Errorf("plain")))
	is.True(!IsNotFound(nil))
}

func TestErrorCodes(t *testing.T) {
	is := is.New(t)

	is.Equal(NewSessionError("x", nil).Code, http.StatusUnauthorized)
	is.Equal(NewAuthorizationError("x", nil).Code, http.StatusForbidden)
	is.Equal(NewNotFoundError("x", nil).Code, http.StatusNotFound)
	is.Equal(NewValidationError("x", nil).Code, http.StatusBadRequest)

	err := NewInternalError("boom", fmt.Errorf("disk full")).WithRequestID("req_1")
	is.Equal(err.RequestID, "req_1")
	is.Equal(err.Error(), "internal: boom (internal: disk full)")

	apiErr, ok := As(fmt.Errorf("ctx: %w", err))
	is.True(ok)
	is.Equal(apiErr, err)
}

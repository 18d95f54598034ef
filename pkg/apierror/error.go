package apierror

import (
	"fmt"
	"net/http"
)

// Kind identifies a member of the closed API error taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	KindStoreFailure
	KindUserNotFound
	KindNotAuthenticated
	KindIncorrectCredentials
	KindInvalidInput
	KindEmailAlreadyRegistered
	KindPermissionDenied
)

// String returns a stable name for logs.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindStoreFailure:
		return "store_failure"
	case KindUserNotFound:
		return "user_not_found"
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindIncorrectCredentials:
		return "incorrect_credentials"
	case KindInvalidInput:
		return "invalid_input"
	case KindEmailAlreadyRegistered:
		return "email_already_registered"
	case KindPermissionDenied:
		return "permission_denied"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is an API failure that can be written to a client.
//
// Detail is part of the client-visible message for the kinds that carry one.
// Cause is internal only: it is logged server-side and never serialized.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message() + ": " + e.Cause.Error()
	}
	return e.Message()
}

// Unwrap exposes the internal cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Message returns the human-readable text sent in the "error" field.
func (e *Error) Message() string {
	switch e.Kind {
	case KindUnknown:
		return "unknown error: " + e.Detail
	case KindStoreFailure:
		return "database error: " + e.Detail
	case KindUserNotFound:
		return "user not found"
	case KindNotAuthenticated:
		return "not logged in"
	case KindIncorrectCredentials:
		return "incorrect credentials"
	case KindInvalidInput:
		return "invalid input: " + e.Detail
	case KindEmailAlreadyRegistered:
		return "email taken"
	case KindPermissionDenied:
		return "permission denied"
	default:
		return "unknown error"
	}
}

// StatusCode maps the kind onto an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindUserNotFound:
		return http.StatusNotFound
	case KindNotAuthenticated:
		return http.StatusForbidden
	case KindIncorrectCredentials, KindPermissionDenied:
		return http.StatusUnauthorized
	case KindInvalidInput, KindEmailAlreadyRegistered:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WithCause attaches an internal cause and returns the receiver.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Unknown creates a 500 error for unexpected failures.
func Unknown(detail string) *Error {
	return &Error{Kind: KindUnknown, Detail: detail}
}

// StoreFailure creates a 500 error for persistence failures.
// The detail must be safe for clients; put the driver error in Cause.
func StoreFailure(detail string) *Error {
	return &Error{Kind: KindStoreFailure, Detail: detail}
}

// UserNotFound creates a 404 error.
func UserNotFound() *Error {
	return &Error{Kind: KindUserNotFound}
}

// NotAuthenticated creates a 403 error.
func NotAuthenticated() *Error {
	return &Error{Kind: KindNotAuthenticated}
}

// IncorrectCredentials creates a 401 error.
func IncorrectCredentials() *Error {
	return &Error{Kind: KindIncorrectCredentials}
}

// InvalidInput creates a 400 error describing what was wrong.
func InvalidInput(detail string) *Error {
	return &Error{Kind: KindInvalidInput, Detail: detail}
}

// InvalidInputf is InvalidInput with formatting.
func InvalidInputf(format string, args ...any) *Error {
	return InvalidInput(fmt.Sprintf(format, args...))
}

// EmailAlreadyRegistered creates a 400 error.
func EmailAlreadyRegistered() *Error {
	return &Error{Kind: KindEmailAlreadyRegistered}
}

// PermissionDenied creates a 401 error.
func PermissionDenied() *Error {
	return &Error{Kind: KindPermissionDenied}
}

// Package apierrors defines the error kinds surfaced to API clients and
// their HTTP mapping.
package apierrors

import (
	"fmt"
	"net/http"
)

// APIError is an error with a stable HTTP status and a human-readable
// message safe to show the acting user.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// NewErrInvalidCredentials covers both an unknown handle and a wrong
// secret. The two cases are deliberately indistinguishable so the login
// form cannot be used to enumerate handles.
func NewErrInvalidCredentials() *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Message: "invalid username or password",
	}
}

// NewErrAccountBlocked signals valid credentials on an inactive account.
func NewErrAccountBlocked() *APIError {
	return &APIError{
		Status:  http.StatusForbidden,
		Message: "this account has been blocked by an administrator",
	}
}

// NewErrDuplicateTitle signals a title-uniqueness violation on save or
// update, detected before any write occurs.
func NewErrDuplicateTitle(title string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Message: fmt.Sprintf("a report titled %q already exists", title),
	}
}

// NewErrHandleTaken signals an attempt to register an already used handle.
func NewErrHandleTaken(handle string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Message: fmt.Sprintf("a user with the username %q already exists", handle),
	}
}

// NewErrAccountNotFound signals that a referenced account vanished
// between read and act.
func NewErrAccountNotFound() *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: "account not found",
	}
}

// NewErrReportNotFound covers both a missing report and a report owned
// by someone else.
func NewErrReportNotFound() *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Message: "report not found",
	}
}

// NewErrMasterImmutable rejects block/delete attempts against the
// master account.
func NewErrMasterImmutable() *APIError {
	return &APIError{
		Status:  http.StatusForbidden,
		Message: "the master account cannot be modified",
	}
}

// NewErrForbidden rejects non-master calls to administrator endpoints.
func NewErrForbidden() *APIError {
	return &APIError{
		Status:  http.StatusForbidden,
		Message: "administrator access required",
	}
}

// NewErrMissingAuthorizationToken signals an absent bearer token.
func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Message: "missing authorization token",
	}
}

// NewErrInvalidAuthorizationToken signals an unparseable or expired
// bearer token.
func NewErrInvalidAuthorizationToken() *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Message: "invalid authorization token",
	}
}

// NewErrValidation signals a malformed request body or parameter.
func NewErrValidation(msg string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: msg,
	}
}

package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewDuplicateTicket reports a creator who already has an open ticket.
// User-facing; not logged as an error.
func NewDuplicateTicket(userID string) error {
	return NewDomainError("DUPLICATE_TICKET",
		"you already have an open ticket",
		http.StatusConflict,
		map[string]any{"user_id": userID})
}

// NewUnknownCategory reports a category key missing from the catalog.
func NewUnknownCategory(key string) error {
	return NewDomainError("UNKNOWN_CATEGORY",
		fmt.Sprintf("unknown ticket category %q", key),
		http.StatusBadRequest,
		map[string]any{"category_key": key})
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewDuplicateThread reports a registry insert against an existing thread id.
func NewDuplicateThread(threadID string) error {
	return NewDomainError("DUPLICATE_THREAD",
		"ticket already registered for thread",
		http.StatusConflict,
		map[string]any{"thread_id": threadID})
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewGatewayFailure wraps a failed Discord REST call with diagnostic context.
func NewGatewayFailure(op string, err error, details map[string]any) error {
	return &DomainError{
		Code:       "GATEWAY_FAILURE",
		Message:    fmt.Sprintf("discord %s failed", op),
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
		Err:        err,
	}
}

// NewArchivalFailure wraps a transcript delivery failure. Never blocks close.
func NewArchivalFailure(err error, details map[string]any) error {
	return &DomainError{
		Code:       "ARCHIVAL_FAILURE",
		Message:    "transcript archival failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

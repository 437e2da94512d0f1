package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrStorage          = errors.New("storage failure")
	ErrMalformedData    = errors.New("malformed stored data")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message      string
		ResourceType string
		ResourceID   string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// InvalidOperationError indicates a structurally forbidden request,
	// such as moving a folder underneath itself
	InvalidOperationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string         { return e.Message }
func (e *ValidationError) Error() string       { return e.Message }
func (e *InvalidOperationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int         { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int       { return http.StatusBadRequest }
func (e *InvalidOperationError) StatusCode() int { return http.StatusBadRequest }

// Is lets errors.Is match the typed errors against their sentinels
func (e *NotFoundError) Is(target error) bool         { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool       { return target == ErrValidation }
func (e *InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }

// NewNotFound builds a NotFoundError for the given resource
func NewNotFound(resourceType, id string) *NotFoundError {
	return &NotFoundError{
		Message:      resourceType + " " + id + " not found",
		ResourceType: resourceType,
		ResourceID:   id,
	}
}

package placechat

import (
	"errors"
	"fmt"
)

var (
	// ErrConversationNotFound indicates the conversation was not found.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrPlaceNotFound indicates a referenced place was not found.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrUnauthorized indicates the request was unauthorized.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBusy indicates a mutation was dropped because another one is still
	// in flight.
	ErrBusy = errors.New("request already in flight")
)

// Error codes attached to Error values. The HTTP layers on both sides map
// these to status codes.
const (
	ErrCodeValidation   = "validation_error"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeTransport    = "transport_error"
	ErrCodeHydration    = "hydration_error"
	ErrCodeRanking      = "ranking_error"
	ErrCodeStorage      = "storage_error"
	ErrCodeInternal     = "internal_error"
)

// Error is a coded error carrying enough structure for the HTTP layer to
// build an error response.
type Error struct {
	Code    string
	Message string
	Err     error
}

// NewError creates a coded error wrapping an optional cause.
func NewError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewValidationError creates a validation error.
func NewValidationError(message string) *Error {
	return NewError(ErrCodeValidation, message, nil)
}

// NewNotFoundError creates a not-found error for a resource.
func NewNotFoundError(resource, id string) *Error {
	return NewError(ErrCodeNotFound, fmt.Sprintf("%s %q not found", resource, id), nil)
}

// NewTransportError creates an error for a failed backend call.
func NewTransportError(operation string, err error) *Error {
	return NewError(ErrCodeTransport, operation+" failed", err)
}

// NewHydrationError creates an error for a failed hydration pass.
func NewHydrationError(err error) *Error {
	return NewError(ErrCodeHydration, "conversation hydration failed", err)
}

// Package apperror defines the error taxonomy shared by every layer.
//
// Services return *AppError values that wrap one of the sentinel errors below.
// Callers use errors.Is to classify them; the HTTP layer maps each sentinel to
// a status code in handler/response.go.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrValidation              = errors.New("validation error")
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrIncompleteReview        = errors.New("incomplete review")
	ErrForbidden               = errors.New("forbidden")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports rejected input (empty location, missing opponent,
// out-of-range rating). Nothing has been mutated when it is returned.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidTransition reports a status change that skips or reverses the
// match lifecycle.
func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Err:     ErrInvalidTransition,
		Message: fmt.Sprintf("cannot move match from %s to %s", from, to),
	}
}

// AlreadyReviewed reports a review submitted for a match that another
// participant has already reviewed.
func AlreadyReviewed(matchID string) *AppError {
	return &AppError{
		Err:     ErrInvalidTransition,
		Message: fmt.Sprintf("match %s already reviewed", matchID),
	}
}

// IncompleteReview reports a submission that is missing a rating for the
// named participant.
func IncompleteReview(userID string) *AppError {
	return &AppError{
		Err:     ErrIncompleteReview,
		Message: fmt.Sprintf("missing rating for player %s", userID),
		Field:   "ratings",
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// CollaboratorUnavailable wraps a failure of an external collaborator.
// It is absorbed at the collaborator boundary and never reaches HTTP clients.
func CollaboratorUnavailable(name string, cause error) *AppError {
	msg := fmt.Sprintf("%s unavailable", name)
	if cause != nil {
		msg = fmt.Sprintf("%s unavailable: %v", name, cause)
	}
	return &AppError{
		Err:     ErrCollaboratorUnavailable,
		Message: msg,
	}
}

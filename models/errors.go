package models

import (
	"errors"
	"fmt"
)

// ErrTransientStore marks record-store or broadcast-channel failures that the
// caller may surface as "try again". Mutating calls are never auto-retried.
var ErrTransientStore = errors.New("record store temporarily unavailable")

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports that the acting user's role is insufficient.
// Distinct from NotFoundError so clients can tell "doesn't exist" from
// "exists but you can't touch it".
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("access forbidden: %s", e.Reason)
}

func NewAuthorizationError(format string, args ...interface{}) error {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing team, membership, or shared task.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvariantViolationError rejects an operation that would corrupt a
// structural invariant, e.g. leaving a team with no Owner.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Reason)
}

func NewInvariantViolationError(format string, args ...interface{}) error {
	return &InvariantViolationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInvariantViolation(err error) bool {
	var iv *InvariantViolationError
	return errors.As(err, &iv)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientStore)
}

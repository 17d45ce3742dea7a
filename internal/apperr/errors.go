// Package apperr defines the error categories surfaced by the account and
// reset-request workflows. Callers match them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("insufficient role")
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream error")

	// ErrAlreadyResolved is a conflict: the reset request left the pending state.
	ErrAlreadyResolved = fmt.Errorf("%w: request already resolved", ErrConflict)

	// ErrPasswordChangeRequired blocks accounts flagged must_change_password.
	ErrPasswordChangeRequired = errors.New("password change required")
)

// New returns an error of category kind whose message is msg.
func New(kind error, msg string) error {
	return &detailError{kind: kind, msg: msg}
}

// Validation returns an ErrValidation carrying a caller-facing message.
func Validation(msg string) error {
	return New(ErrValidation, msg)
}

// NotFound returns an ErrNotFound carrying a caller-facing message.
func NotFound(msg string) error {
	return New(ErrNotFound, msg)
}

type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }

func (e *detailError) Is(target error) bool { return target == e.kind }

// UpstreamError wraps a failure from the identity provider or data store.
// Error returns the underlying message verbatim.
type UpstreamError struct {
	Op  string
	Err error
}

// Upstream wraps err as an UpstreamError for operation op.
func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

func (e *UpstreamError) Error() string { return e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

package domain

import (
	"context"
	"errors"
	"io/fs"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Requests failing validation are rejected before any filesystem walk.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file whose content cannot be turned into text.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrPathInaccessible indicates a location or file the process cannot read.
	ErrPathInaccessible = errors.New("path inaccessible")

	// ErrCancelled indicates the caller aborted the operation.
	ErrCancelled = errors.New("cancelled")

	// ErrResourceLimitExceeded indicates a file or run hit a configured ceiling.
	ErrResourceLimitExceeded = errors.New("resource limit exceeded")

	// ErrUnexpected indicates a failure outside the other categories.
	ErrUnexpected = errors.New("unexpected error")
)

// ErrorKind is the wire name of an error category.
type ErrorKind string

// Error kinds reported to clients.
const (
	KindInvalidInput          ErrorKind = "invalid_input"
	KindPathInaccessible      ErrorKind = "path_inaccessible"
	KindCancelled             ErrorKind = "cancelled"
	KindResourceLimitExceeded ErrorKind = "resource_limit_exceeded"
	KindNotFound              ErrorKind = "not_found"
	KindUnexpected            ErrorKind = "unexpected"
)

// KindOf classifies err into an ErrorKind. A nil error has no kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedType):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrPathInaccessible),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, fs.ErrNotExist):
		return KindPathInaccessible
	case errors.Is(err, ErrResourceLimitExceeded):
		return KindResourceLimitExceeded
	default:
		return KindUnexpected
	}
}

// OpError records the operation and path that failed.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err represents a caller-initiated abort.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}

// Package errors defines the error taxonomy shared by the loader, the ingest
// pipeline and the authoring service, and maps it to process exit codes.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConnection marks a bad user-supplied store connection parameter.
	ErrInvalidConnection = errors.New("invalid connection parameter")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrMalformedResource = errors.New("malformed resource")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
)

// Exit codes returned by the forumdb binary.
const (
	ExitOK               = 0
	ExitInvalidParameter = 1
	ExitFailure          = 2
)

// AppError attaches a human-readable message to one of the sentinels above.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{Err: sentinel, Message: message}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps err to the process exit code of the bulk loader.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidConnection):
		return ExitInvalidParameter
	default:
		return ExitFailure
	}
}

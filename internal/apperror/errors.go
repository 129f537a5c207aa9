package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the outcomes the engine distinguishes. Services wrap
// these with %w so controllers can map them to HTTP statuses with errors.Is.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource conflict")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrUnauthorized       = errors.New("unauthorized")
)

// ValidationError is rejected before any state mutation and surfaced to the
// caller verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func PreconditionFailedf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrPreconditionFailed)...)
}

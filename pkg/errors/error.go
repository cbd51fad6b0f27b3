package errors

import (
	"errors"
	"fmt"
)

// AppError carries a machine readable code next to a human message and an
// optional cause. Two AppErrors with the same code and message match under
// errors.Is, so a sentinel survives Wrap, WithCause and fmt.Errorf("%w").
type AppError struct {
	code    string
	message string
	err     error
}

// NewAppError creates a new application error
func NewAppError(code string, message string, err error) *AppError {
	return &AppError{code: code, message: message, err: err}
}

// Sentinel declares a package level AppError without a cause
func Sentinel(code, message string) *AppError {
	return NewAppError(code, message, nil)
}

// WithCause returns a copy of e that wraps err
func (e *AppError) WithCause(err error) *AppError {
	return NewAppError(e.code, e.message, err)
}

func (e *AppError) Error() string {
	if e.err == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *AppError) Code() string    { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Unwrap() error   { return e.err }

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.code == t.code && e.message == t.message
}

// Wrap adds context to err. The code of the nearest AppError in the chain is
// kept; anything else becomes ErrInternal.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return NewAppError(CodeOf(err), message, err)
}

// CodeOf returns the code of the nearest AppError in the chain, or ErrInternal
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.code
	}
	return ErrInternal
}

package response

import (
	"errors"
)

// Error is a domain error that carries the HTTP status it maps to. Two errors
// match under errors.Is when status and message agree.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// Status returns the HTTP status of err, or fallback when err is not a
// domain error.
func Status(err error, fallback int) int {
	var respErr *Error
	if errors.As(err, &respErr) {
		return respErr.Code
	}
	return fallback
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}

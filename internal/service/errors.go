package service

import "errors"

var ErrInvalidInput = errors.New("invalid input")

type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidInput, e.Err}
}

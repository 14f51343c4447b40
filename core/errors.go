package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// MalformedInputError signals data that cannot be parsed at all (eg. a stored
// date/time string in an unknown format). It is a data-integrity error, not a
// user input error.
type MalformedInputError struct {
	message string
}

func NewMalformedInputError(msg string) error {
	return &MalformedInputError{message: msg}
}

func (err MalformedInputError) Error() string {
	return err.message
}

func IsMalformedInput(err error) bool {
	_, ok := errors.Cause(err).(*MalformedInputError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

package core

import (
	"fmt"

	"github.com/pkg/errors"
)

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

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// AuthError is fatal to the session: the holder's credentials are gone or
// rejected, and the session has already been invalidated by the time it is
// returned.
type AuthError struct {
	message string
}

func NewAuthError(msg string) error {
	return &AuthError{message: msg}
}

func (err AuthError) Error() string {
	return err.message
}

func IsAuthError(err error) bool {
	_, ok := errors.Cause(err).(*AuthError)
	return ok
}

// NetworkError is a transport-level failure that persisted after the single
// allowed retry. It is user-visible but not fatal.
type NetworkError struct {
	Err error
}

func NewNetworkError(err error) error {
	return &NetworkError{Err: err}
}

func (err NetworkError) Error() string {
	if err.Err == nil {
		return "network failure"
	}
	return "network failure: " + err.Err.Error()
}

func IsNetworkError(err error) bool {
	_, ok := errors.Cause(err).(*NetworkError)
	return ok
}

// ServerError is a 5xx response.
type ServerError struct {
	Status  int
	Message string
}

func NewServerError(status int, msg string) error {
	return &ServerError{Status: status, Message: msg}
}

func (err ServerError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	return fmt.Sprintf("server responded with status %d", err.Status)
}

func IsServerError(err error) bool {
	_, ok := errors.Cause(err).(*ServerError)
	return ok
}

// PermissionError is raised locally, before any network call, when a caller
// attempts a mutation their role is not allowed to make.
type PermissionError struct {
	message string
}

func NewPermissionError(msg string) error {
	return &PermissionError{message: msg}
}

func (err PermissionError) Error() string {
	return err.message
}

func IsPermissionError(err error) bool {
	_, ok := errors.Cause(err).(*PermissionError)
	return ok
}

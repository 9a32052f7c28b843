// Package errors provides the structured error system for tiercache with
// error codes, retryability hints, and key context.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Code identifies a class of cache failure.
type Code string

const (
	// CodeKeyNotFound - a lookup found no mapping. Rarely surfaced as an
	// error; most read paths report absence as a miss instead.
	CodeKeyNotFound Code = "KEY_NOT_FOUND"

	// CodeExpired - a mapping existed but its TTL had elapsed.
	CodeExpired Code = "EXPIRED"

	// CodeCapacityExceeded - the entry count crossed the configured ceiling.
	// Internal to the eviction loop, never returned to callers.
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"

	// CodeLoaderFailed - a loader or revalidation function returned an error.
	CodeLoaderFailed Code = "LOADER_FAILED"

	// CodeStoreIO - a persistent store operation failed at the I/O level.
	CodeStoreIO Code = "STORE_IO"

	// CodeCorrupt - a persisted entry could not be decoded.
	CodeCorrupt Code = "CORRUPT"

	// CodeInvalidConfig - configuration failed validation.
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// Error is a structured cache error with a code, the affected key when
// known, and the wrapped cause.
type Error struct {
	Code      Code      `json:"code"`
	Message   string    `json:"message"`
	Key       string    `json:"key,omitempty"`
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (key %q): %v", e.Code, e.Message, e.Key, e.Cause)
		}
		return fmt.Sprintf("%s: %s (key %q)", e.Code, e.Message, e.Key)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two structured errors by code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// Retryable reports whether retrying the failed operation can help.
// Loader and store failures are transient by default; corrupt data and
// invalid configuration are not.
func (e *Error) Retryable() bool {
	switch e.Code {
	case CodeLoaderFailed, CodeStoreIO:
		return true
	default:
		return false
	}
}

// New creates a structured error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Timestamp: time.Now()}
}

// Newf creates a structured error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a structured error around a cause.
func Wrap(code Code, message string, cause error) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// WithKey attaches the affected key.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the code from err, or empty when err is not structured.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

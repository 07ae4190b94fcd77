// Package errors provides structured errors with stable codes for the
// launcher. Codes let callers (and tests) branch on failure categories
// without matching message strings.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing.
type ErrorCode string

const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// SteamCMD tool errors
	ErrToolNotFound     ErrorCode = "TOOL_NOT_FOUND"
	ErrToolAccessDenied ErrorCode = "TOOL_ACCESS_DENIED"
	ErrToolRateLimited  ErrorCode = "TOOL_RATE_LIMITED"
	ErrToolTimedOut     ErrorCode = "TOOL_TIMED_OUT"
	ErrToolFailed       ErrorCode = "TOOL_FAILED"

	// Content errors
	ErrCacheMissing      ErrorCode = "CACHE_MISSING_AFTER_DOWNLOAD"
	ErrContentInvalid    ErrorCode = "MINIMUM_CONTENT_INVALID"
	ErrRequiredItems     ErrorCode = "REQUIRED_ITEMS_FAILED"
	ErrCredentialsAbsent ErrorCode = "CREDENTIALS_ABSENT"

	// Layout errors
	ErrLayoutCollision ErrorCode = "LAYOUT_COLLISION"
	ErrLayoutAmbiguous ErrorCode = "LAYOUT_AMBIGUOUS"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// LaunchError represents a structured error with code and details.
type LaunchError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface.
func (e *LaunchError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface.
func (e *LaunchError) Unwrap() error {
	return e.Wrapped
}

// Is matches two LaunchErrors by code.
func (e *LaunchError) Is(target error) bool {
	var targetErr *LaunchError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LaunchError with the given code and message.
func New(code ErrorCode, message string) *LaunchError {
	return &LaunchError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LaunchError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *LaunchError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a LaunchError.
func Wrap(err error, code ErrorCode, message string) *LaunchError {
	if err == nil {
		return nil
	}
	return &LaunchError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LaunchError {
	if err == nil {
		return nil
	}
	return &LaunchError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error.
func (e *LaunchError) WithDetail(key string, value interface{}) *LaunchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var launchErr *LaunchError
	if errors.As(err, &launchErr) {
		return launchErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if
// it is not a LaunchError.
func GetErrorCode(err error) ErrorCode {
	var launchErr *LaunchError
	if errors.As(err, &launchErr) {
		return launchErr.Code
	}
	return ErrUnknown
}

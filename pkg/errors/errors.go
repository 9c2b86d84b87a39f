package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Identifier derivation errors
	ErrIdentifierEmpty    ErrorCode = "IDENTIFIER_EMPTY"
	ErrIdentifierGrammar  ErrorCode = "IDENTIFIER_GRAMMAR"
	ErrIdentifierReserved ErrorCode = "IDENTIFIER_RESERVED"
	ErrDomainSuffix       ErrorCode = "DOMAIN_SUFFIX"
	ErrDomainInvalid      ErrorCode = "DOMAIN_INVALID"

	// Template pack errors
	ErrPackNotFound ErrorCode = "PACK_NOT_FOUND"
	ErrPackInvalid  ErrorCode = "PACK_INVALID"
	ErrPackAccess   ErrorCode = "PACK_ACCESS"

	// Render errors
	ErrRenderMarker     ErrorCode = "RENDER_MARKER"
	ErrRenderSyntax     ErrorCode = "RENDER_SYNTAX"
	ErrRenderPredicate  ErrorCode = "RENDER_PREDICATE"
	ErrContextCollision ErrorCode = "CONTEXT_COLLISION"

	// Materialize errors
	ErrMaterializeConflict ErrorCode = "MATERIALIZE_CONFLICT"
	ErrMaterializeExists   ErrorCode = "MATERIALIZE_EXISTS"
	ErrStateLoad           ErrorCode = "STATE_LOAD"
	ErrStateSave           ErrorCode = "STATE_SAVE"

	// Target resolution errors
	ErrTargetUnknown   ErrorCode = "TARGET_UNKNOWN"
	ErrPlatformUnknown ErrorCode = "PLATFORM_UNKNOWN"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileCreate   ErrorCode = "FILE_CREATE"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// CrossgenError represents a structured error with code and details
type CrossgenError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CrossgenError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CrossgenError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CrossgenError) Is(target error) bool {
	var targetErr *CrossgenError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CrossgenError with the given code and message
func New(code ErrorCode, message string) *CrossgenError {
	return &CrossgenError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CrossgenError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CrossgenError {
	return &CrossgenError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CrossgenError
func Wrap(err error, code ErrorCode, message string) *CrossgenError {
	if err == nil {
		return nil
	}
	return &CrossgenError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CrossgenError {
	if err == nil {
		return nil
	}
	return &CrossgenError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CrossgenError) WithDetail(key string, value interface{}) *CrossgenError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *CrossgenError) WithDetails(details map[string]interface{}) *CrossgenError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var cgErr *CrossgenError
	if errors.As(err, &cgErr) {
		return cgErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CrossgenError
func GetErrorCode(err error) ErrorCode {
	var cgErr *CrossgenError
	if errors.As(err, &cgErr) {
		return cgErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a CrossgenError
func GetErrorDetails(err error) map[string]interface{} {
	var cgErr *CrossgenError
	if errors.As(err, &cgErr) {
		return cgErr.Details
	}
	return nil
}

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingField    ErrorType = "MISSING_FIELD"
	ErrTypeInvalidArgument ErrorType = "INVALID_ARGUMENT"
	ErrTypeEmptyInput      ErrorType = "EMPTY_INPUT"
	ErrTypeBind            ErrorType = "BIND"
	ErrTypeParsing         ErrorType = "PARSING"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeConfig          ErrorType = "CONFIG"
)

// Sentinel errors of the dashboard taxonomy. Every *AppError of the matching
// type satisfies errors.Is against its sentinel.
var (
	ErrMissingField    = errors.New("missing field")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyInput      = errors.New("empty input")
	ErrBindError       = errors.New("bind error")
)

var sentinels = map[ErrorType]error{
	ErrTypeMissingField:    ErrMissingField,
	ErrTypeInvalidArgument: ErrInvalidArgument,
	ErrTypeEmptyInput:      ErrEmptyInput,
	ErrTypeBind:            ErrBindError,
}

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error of the error's type
func (e *AppError) Is(target error) bool {
	sentinel, ok := sentinels[e.Type]
	return ok && sentinel == target
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// MissingField reports a bound field that is absent from the data schema
func MissingField(field string, available []string) *AppError {
	return NewAppError(ErrTypeMissingField,
		fmt.Sprintf("field %q not found (available: %s)", field, strings.Join(available, ", ")), nil).
		WithContext("field", field)
}

// InvalidArgument reports a bad grouping, ranking or binding parameter
func InvalidArgument(format string, args ...interface{}) *AppError {
	return NewAppError(ErrTypeInvalidArgument, fmt.Sprintf(format, args...), nil)
}

// EmptyInput reports an operation over no rows
func EmptyInput(what string) *AppError {
	return NewAppError(ErrTypeEmptyInput, fmt.Sprintf("%s has no rows", what), nil)
}

// BindError reports a listener that could not acquire its address
func BindError(addr string, cause error) *AppError {
	return NewAppError(ErrTypeBind, fmt.Sprintf("cannot listen on %s", addr), cause).
		WithContext("addr", addr)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

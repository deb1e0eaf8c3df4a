package lake

import (
	"errors"
	"fmt"
)

// ErrorType classifies lake failures.
type ErrorType string

const (
	ErrTypeFilesystem ErrorType = "FILESYSTEM"
	ErrTypeParse      ErrorType = "PARSE"
	ErrTypeConfig     ErrorType = "CONFIG"
)

var (
	ErrDuplicateColumn  = errors.New("duplicate column name")
	ErrMissingGroup     = errors.New("column group not found in descriptor")
	ErrRowCountMismatch = errors.New("simulation number does not match discovered directories")
	ErrRowOutOfRange    = errors.New("row index out of range")
	ErrColumnCount      = errors.New("wrong number of values for row")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrNegativeRows     = errors.New("simulation number must not be negative")
)

// LakeError carries the failure class, a message and the underlying cause.
type LakeError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *LakeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *LakeError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair to the error and returns it.
func (e *LakeError) WithContext(key string, value interface{}) *LakeError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func newLakeError(t ErrorType, message string, cause error) *LakeError {
	return &LakeError{Type: t, Message: message, Cause: cause}
}

// NewFilesystemError reports a missing or unreadable path.
func NewFilesystemError(message string, cause error) *LakeError {
	return newLakeError(ErrTypeFilesystem, message, cause)
}

// NewParseError reports a simulation name or data file that could not be parsed.
func NewParseError(message string, cause error) *LakeError {
	return newLakeError(ErrTypeParse, message, cause)
}

// NewConfigError reports an inconsistent descriptor or configuration.
func NewConfigError(message string, cause error) *LakeError {
	return newLakeError(ErrTypeConfig, message, cause)
}

func isType(err error, t ErrorType) bool {
	var le *LakeError
	return errors.As(err, &le) && le.Type == t
}

func IsFilesystemError(err error) bool { return isType(err, ErrTypeFilesystem) }
func IsParseError(err error) bool      { return isType(err, ErrTypeParse) }
func IsConfigError(err error) bool     { return isType(err, ErrTypeConfig) }

// Package errors defines the structured error type used across the tephra
// compile pipeline, along with the fixed taxonomy of failure kinds.
//
// Every failure surfaced to a caller is a *TephraError carrying a kind, a
// stable code, and the offending template path. Compile failures are never
// downgraded to warnings: a template bug silently producing blank output is
// considered worse than a loud failure.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes pipeline failures.
type ErrorType string

const (
	// ErrorTypePathEscape marks a template identifier that resolved outside
	// the configured template root. Never recovered.
	ErrorTypePathEscape ErrorType = "path_escape"

	// ErrorTypeInheritance marks a violated block/yield contract between a
	// child template and its parent.
	ErrorTypeInheritance ErrorType = "inheritance"

	// ErrorTypeIncludeDepth marks include expansion exceeding the configured
	// recursion ceiling.
	ErrorTypeIncludeDepth ErrorType = "include_depth"

	// ErrorTypeIO marks unreadable sources, unwritable cache directories and
	// failed atomic renames.
	ErrorTypeIO ErrorType = "io"

	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// Stable error codes.
const (
	ErrCodePathEscape     = "ERR_PATH_ESCAPE"
	ErrCodeDuplicateBlock = "ERR_DUPLICATE_BLOCK"
	ErrCodeUnmatchedBlock = "ERR_UNMATCHED_BLOCK"
	ErrCodeUnfilledYield  = "ERR_UNFILLED_YIELD"
	ErrCodeIncludeDepth   = "ERR_INCLUDE_DEPTH"
	ErrCodeReadFailed     = "ERR_READ_FAILED"
	ErrCodeWriteFailed    = "ERR_WRITE_FAILED"
	ErrCodeRenameFailed   = "ERR_RENAME_FAILED"
	ErrCodeConfigInvalid  = "ERR_CONFIG_INVALID"
	ErrCodeInternal       = "ERR_INTERNAL"
)

// TephraError is a structured error with kind, code, and template context.
type TephraError struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Template string
	Context  map[string]interface{}
}

// Error implements the error interface.
func (e *TephraError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Template != "" {
		parts = append(parts, "template:"+e.Template)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *TephraError) Unwrap() error {
	return e.Cause
}

// Is matches on kind and code so callers can compare against sentinel values.
func (e *TephraError) Is(target error) bool {
	var t *TephraError
	if errors.As(target, &t) {
		return e.Type == t.Type && (t.Code == "" || e.Code == t.Code)
	}

	return false
}

// WithContext adds context information to the error.
func (e *TephraError) WithContext(key string, value interface{}) *TephraError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithTemplate records the template the error was detected in.
func (e *TephraError) WithTemplate(template string) *TephraError {
	e.Template = template

	return e
}

// Error creation functions

// NewPathEscapeError creates a path-escape error for the given identifier.
func NewPathEscapeError(id string) *TephraError {
	return &TephraError{
		Type:    ErrorTypePathEscape,
		Code:    ErrCodePathEscape,
		Message: "template path resolves outside template root: " + id,
	}
}

// NewInheritanceError creates a block/yield contract violation.
func NewInheritanceError(code, message string) *TephraError {
	return &TephraError{
		Type:    ErrorTypeInheritance,
		Code:    code,
		Message: message,
	}
}

// NewIncludeDepthError creates an include-depth error.
func NewIncludeDepthError(depth int, id string) *TephraError {
	return &TephraError{
		Type:    ErrorTypeIncludeDepth,
		Code:    ErrCodeIncludeDepth,
		Message: fmt.Sprintf("include depth %d exceeded expanding %q", depth, id),
	}
}

// NewIOError creates an I/O error for the given path.
func NewIOError(code, message, path string, cause error) *TephraError {
	return &TephraError{
		Type:     ErrorTypeIO,
		Code:     code,
		Message:  message,
		Cause:    cause,
		Template: path,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string) *TephraError {
	return &TephraError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *TephraError {
	return &TephraError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternal,
		Message: message,
		Cause:   cause,
	}
}

// Predicates used at call sites that branch on failure kind.

// IsPathEscape reports whether err is a path-escape failure.
func IsPathEscape(err error) bool {
	return isType(err, ErrorTypePathEscape)
}

// IsInheritance reports whether err is an inheritance contract violation.
func IsInheritance(err error) bool {
	return isType(err, ErrorTypeInheritance)
}

// IsIncludeDepth reports whether err is an include-depth failure.
func IsIncludeDepth(err error) bool {
	return isType(err, ErrorTypeIncludeDepth)
}

// IsIO reports whether err is an I/O failure.
func IsIO(err error) bool {
	return isType(err, ErrorTypeIO)
}

func isType(err error, t ErrorType) bool {
	var te *TephraError
	if errors.As(err, &te) {
		return te.Type == t
	}

	return false
}

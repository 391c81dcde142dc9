// Package errors provides centralized error definitions and error handling utilities
// for diffwatch. It defines the error taxonomy of the refresh loop, error
// constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
//   - LaunchError: the shell or command could not be started. Fatal.
//   - EncodingError: captured or highlighted bytes are not valid UTF-8. Recovered
//     locally by treating the affected content as empty.
//   - ValidationError: invalid input or configuration.
//
// A nonzero exit status of the watched command is not an error at all.
//
// # Usage
//
//	err := errors.NewLaunchError("bash", cause).WithCommand("date")
//
//	if errors.IsFatal(err) {
//	    return err
//	}
//
//	var launchErr *errors.LaunchError
//	if errors.As(err, &launchErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that stop the refresh loop.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrLaunchFailed indicates that the shell or command could not be started.
	ErrLaunchFailed = New("failed to launch command")
	// ErrInvalidEncoding indicates that bytes could not be decoded as UTF-8 text.
	ErrInvalidEncoding = New("invalid utf-8 encoding")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// WatchError is the base interface for all diffwatch errors.
type WatchError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsFatal returns true if the refresh loop must stop.
	IsFatal() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message  string
	cause    error
	severity Severity
	fatal    bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsFatal returns whether the error stops the loop.
func (e *baseError) IsFatal() bool {
	return e.fatal
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// LaunchError reports that the shell could not be spawned for a command.
//
// Example:
//
//	err := errors.NewLaunchError("/bin/nope", cause).WithCommand("date")
//	fmt.Println(err) // "launch error [shell=/bin/nope, command=date]: failed to launch command: <cause>"
type LaunchError struct {
	baseError
	Shell   string
	Command string
}

// NewLaunchError creates a new LaunchError for the given shell.
func NewLaunchError(shell string, cause error) *LaunchError {
	return &LaunchError{
		baseError: baseError{
			message:  ErrLaunchFailed.Error(),
			cause:    cause,
			severity: SeverityCritical,
			fatal:    true,
		},
		Shell: shell,
	}
}

// WithCommand adds the command string to the error context.
func (e *LaunchError) WithCommand(command string) *LaunchError {
	e.Command = command
	return e
}

// Error returns the formatted error message.
func (e *LaunchError) Error() string {
	var parts []string
	if e.Shell != "" {
		parts = append(parts, fmt.Sprintf("shell=%s", e.Shell))
	}
	if e.Command != "" {
		parts = append(parts, fmt.Sprintf("command=%s", e.Command))
	}

	prefix := "launch error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("launch error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *LaunchError) Is(target error) bool {
	if _, ok := target.(*LaunchError); ok {
		return true
	}
	if target == ErrLaunchFailed {
		return true
	}
	return e.baseError.Is(target)
}

// EncodingError reports bytes that are not valid UTF-8 text. The content it
// refers to is shown as empty and the loop continues.
type EncodingError struct {
	baseError
	// Source names the data that failed: "output" or "highlight".
	Source string
	// Offset is the index of the first invalid byte, or -1 if unknown.
	Offset int
}

// NewEncodingError creates a new EncodingError.
func NewEncodingError(source string, offset int) *EncodingError {
	return &EncodingError{
		baseError: baseError{
			message:  ErrInvalidEncoding.Error(),
			severity: SeverityWarning,
			fatal:    false,
		},
		Source: source,
		Offset: offset,
	}
}

// WithCause adds a cause to the error.
func (e *EncodingError) WithCause(cause error) *EncodingError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *EncodingError) Error() string {
	var parts []string
	if e.Source != "" {
		parts = append(parts, fmt.Sprintf("source=%s", e.Source))
	}
	if e.Offset >= 0 {
		parts = append(parts, fmt.Sprintf("offset=%d", e.Offset))
	}

	prefix := "encoding error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("encoding error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *EncodingError) Is(target error) bool {
	if _, ok := target.(*EncodingError); ok {
		return true
	}
	if target == ErrInvalidEncoding {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("command is required")
//	err = err.WithField("command").WithValue("")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
			fatal:    false,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsFatal returns true if the error must terminate the refresh loop.
// Only launch failures are fatal; errors that do not implement WatchError
// are treated as fatal since nothing is known about them.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var watchErr WatchError
	if As(err, &watchErr) {
		return watchErr.IsFatal()
	}

	return true
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement WatchError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var watchErr WatchError
	if As(err, &watchErr) {
		return watchErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike a bare message, this preserves the WatchError chain.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to load config")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

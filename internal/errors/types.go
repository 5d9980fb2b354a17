// Package errors defines the structured error type shared by the devw
// pipeline. Errors are categorised so callers can decide whether a failure
// aborts a run (config), is reported and skipped (validation), or is isolated
// to a single bridge (bridge, io).
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeBridge     ErrorType = "bridge"
	ErrorTypeIO         ErrorType = "io"
)

// Common error codes.
const (
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeConfigNotFound    = "ERR_CONFIG_NOT_FOUND"
	ErrCodeToolNotConfigured = "ERR_TOOL_NOT_CONFIGURED"
	ErrCodeRuleSyntax        = "ERR_RULE_SYNTAX"
	ErrCodeInvalidScope      = "ERR_INVALID_SCOPE"
	ErrCodeInvalidRecord     = "ERR_INVALID_RECORD"
	ErrCodeBridgeFailed      = "ERR_BRIDGE_FAILED"
	ErrCodeWriteFailed       = "ERR_WRITE_FAILED"
	ErrCodeReadFailed        = "ERR_READ_FAILED"
)

// DwfError is a structured error type with context.
type DwfError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Path    string
	Tool    string
}

// Error implements the error interface.
func (e *DwfError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Tool != "" {
		parts = append(parts, "tool:"+e.Tool)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *DwfError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *DwfError) Is(target error) bool {
	var t *DwfError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithPath adds file location information.
func (e *DwfError) WithPath(path string) *DwfError {
	e.Path = path

	return e
}

// WithTool adds the bridge id the error is attributed to.
func (e *DwfError) WithTool(tool string) *DwfError {
	e.Tool = tool

	return e
}

// NewConfigError creates a configuration error. Config errors abort a run.
func NewConfigError(code, message string, cause error) *DwfError {
	return &DwfError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a validation warning for a single rule file or record.
func NewValidationError(code, message string) *DwfError {
	return &DwfError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewBridgeError creates an error attributed to one bridge.
func NewBridgeError(tool, message string, cause error) *DwfError {
	return &DwfError{
		Type:    ErrorTypeBridge,
		Code:    ErrCodeBridgeFailed,
		Message: message,
		Cause:   cause,
		Tool:    tool,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *DwfError {
	return &DwfError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsConfigError checks if an error is a fatal configuration error.
func IsConfigError(err error) bool {
	var de *DwfError
	if errors.As(err, &de) {
		return de.Type == ErrorTypeConfig
	}

	return false
}

// IsBridgeError checks if an error is attributed to a bridge.
func IsBridgeError(err error) bool {
	var de *DwfError
	if errors.As(err, &de) {
		return de.Type == ErrorTypeBridge
	}

	return false
}

// ErrToolNotConfigured reports a --tool value missing from the tools list.
func ErrToolNotConfigured(tool string, configured []string) *DwfError {
	list := strings.Join(configured, ", ")
	if list == "" {
		list = "(none)"
	}

	return NewConfigError(
		ErrCodeToolNotConfigured,
		fmt.Sprintf("tool %q is not configured in .dwf/config.yml (configured: %s)", tool, list),
		nil,
	).WithTool(tool)
}

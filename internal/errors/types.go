// Package errors defines the structured error taxonomy for the weft engine.
//
// Errors are classified by where they arise in the pipeline: configuration
// and template-load validation, markup parsing, expression evaluation,
// sanitization rejections, and event-handler resolution. Expression,
// sanitization and handler errors are recoverable by policy: a single
// directive's failure is isolated at the binding and must never abort
// processing of sibling directives or sibling nodes.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// As re-exports the standard errors.As so callers do not need to import
// both packages.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeMarkup       ErrorType = "markup"
	ErrorTypeExpression   ErrorType = "expression"
	ErrorTypeSanitization ErrorType = "sanitization"
	ErrorTypeHandler      ErrorType = "handler"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeInternal     ErrorType = "internal"
)

// EngineError is a structured error type with rendering context.
type EngineError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Tag         string // element tag the error was raised on, if any
	Expression  string // directive expression, if any
	Path        string // template path, if any
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	if e.Tag != "" {
		parts = append(parts, "<"+e.Tag+">")
	}

	if e.Expression != "" {
		parts = append(parts, fmt.Sprintf("%q", e.Expression))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *EngineError) Is(target error) bool {
	var t *EngineError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *EngineError) WithContext(key string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ConfigError creates a configuration/validation error. These fail the
// operation that raised them (template load, engine construction).
func ConfigError(code, message string) *EngineError {
	return &EngineError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// MarkupError creates a markup parse error. The operation is aborted and
// nothing is cached.
func MarkupError(path, message string, cause error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeMarkup,
		Code:    "PARSE_FAILED",
		Message: message,
		Path:    path,
		Cause:   cause,
	}
}

// ExpressionError creates a recoverable error for a failed directive
// expression. The binding falls back to an empty-safe render.
func ExpressionError(expression string, cause error) *EngineError {
	return &EngineError{
		Type:        ErrorTypeExpression,
		Code:        "EVAL_FAILED",
		Message:     "expression evaluation failed",
		Expression:  expression,
		Cause:       cause,
		Recoverable: true,
	}
}

// SanitizationError creates a recoverable error for a rejected tag,
// attribute, style declaration or URL. Rejections are dropped silently from
// the output; the error exists for logging only.
func SanitizationError(tag, message string) *EngineError {
	return &EngineError{
		Type:        ErrorTypeSanitization,
		Code:        "REJECTED",
		Message:     message,
		Tag:         tag,
		Recoverable: true,
	}
}

// HandlerError creates a recoverable error for an event directive that
// names an unresolvable method. The binding is skipped; the pass continues.
func HandlerError(name string, message string) *EngineError {
	return &EngineError{
		Type:        ErrorTypeHandler,
		Code:        "HANDLER_NOT_FOUND",
		Message:     message,
		Expression:  name,
		Recoverable: true,
	}
}

// NetworkError creates an error for a failed template fetch.
func NetworkError(path string, cause error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeNetwork,
		Code:    "FETCH_FAILED",
		Message: "template fetch failed",
		Path:    path,
		Cause:   cause,
	}
}

// InternalError creates an error for engine invariant violations.
func InternalError(message string, cause error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeInternal,
		Code:    "INTERNAL",
		Message: message,
		Cause:   cause,
	}
}

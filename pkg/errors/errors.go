// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed error handling with rich context for aide.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies aide errors for routing decisions and monitoring.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeClassificationAmbiguous indicates low classifier confidence with
	// no fallback match. Reported inside the unknown intent, never raised.
	CodeClassificationAmbiguous ErrorCode = "CLASSIFICATION_AMBIGUOUS"

	// CodeDuplicateAgent indicates an agent id was registered twice.
	CodeDuplicateAgent ErrorCode = "DUPLICATE_AGENT"

	// CodeNoCapableAgent indicates no registered agent accepts a task type.
	CodeNoCapableAgent ErrorCode = "NO_CAPABLE_AGENT"

	// CodeAgentExecution wraps whatever an agent raised during execution.
	CodeAgentExecution ErrorCode = "AGENT_EXECUTION"

	// CodeRetryExhausted indicates the retry ceiling was reached.
	CodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"

	// CodeTimeout indicates an operation exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCancelled indicates the task was cancelled by the caller.
	CodeCancelled ErrorCode = "CANCELLED"

	// CodeMemoryError indicates a semantic memory store failure.
	CodeMemoryError ErrorCode = "MEMORY_ERROR"
)

// AideError is a typed error with context for observability. It implements
// the error interface and can be unwrapped with errors.As.
type AideError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]any
	Recoverable bool

	// recoverableSet records that WithRecoverable was called, so callers
	// can tell an explicit mark from the zero value.
	recoverableSet bool
}

// Error implements the error interface.
func (e *AideError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *AideError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *AideError) MarshalJSON() ([]byte, error) {
	out := struct {
		Code        string         `json:"code"`
		Message     string         `json:"message"`
		Cause       string         `json:"cause,omitempty"`
		Context     map[string]any `json:"context,omitempty"`
		Recoverable bool           `json:"recoverable"`
	}{
		Code:        string(e.Code),
		Message:     e.Message,
		Context:     e.Context,
		Recoverable: e.Recoverable,
	}
	if e.Err != nil {
		out.Cause = e.Err.Error()
	}
	return json.Marshal(out)
}

// New creates a new AideError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *AideError {
	return &AideError{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]any),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *AideError) WithContext(key string, value any) *AideError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be retried.
// Returns the error for method chaining.
func (e *AideError) WithRecoverable(recoverable bool) *AideError {
	e.Recoverable = recoverable
	e.recoverableSet = true
	return e
}

// RecoverableOr returns the recoverability of the error, falling back to
// the given default when the error was never explicitly marked either way.
func (e *AideError) RecoverableOr(fallback bool) bool {
	if e.recoverableSet {
		return e.Recoverable
	}
	return fallback
}

// AsAideError attempts to convert an error to an AideError, wrapping
// unknown errors as internal.
func AsAideError(err error) *AideError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AideError); ok {
		return ae
	}
	return New(CodeInternal, "wrapped error", err)
}

// Is reports whether err is an AideError carrying the given code.
func Is(err error, code ErrorCode) bool {
	ae, ok := err.(*AideError)
	return ok && ae.Code == code
}

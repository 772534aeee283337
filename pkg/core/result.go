// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"time"

	"github.com/aidekit/aide/pkg/errors"
)

// Result carries the outcome of an agent execution back to the caller.
// Callers branch on Success/Err rather than catching panics or errors
// across the Submit boundary.
type Result struct {
	TaskID   string
	Success  bool
	Data     map[string]any
	Err      *errors.AideError
	Duration time.Duration
}

// NewResult creates a successful result for the given task.
func NewResult(taskID string) *Result {
	return &Result{
		TaskID:  taskID,
		Success: true,
		Data:    make(map[string]any),
	}
}

// FailedResult creates a failed result carrying the given error.
func FailedResult(taskID string, err *errors.AideError) *Result {
	return &Result{
		TaskID:  taskID,
		Success: false,
		Data:    make(map[string]any),
		Err:     err,
	}
}

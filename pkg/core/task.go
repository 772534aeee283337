// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus describes the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusSucceeded, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// Priority orders tasks for dispatch. Higher values are drained first.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// String returns the lowercase priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return "unknown"
}

// Task is the unit of work routed to agents. Status and Attempts are
// mutated only by the orchestrator; everything else is set at creation.
type Task struct {
	ID         string
	Type       string
	Priority   Priority
	Payload    map[string]any
	Intent     *Intent
	Status     TaskStatus
	Attempts   int
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewTask creates a pending task of the given type with a generated ID.
func NewTask(taskType string, priority Priority) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Priority:  priority,
		Payload:   make(map[string]any),
		Status:    TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Start marks the task running and stamps StartedAt.
func (t *Task) Start() {
	t.Status = TaskStatusRunning
	t.StartedAt = time.Now().UTC()
}

// Succeed marks the task succeeded and stamps FinishedAt.
func (t *Task) Succeed() {
	t.Status = TaskStatusSucceeded
	t.FinishedAt = time.Now().UTC()
}

// Fail marks the task failed and stamps FinishedAt.
func (t *Task) Fail() {
	t.Status = TaskStatusFailed
	t.FinishedAt = time.Now().UTC()
}

// Cancel marks the task cancelled and stamps FinishedAt.
func (t *Task) Cancel() {
	t.Status = TaskStatusCancelled
	t.FinishedAt = time.Now().UTC()
}

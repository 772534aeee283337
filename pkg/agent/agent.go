// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent provides a functional-options implementation of the
// core.Agent interface for domain executors.
package agent

import (
	"context"
	"errors"

	"github.com/aidekit/aide/pkg/core"
)

// Handler executes the agent's core behavior for a task.
type Handler func(ctx context.Context, task *core.Task) (*core.Result, error)

// Agent is a simple capability-declaring executor.
type Agent struct {
	id           string
	capabilities []core.Capability
	handler      Handler
}

var ErrMissingHandler = errors.New("agent handler is required")

// Option configures an Agent instance.
type Option func(*Agent) error

// New creates a new Agent with a required id and options.
func New(id string, opts ...Option) (*Agent, error) {
	a := &Agent{id: id}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.id == "" {
		return nil, errors.New("agent id is required")
	}
	if a.handler == nil {
		return nil, ErrMissingHandler
	}
	return a, nil
}

// WithCapabilities declares the agent's capability set. The set is
// immutable after registration.
func WithCapabilities(caps ...core.Capability) Option {
	return func(a *Agent) error {
		a.capabilities = append([]core.Capability(nil), caps...)
		return nil
	}
}

// WithHandler sets the agent handler.
func WithHandler(handler Handler) Option {
	return func(a *Agent) error {
		a.handler = handler
		return nil
	}
}

// ID returns the agent identifier.
func (a *Agent) ID() string { return a.id }

// Capabilities returns the declared capability set.
func (a *Agent) Capabilities() []core.Capability {
	return append([]core.Capability(nil), a.capabilities...)
}

// Execute runs the agent handler for the task.
func (a *Agent) Execute(ctx context.Context, task *core.Task) (*core.Result, error) {
	if a.handler == nil {
		return nil, ErrMissingHandler
	}
	return a.handler(ctx, task)
}

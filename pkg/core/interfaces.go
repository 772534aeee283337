// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package core

import "context"

// Agent is an opaque task executor. The core never inspects an agent's
// internal state; it routes on the declared capability set and invokes
// Execute. Implementations must observe ctx cancellation at their next
// safe checkpoint.
type Agent interface {
	ID() string
	Capabilities() []Capability
	Execute(ctx context.Context, task *Task) (*Result, error)
}

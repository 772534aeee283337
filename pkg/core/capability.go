// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package core

// Capability declares an agent's ability to accept a class of tasks.
// It is purely descriptive: the core routes on it but never executes it.
type Capability struct {
	Name    string
	Accepts []string
}

// AcceptsType reports whether the capability accepts the given task type.
func (c Capability) AcceptsType(taskType string) bool {
	for _, t := range c.Accepts {
		if t == taskType {
			return true
		}
	}
	return false
}

// NewCapability creates a capability accepting the given task types.
func NewCapability(name string, accepts ...string) Capability {
	return Capability{Name: name, Accepts: accepts}
}

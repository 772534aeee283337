// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflow defines declarative multi-step plans chaining tasks
// across agents with data dependencies.
package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aidekit/aide/pkg/core"
)

// Step is a task template inside a workflow: the capability required to
// run it and, optionally, data dependencies on prior steps' results.
type Step struct {
	ID         string         `yaml:"id" json:"id"`
	Capability string         `yaml:"capability" json:"capability"`
	Type       string         `yaml:"type" json:"type"`
	Priority   string         `yaml:"priority,omitempty" json:"priority,omitempty"`
	Payload    map[string]any `yaml:"payload,omitempty" json:"payload,omitempty"`
	DependsOn  []string       `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
}

// Workflow is an ordered or DAG-shaped sequence of steps. A workflow
// instance owns the tasks it spawns; results are always reported in step
// declaration order.
type Workflow struct {
	ID    string `yaml:"id,omitempty" json:"id,omitempty"`
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// New creates a named workflow with a generated id.
func New(name string, steps ...Step) *Workflow {
	return &Workflow{ID: uuid.NewString(), Name: name, Steps: steps}
}

// Validate ensures the workflow is well-formed for execution: non-empty,
// unique step ids, dependencies that exist, and no cycles.
func (w *Workflow) Validate() error {
	if w == nil {
		return fmt.Errorf("workflow is nil")
	}
	if len(w.Steps) == 0 {
		return fmt.Errorf("workflow has no steps")
	}

	index := make(map[string]int, len(w.Steps))
	for i, step := range w.Steps {
		if step.ID == "" {
			return fmt.Errorf("step %d missing id", i)
		}
		if step.Type == "" {
			return fmt.Errorf("step %q missing task type", step.ID)
		}
		if _, dup := index[step.ID]; dup {
			return fmt.Errorf("duplicate step id %q", step.ID)
		}
		index[step.ID] = i
	}

	for _, step := range w.Steps {
		for _, dep := range step.DependsOn {
			if _, ok := index[dep]; !ok {
				return fmt.Errorf("step %q depends on unknown step %q", step.ID, dep)
			}
			if dep == step.ID {
				return fmt.Errorf("step %q depends on itself", step.ID)
			}
		}
	}

	if cyclic(w.Steps) {
		return fmt.Errorf("workflow has a dependency cycle")
	}
	return nil
}

// StepPriority parses a step's priority name, defaulting to normal.
func (s Step) StepPriority() core.Priority {
	switch s.Priority {
	case "low":
		return core.PriorityLow
	case "high":
		return core.PriorityHigh
	case "critical":
		return core.PriorityCritical
	}
	return core.PriorityNormal
}

// cyclic runs Kahn's algorithm; leftover nodes mean a cycle.
func cyclic(steps []Step) bool {
	inDegree := make(map[string]int, len(steps))
	dependents := make(map[string][]string, len(steps))
	for _, step := range steps {
		inDegree[step.ID] += 0
		for _, dep := range step.DependsOn {
			inDegree[step.ID]++
			dependents[dep] = append(dependents[dep], step.ID)
		}
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	visited := 0
	for len(ready) > 0 {
		id := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		visited++
		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}
	return visited != len(steps)
}

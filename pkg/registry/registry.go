// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry holds the set of available agents and their declared
// capabilities. It performs no execution and holds no task state.
package registry

import (
	"sort"
	"sync"

	"github.com/aidekit/aide/pkg/core"
	"github.com/aidekit/aide/pkg/errors"
)

type entry struct {
	agent    core.Agent
	priority int
	order    int
}

// Registry is a read-mostly index of agents, keyed by id. Registration
// normally happens once at startup; lookups take a read lock only.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	nextOrd int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds an agent with dispatch priority 0. It fails with
// CodeDuplicateAgent if the id is already present: implicit overwrites
// would hide configuration bugs, so callers must Replace explicitly.
func (r *Registry) Register(agent core.Agent) error {
	return r.RegisterWithPriority(agent, 0)
}

// RegisterWithPriority adds an agent with a static dispatch priority.
// Higher priority agents are preferred by Find; ties keep registration
// order so routing stays deterministic.
func (r *Registry) RegisterWithPriority(agent core.Agent, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[agent.ID()]; exists {
		return errors.New(errors.CodeDuplicateAgent, "agent already registered", nil).
			WithContext("agent_id", agent.ID())
	}
	r.entries[agent.ID()] = entry{agent: agent, priority: priority, order: r.nextOrd}
	r.nextOrd++
	return nil
}

// Replace swaps an agent registration wholesale. Capability sets are
// immutable after registration, so replacement never merges with the
// previous declaration.
func (r *Registry) Replace(agent core.Agent, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.entries[agent.ID()]
	order := r.nextOrd
	if existed {
		order = prev.order
	} else {
		r.nextOrd++
	}
	r.entries[agent.ID()] = entry{agent: agent, priority: priority, order: order}
}

// Find returns the agents able to accept the task type under the named
// capability, ordered by priority descending, then registration order.
// An empty capability name matches any capability.
func (r *Registry) Find(capabilityName, taskType string) []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []entry
	for _, e := range r.entries {
		if accepts(e.agent, capabilityName, taskType) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].priority != matched[j].priority {
			return matched[i].priority > matched[j].priority
		}
		return matched[i].order < matched[j].order
	})

	agents := make([]core.Agent, len(matched))
	for i, e := range matched {
		agents[i] = e.agent
	}
	return agents
}

// All returns every registered agent in registration order.
func (r *Registry) All() []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	agents := make([]core.Agent, len(entries))
	for i, e := range entries {
		agents[i] = e.agent
	}
	return agents
}

func accepts(agent core.Agent, capabilityName, taskType string) bool {
	for _, cap := range agent.Capabilities() {
		if capabilityName != "" && cap.Name != capabilityName {
			continue
		}
		if cap.AcceptsType(taskType) {
			return true
		}
	}
	return false
}

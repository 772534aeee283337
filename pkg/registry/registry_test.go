// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidekit/aide/pkg/agent"
	"github.com/aidekit/aide/pkg/core"
	"github.com/aidekit/aide/pkg/errors"
)

func newAgent(t *testing.T, id string, caps ...core.Capability) core.Agent {
	t.Helper()
	a, err := agent.New(id,
		agent.WithCapabilities(caps...),
		agent.WithHandler(func(_ context.Context, task *core.Task) (*core.Result, error) {
			return core.NewResult(task.ID), nil
		}),
	)
	require.NoError(t, err)
	return a
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New()
	scanner := newAgent(t, "scanner", core.NewCapability("network", "port_scan"))

	require.NoError(t, r.Register(scanner))
	err := r.Register(scanner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeDuplicateAgent))
}

func TestFindFiltersOnCapabilityAndType(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newAgent(t, "scanner", core.NewCapability("network", "port_scan"))))
	require.NoError(t, r.Register(newAgent(t, "deployer", core.NewCapability("devops", "deploy"))))

	found := r.Find("network", "port_scan")
	require.Len(t, found, 1)
	assert.Equal(t, "scanner", found[0].ID())

	assert.Empty(t, r.Find("network", "deploy"))
	assert.Empty(t, r.Find("", "unknown_type"))

	// Empty capability name matches any capability.
	anyCap := r.Find("", "deploy")
	require.Len(t, anyCap, 1)
	assert.Equal(t, "deployer", anyCap[0].ID())
}

func TestFindOrdersByPriorityThenRegistration(t *testing.T) {
	r := New()
	cap := core.NewCapability("network", "port_scan")
	require.NoError(t, r.RegisterWithPriority(newAgent(t, "backup", cap), 0))
	require.NoError(t, r.RegisterWithPriority(newAgent(t, "primary", cap), 10))
	require.NoError(t, r.RegisterWithPriority(newAgent(t, "secondary", cap), 0))

	found := r.Find("network", "port_scan")
	require.Len(t, found, 3)
	assert.Equal(t, "primary", found[0].ID())
	// Equal priority keeps registration order.
	assert.Equal(t, "backup", found[1].ID())
	assert.Equal(t, "secondary", found[2].ID())
}

func TestReplaceSwapsWholesale(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newAgent(t, "scanner", core.NewCapability("network", "port_scan"))))

	// Replacement declares a different capability set; nothing merges.
	r.Replace(newAgent(t, "scanner", core.NewCapability("network", "ping_sweep")), 0)

	assert.Empty(t, r.Find("network", "port_scan"))
	require.Len(t, r.Find("network", "ping_sweep"), 1)
}

func TestAllKeepsRegistrationOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(newAgent(t, "a", core.NewCapability("x", "t1"))))
	require.NoError(t, r.Register(newAgent(t, "b", core.NewCapability("x", "t2"))))
	require.NoError(t, r.Register(newAgent(t, "c", core.NewCapability("x", "t3"))))

	ids := make([]string, 0, 3)
	for _, a := range r.All() {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"testing"

	"github.com/aidekit/aide/pkg/core"
)

func TestNewRequiresHandler(t *testing.T) {
	if _, err := New("a1"); err != ErrMissingHandler {
		t.Fatalf("expected ErrMissingHandler, got %v", err)
	}
}

func TestNewRequiresID(t *testing.T) {
	_, err := New("", WithHandler(func(context.Context, *core.Task) (*core.Result, error) {
		return nil, nil
	}))
	if err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestExecuteRunsHandler(t *testing.T) {
	a, err := New("scanner",
		WithCapabilities(core.NewCapability("network", "port_scan")),
		WithHandler(func(_ context.Context, task *core.Task) (*core.Result, error) {
			res := core.NewResult(task.ID)
			res.Data["open_ports"] = []int{22, 80}
			return res, nil
		}),
	)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	task := core.NewTask("port_scan", core.PriorityNormal)
	res, err := a.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !res.Success || res.TaskID != task.ID {
		t.Fatalf("unexpected result: %+v", res)
	}

	caps := a.Capabilities()
	if len(caps) != 1 || caps[0].Name != "network" {
		t.Fatalf("unexpected capabilities: %+v", caps)
	}
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	a, _ := New("scanner",
		WithCapabilities(core.NewCapability("network", "port_scan")),
		WithHandler(func(_ context.Context, task *core.Task) (*core.Result, error) {
			return core.NewResult(task.ID), nil
		}),
	)
	caps := a.Capabilities()
	caps[0].Name = "mutated"
	if a.Capabilities()[0].Name != "network" {
		t.Fatalf("capability set must be immutable from outside")
	}
}

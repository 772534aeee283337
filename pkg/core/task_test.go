// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package core

import "testing"

func TestTaskLifecycle(t *testing.T) {
	task := NewTask("port_scan", PriorityHigh)
	if task.ID == "" {
		t.Fatalf("expected generated id")
	}
	if task.Status != TaskStatusPending {
		t.Fatalf("expected pending status")
	}
	if task.Status.Terminal() {
		t.Fatalf("pending must not be terminal")
	}

	task.Start()
	if task.Status != TaskStatusRunning {
		t.Fatalf("expected running status")
	}
	if task.StartedAt.IsZero() {
		t.Fatalf("expected StartedAt to be stamped")
	}

	task.Succeed()
	if task.Status != TaskStatusSucceeded {
		t.Fatalf("expected succeeded status")
	}
	if !task.Status.Terminal() {
		t.Fatalf("succeeded must be terminal")
	}
	if task.FinishedAt.IsZero() {
		t.Fatalf("expected FinishedAt to be stamped")
	}
}

func TestTaskTerminalStatuses(t *testing.T) {
	cases := map[TaskStatus]bool{
		TaskStatusPending:   false,
		TaskStatusRunning:   false,
		TaskStatusSucceeded: true,
		TaskStatusFailed:    true,
		TaskStatusCancelled: true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Fatalf("Terminal(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestPriorityString(t *testing.T) {
	if PriorityCritical.String() != "critical" {
		t.Fatalf("unexpected name for critical priority")
	}
	if Priority(99).String() != "unknown" {
		t.Fatalf("unexpected name for out-of-range priority")
	}
}

func TestCapabilityAcceptsType(t *testing.T) {
	cap := NewCapability("network", "port_scan", "ping_sweep")
	if !cap.AcceptsType("port_scan") {
		t.Fatalf("expected port_scan to be accepted")
	}
	if cap.AcceptsType("deploy") {
		t.Fatalf("deploy must not be accepted")
	}
}

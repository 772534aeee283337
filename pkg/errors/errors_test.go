// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	stderrors "errors"
	"encoding/json"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeNoCapableAgent, "no agent accepts type", nil)
	if !strings.Contains(err.Error(), "NO_CAPABLE_AGENT") {
		t.Fatalf("expected code in message, got %q", err.Error())
	}

	wrapped := New(CodeAgentExecution, "scanner failed", stderrors.New("boom"))
	if !strings.Contains(wrapped.Error(), "boom") {
		t.Fatalf("expected cause in message, got %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := New(CodeMemoryError, "upsert failed", cause)
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the cause")
	}
}

func TestWithContextChaining(t *testing.T) {
	err := New(CodeRetryExhausted, "gave up", nil).
		WithContext("attempts", 3).
		WithRecoverable(false)
	if err.Context["attempts"] != 3 {
		t.Fatalf("expected context value to be set")
	}
	if err.Recoverable {
		t.Fatalf("expected recoverable to be false")
	}
}

func TestAsAideError(t *testing.T) {
	if AsAideError(nil) != nil {
		t.Fatalf("nil must map to nil")
	}

	plain := stderrors.New("plain")
	ae := AsAideError(plain)
	if ae.Code != CodeInternal {
		t.Fatalf("plain errors wrap as internal, got %s", ae.Code)
	}

	typed := New(CodeTimeout, "deadline", nil)
	if AsAideError(typed) != typed {
		t.Fatalf("typed errors must pass through unchanged")
	}
}

func TestIs(t *testing.T) {
	err := New(CodeDuplicateAgent, "agent scanner already registered", nil)
	if !Is(err, CodeDuplicateAgent) {
		t.Fatalf("expected code match")
	}
	if Is(err, CodeTimeout) {
		t.Fatalf("unexpected code match")
	}
	if Is(stderrors.New("plain"), CodeTimeout) {
		t.Fatalf("plain error must not match any code")
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New(CodeCancelled, "cancelled by caller", nil).WithContext("task_id", "t-1")
	raw, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("marshal failed: %v", marshalErr)
	}
	var decoded map[string]any
	if unmarshalErr := json.Unmarshal(raw, &decoded); unmarshalErr != nil {
		t.Fatalf("unmarshal failed: %v", unmarshalErr)
	}
	if decoded["code"] != "CANCELLED" {
		t.Fatalf("expected code field, got %v", decoded["code"])
	}
}

func TestRecoverableOr(t *testing.T) {
	unmarked := New(CodeAgentExecution, "boom", nil)
	if !unmarked.RecoverableOr(true) {
		t.Fatalf("unmarked error must take the fallback")
	}
	if unmarked.RecoverableOr(false) {
		t.Fatalf("unmarked error must take the fallback")
	}

	if New(CodeAgentExecution, "boom", nil).WithRecoverable(false).RecoverableOr(true) {
		t.Fatalf("explicit false must win over the fallback")
	}
	if !New(CodeAgentExecution, "boom", nil).WithRecoverable(true).RecoverableOr(false) {
		t.Fatalf("explicit true must win over the fallback")
	}
}

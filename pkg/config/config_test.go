// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Orchestrator.Workers != 4 {
		t.Errorf("expected default workers 4, got %d", cfg.Orchestrator.Workers)
	}
	if cfg.Orchestrator.RetryCeiling != 3 {
		t.Errorf("expected default retry ceiling 3, got %d", cfg.Orchestrator.RetryCeiling)
	}
	if cfg.Orchestrator.DefaultTimeout != 60*time.Second {
		t.Errorf("expected default timeout 60s, got %v", cfg.Orchestrator.DefaultTimeout)
	}
	if cfg.Classifier.Threshold != 0.7 {
		t.Errorf("expected default threshold 0.7, got %f", cfg.Classifier.Threshold)
	}
	if cfg.Memory.Provider != "inmemory" {
		t.Errorf("expected default memory provider inmemory, got %s", cfg.Memory.Provider)
	}
	if cfg.Telemetry.Exporter != "none" {
		t.Errorf("expected default exporter none, got %s", cfg.Telemetry.Exporter)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	raw := `
log:
  level: "debug"
orchestrator:
  workers: 8
  retry_ceiling: 5
  initial_backoff: "250ms"
memory:
  provider: "qdrant"
  qdrant_addr: "qdrant:6334"
  collection: "assistant"
history:
  enabled: true
  path: "/tmp/history.db"
`
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Orchestrator.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Orchestrator.Workers)
	}
	if cfg.Orchestrator.InitialBackoff != 250*time.Millisecond {
		t.Errorf("expected initial backoff 250ms, got %v", cfg.Orchestrator.InitialBackoff)
	}
	if cfg.Memory.Provider != "qdrant" {
		t.Errorf("expected memory provider qdrant, got %s", cfg.Memory.Provider)
	}
	if !cfg.History.Enabled {
		t.Error("expected history enabled")
	}
	// Untouched keys keep their defaults.
	if cfg.Classifier.Threshold != 0.7 {
		t.Errorf("expected threshold default to survive, got %f", cfg.Classifier.Threshold)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	raw := `
orchestrator:
  workers: 8
`
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("AIDE_ORCHESTRATOR__WORKERS", "16")
	t.Setenv("AIDE_ORCHESTRATOR__RETRY_CEILING", "7")
	t.Setenv("AIDE_MEMORY__EMBEDDER_MODEL", "all-minilm")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Orchestrator.Workers != 16 {
		t.Errorf("expected env to override file workers, got %d", cfg.Orchestrator.Workers)
	}
	if cfg.Orchestrator.RetryCeiling != 7 {
		t.Errorf("expected env retry ceiling 7, got %d", cfg.Orchestrator.RetryCeiling)
	}
	if cfg.Memory.EmbedderModel != "all-minilm" {
		t.Errorf("expected env embedder model all-minilm, got %s", cfg.Memory.EmbedderModel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

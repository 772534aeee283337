// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aidekit/aide/pkg/config"
	"github.com/aidekit/aide/pkg/core"
	"github.com/aidekit/aide/pkg/history"
	"github.com/aidekit/aide/pkg/intent"
	"github.com/aidekit/aide/pkg/memory"
	"github.com/aidekit/aide/pkg/memory/ollama"
	"github.com/aidekit/aide/pkg/memory/qdrant"
	"github.com/aidekit/aide/pkg/orchestrator"
	"github.com/aidekit/aide/pkg/registry"
	"github.com/aidekit/aide/pkg/telemetry"
)

// app wires configuration, classification, memory, and the orchestrator
// into one running assistant core.
type app struct {
	cfg        *config.Config
	classifier *intent.Classifier
	mem        *memory.Store
	orch       *orchestrator.Orchestrator
	hist       *history.Store
	shutdown   telemetry.ShutdownFunc
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	slog.SetDefault(telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	shutdown, err := telemetry.InitWithConfig("aide", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: true,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	mem, err := buildMemory(ctx, cfg.Memory)
	if err != nil {
		return nil, err
	}

	classifier := intent.NewClassifier(intent.Config{Threshold: cfg.Classifier.Threshold})

	reg := registry.New()
	if err := registerBuiltinAgents(reg, mem); err != nil {
		return nil, fmt.Errorf("register agents: %w", err)
	}

	opts := []orchestrator.Option{orchestrator.WithMemory(mem)}
	if metrics, err := telemetry.NewTaskMetrics(); err == nil {
		opts = append(opts, orchestrator.WithMetrics(metrics))
	} else {
		slog.Warn("task metrics disabled", slog.String("error", err.Error()))
	}

	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		opts = append(opts, orchestrator.WithHistory(hist))
	}

	orch := orchestrator.New(reg, orchestrator.Config{
		Workers:        cfg.Orchestrator.Workers,
		RetryCeiling:   cfg.Orchestrator.RetryCeiling,
		InitialBackoff: cfg.Orchestrator.InitialBackoff,
		MaxBackoff:     cfg.Orchestrator.MaxBackoff,
		DefaultTimeout: cfg.Orchestrator.DefaultTimeout,
	}, opts...)

	return &app{
		cfg:        cfg,
		classifier: classifier,
		mem:        mem,
		orch:       orch,
		hist:       hist,
		shutdown:   shutdown,
	}, nil
}

func buildMemory(ctx context.Context, cfg config.MemoryConfig) (*memory.Store, error) {
	var embedder memory.Embedder
	dimension := cfg.Dimension
	switch cfg.EmbedderProvider {
	case "ollama":
		embedder = ollama.NewEmbedder(cfg.EmbedderBaseURL, cfg.EmbedderModel)
	default:
		hash := memory.NewHashEmbedder(cfg.Dimension)
		embedder = hash
		dimension = hash.Dimension()
	}

	switch cfg.Provider {
	case "qdrant":
		backend, err := qdrant.New(cfg.QdrantAddr, cfg.Collection)
		if err != nil {
			return nil, fmt.Errorf("connect qdrant: %w", err)
		}
		if err := backend.EnsureCollection(ctx, uint64(dimension)); err != nil {
			return nil, fmt.Errorf("ensure collection: %w", err)
		}
		return memory.NewStore(backend, embedder), nil
	default:
		return memory.NewStore(memory.NewInMemoryStore(), embedder), nil
	}
}

// handle runs one instruction through classify, task building, and
// dispatch. recent carries the last few user utterances for slot
// resolution.
func (a *app) handle(ctx context.Context, line string, recent []string) *core.Result {
	in := a.classifier.Classify(ctx, line, recent)

	task := core.NewTask(taskTypeFor(in.Label), priorityFor(in.Label))
	task.Intent = &in
	task.Payload["instruction"] = line
	for slot, value := range in.Slots {
		task.Payload[slot] = value
	}

	return a.orch.Submit(ctx, task)
}

func (a *app) close() {
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.orch.Drain(drainCtx); err != nil {
		slog.Warn("drain incomplete", slog.String("error", err.Error()))
	}
	if a.hist != nil {
		if a.cfg.History.Retention > 0 {
			if removed, err := a.hist.Prune(context.Background(), a.cfg.History.Retention); err == nil && removed > 0 {
				slog.Info("pruned history", slog.Int64("removed", removed))
			}
		}
		a.hist.Close()
	}
	if err := a.shutdown(context.Background()); err != nil {
		slog.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
	}
}

// taskTypeFor maps an intent label onto the task type agents accept.
// Labels with no builtin handler land on the chat agent so the user
// still gets a response instead of a routing failure.
func taskTypeFor(label string) string {
	switch label {
	case "system_check", "system_control", "port_scan",
		"list_files", "open_file",
		"set_reminder", "get_reminders",
		"search_web", "get_news", "get_weather":
		return label
	default:
		return "chat"
	}
}

func priorityFor(label string) core.Priority {
	switch label {
	case "port_scan", "system_control", "deploy":
		return core.PriorityHigh
	case "greeting", "farewell", "conversation":
		return core.PriorityLow
	default:
		return core.PriorityNormal
	}
}

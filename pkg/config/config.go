// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads runtime configuration from defaults, an optional
// YAML file, and AIDE_-prefixed environment variables, in that order of
// precedence (later wins).
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log          LogConfig          `koanf:"log"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator"`
	Classifier   ClassifierConfig   `koanf:"classifier"`
	Memory       MemoryConfig       `koanf:"memory"`
	History      HistoryConfig      `koanf:"history"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type OrchestratorConfig struct {
	Workers        int           `koanf:"workers"`
	RetryCeiling   int           `koanf:"retry_ceiling"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff"`
	DefaultTimeout time.Duration `koanf:"default_timeout"`
}

type ClassifierConfig struct {
	Threshold float64 `koanf:"threshold"`
}

type MemoryConfig struct {
	Provider         string `koanf:"provider"` // inmemory, qdrant
	QdrantAddr       string `koanf:"qdrant_addr"`
	Collection       string `koanf:"collection"`
	EmbedderProvider string `koanf:"embedder_provider"` // hash, ollama
	EmbedderBaseURL  string `koanf:"embedder_base_url"`
	EmbedderModel    string `koanf:"embedder_model"`
	Dimension        int    `koanf:"dimension"`
}

type HistoryConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Path      string        `koanf:"path"`
	Retention time.Duration `koanf:"retention"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
}

// Load reads configuration, layering the optional YAML file at path and
// then the environment over built-in defaults. Environment variables use
// the AIDE_ prefix with "__" separating nesting levels, so
// AIDE_ORCHESTRATOR__RETRY_CEILING maps to orchestrator.retry_ceiling.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("orchestrator.workers", 4)
	k.Set("orchestrator.retry_ceiling", 3)
	k.Set("orchestrator.initial_backoff", "100ms")
	k.Set("orchestrator.max_backoff", "5s")
	k.Set("orchestrator.default_timeout", "60s")

	k.Set("classifier.threshold", 0.7)

	k.Set("memory.provider", "inmemory")
	k.Set("memory.qdrant_addr", "localhost:6334")
	k.Set("memory.collection", "aide_memory")
	k.Set("memory.embedder_provider", "hash")
	k.Set("memory.embedder_base_url", "http://localhost:11434")
	k.Set("memory.embedder_model", "nomic-embed-text")
	k.Set("memory.dimension", 256)

	k.Set("history.enabled", false)
	k.Set("history.path", "aide_history.db")
	k.Set("history.retention", "720h")

	k.Set("telemetry.exporter", "none")
	k.Set("telemetry.otlp_endpoint", "localhost:4317")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("AIDE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "AIDE_")), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

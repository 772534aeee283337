// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Load reads a workflow definition from a YAML or JSON file and
// validates it.
func Load(path string) (*Workflow, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("workflow path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	default:
		return ParseYAML(data)
	}
}

// ParseYAML parses and validates a YAML workflow definition.
func ParseYAML(data []byte) (*Workflow, error) {
	var w Workflow
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("invalid workflow yaml: %w", err)
	}
	return finish(&w)
}

// ParseJSON parses and validates a JSON workflow definition.
func ParseJSON(data []byte) (*Workflow, error) {
	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("invalid workflow json: %w", err)
	}
	return finish(&w)
}

func finish(w *Workflow) (*Workflow, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

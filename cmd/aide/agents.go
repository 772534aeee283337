// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/aidekit/aide/pkg/agent"
	"github.com/aidekit/aide/pkg/core"
	"github.com/aidekit/aide/pkg/errors"
	"github.com/aidekit/aide/pkg/memory"
	"github.com/aidekit/aide/pkg/registry"
)

// registerBuiltinAgents installs the handlers the assistant ships with.
// Each covers one capability; external integrations can be registered on
// top with higher priority to shadow them.
func registerBuiltinAgents(reg *registry.Registry, mem *memory.Store) error {
	builders := []func(*memory.Store) (*agent.Agent, error){
		newChatAgent,
		newSystemAgent,
		newNetworkAgent,
		newFileAgent,
		newReminderAgent,
		newResearchAgent,
	}
	for _, build := range builders {
		a, err := build(mem)
		if err != nil {
			return err
		}
		if err := reg.Register(a); err != nil {
			return err
		}
	}
	return nil
}

func newChatAgent(mem *memory.Store) (*agent.Agent, error) {
	return agent.New("builtin-chat",
		agent.WithCapabilities(core.NewCapability("conversation", "chat")),
		agent.WithHandler(func(ctx context.Context, task *core.Task) (*core.Result, error) {
			res := core.NewResult(task.ID)
			instruction, _ := task.Payload["instruction"].(string)
			res.Data["reply"] = chatReply(ctx, mem, task, instruction)
			return res, nil
		}),
	)
}

func chatReply(ctx context.Context, mem *memory.Store, task *core.Task, instruction string) string {
	label := core.IntentUnknown
	if task.Intent != nil {
		label = task.Intent.Label
	}
	switch label {
	case "greeting":
		return "Hello. What can I do for you?"
	case "farewell":
		return "Goodbye."
	case "help":
		return "I can check the system, scan ports, manage files and reminders, look things up, and chat."
	}
	// For open conversation, surface related past exchanges if any.
	if mem != nil && instruction != "" {
		hits, err := mem.Search(ctx, instruction, 1, nil)
		if err == nil && len(hits) > 0 {
			return fmt.Sprintf("That reminds me of something earlier: %s", hits[0].Record.Text)
		}
	}
	return "Noted. Tell me more or ask for something specific."
}

func newSystemAgent(_ *memory.Store) (*agent.Agent, error) {
	return agent.New("builtin-system",
		agent.WithCapabilities(core.NewCapability("system", "system_check", "system_control")),
		agent.WithHandler(func(_ context.Context, task *core.Task) (*core.Result, error) {
			res := core.NewResult(task.ID)
			switch task.Type {
			case "system_check":
				var ms runtime.MemStats
				runtime.ReadMemStats(&ms)
				res.Data["os"] = runtime.GOOS
				res.Data["arch"] = runtime.GOARCH
				res.Data["cpus"] = runtime.NumCPU()
				res.Data["goroutines"] = runtime.NumGoroutine()
				res.Data["heap_alloc_bytes"] = ms.HeapAlloc
			case "system_control":
				// Destructive control actions need explicit operator
				// confirmation, so the builtin only reports what it would do.
				res.Data["acknowledged"] = task.Payload["instruction"]
				res.Data["applied"] = false
			}
			return res, nil
		}),
	)
}

var commonPorts = []int{21, 22, 25, 53, 80, 110, 143, 443, 3306, 5432, 6379, 8080, 8443}

func newNetworkAgent(_ *memory.Store) (*agent.Agent, error) {
	return agent.New("builtin-network",
		agent.WithCapabilities(core.NewCapability("network", "port_scan")),
		agent.WithHandler(func(ctx context.Context, task *core.Task) (*core.Result, error) {
			target, _ := task.Payload["target"].(string)
			if target == "" {
				target = "localhost"
			}
			dialer := net.Dialer{Timeout: 300 * time.Millisecond}
			var open []int
			for _, port := range commonPorts {
				if ctx.Err() != nil {
					return nil, errors.New(errors.CodeCancelled, "scan interrupted", ctx.Err())
				}
				conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", target, port))
				if err != nil {
					continue
				}
				conn.Close()
				open = append(open, port)
			}
			res := core.NewResult(task.ID)
			res.Data["target"] = target
			res.Data["scanned"] = len(commonPorts)
			res.Data["open_ports"] = open
			return res, nil
		}),
	)
}

func newFileAgent(_ *memory.Store) (*agent.Agent, error) {
	return agent.New("builtin-files",
		agent.WithCapabilities(core.NewCapability("files", "list_files", "open_file")),
		agent.WithHandler(func(_ context.Context, task *core.Task) (*core.Result, error) {
			res := core.NewResult(task.ID)
			switch task.Type {
			case "list_files":
				dir, _ := task.Payload["filename"].(string)
				if dir == "" {
					dir = "."
				}
				entries, err := os.ReadDir(dir)
				if err != nil {
					return nil, errors.New(errors.CodeInvalidInput, "cannot list directory", err).
						WithContext("dir", dir).
						WithRecoverable(false)
				}
				names := make([]string, 0, len(entries))
				for _, entry := range entries {
					names = append(names, entry.Name())
				}
				res.Data["dir"] = dir
				res.Data["files"] = names
			case "open_file":
				name, _ := task.Payload["filename"].(string)
				if name == "" {
					return nil, errors.New(errors.CodeInvalidInput, "no filename given", nil).
						WithRecoverable(false)
				}
				raw, err := os.ReadFile(name)
				if err != nil {
					return nil, errors.New(errors.CodeInvalidInput, "cannot read file", err).
						WithContext("filename", name).
						WithRecoverable(false)
				}
				res.Data["filename"] = name
				res.Data["content"] = string(raw)
			}
			return res, nil
		}),
	)
}

func newReminderAgent(mem *memory.Store) (*agent.Agent, error) {
	return agent.New("builtin-reminders",
		agent.WithCapabilities(core.NewCapability("reminders", "set_reminder", "get_reminders")),
		agent.WithHandler(func(ctx context.Context, task *core.Task) (*core.Result, error) {
			if mem == nil {
				return nil, errors.New(errors.CodeMemoryError, "reminders need a memory store", nil).
					WithRecoverable(false)
			}
			res := core.NewResult(task.ID)
			switch task.Type {
			case "set_reminder":
				text, _ := task.Payload["reminder"].(string)
				if text == "" {
					text, _ = task.Payload["instruction"].(string)
				}
				id, err := mem.Add(ctx, text, map[string]any{"kind": "reminder"})
				if err != nil {
					return nil, err
				}
				res.Data["reminder_id"] = id
				res.Data["reminder"] = text
			case "get_reminders":
				hits, err := mem.Search(ctx, "reminder", 10, map[string]any{"kind": "reminder"})
				if err != nil {
					return nil, err
				}
				reminders := make([]string, 0, len(hits))
				for _, hit := range hits {
					reminders = append(reminders, hit.Record.Text)
				}
				res.Data["reminders"] = reminders
			}
			return res, nil
		}),
	)
}

func newResearchAgent(_ *memory.Store) (*agent.Agent, error) {
	return agent.New("builtin-research",
		agent.WithCapabilities(core.NewCapability("research", "search_web", "get_news", "get_weather")),
		agent.WithHandler(func(_ context.Context, task *core.Task) (*core.Result, error) {
			res := core.NewResult(task.ID)
			switch task.Type {
			case "get_weather":
				city, _ := task.Payload["city"].(string)
				if city == "" {
					city = "your location"
				}
				res.Data["city"] = city
				res.Data["reply"] = fmt.Sprintf("No weather backend is configured; connect one to get conditions for %s.", city)
			default:
				query, _ := task.Payload["query"].(string)
				if query == "" {
					query, _ = task.Payload["instruction"].(string)
				}
				res.Data["query"] = strings.TrimSpace(query)
				res.Data["reply"] = "No search backend is configured; register a research agent to answer this."
			}
			return res, nil
		}),
	)
}

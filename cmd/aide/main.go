// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Command aide is a personal assistant core: it classifies natural
// language instructions into intents, routes them as tasks to capable
// agents, and remembers what it did.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aidekit/aide/pkg/config"
	"github.com/aidekit/aide/pkg/core"
	"github.com/aidekit/aide/pkg/history"
	"github.com/aidekit/aide/pkg/workflow"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(ctx, os.Args[2:])
	case "workflow":
		err = workflowCmd(ctx, os.Args[2:])
	case "history":
		err = historyCmd(ctx, os.Args[2:])
	case "version":
		fmt.Println("aide", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`aide - personal assistant task core

Usage:
  aide run [-config file] [-prompt "instruction"]   one-shot or interactive session
  aide workflow [-config file] <file.yaml>          run a workflow definition
  aide history [-config file] [-type t] [-status s] [-limit n]
  aide version`)
}

func runCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	prompt := fs.String("prompt", "", "single instruction to run; omit for interactive mode")
	asJSON := fs.Bool("json", false, "print results as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	if *prompt != "" {
		res := app.handle(ctx, *prompt, nil)
		return printResult(res, *asJSON)
	}
	return repl(ctx, app, *asJSON)
}

func repl(ctx context.Context, app *app, asJSON bool) error {
	fmt.Println("aide ready. Type an instruction, or \"exit\" to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	var recent []string
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		res := app.handle(ctx, line, recent)
		if err := printResult(res, asJSON); err != nil {
			return err
		}

		recent = append(recent, line)
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
	}
}

func workflowCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("workflow", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	asJSON := fs.Bool("json", false, "print results as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("workflow needs exactly one definition file")
	}

	wf, err := workflow.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	results, err := app.orch.RunWorkflow(ctx, wf)
	if err != nil {
		return err
	}
	for i, res := range results {
		fmt.Printf("step %s:\n", wf.Steps[i].ID)
		if err := printResult(res, *asJSON); err != nil {
			return err
		}
	}
	return nil
}

func historyCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	taskType := fs.String("type", "", "filter by task type")
	status := fs.String("status", "", "filter by terminal status")
	limit := fs.Int("limit", 50, "maximum entries")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx, history.Filter{
		TaskType: *taskType,
		Status:   *status,
		Limit:    *limit,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tTYPE\tSTATUS\tATTEMPTS\tDURATION\tERROR")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			entry.CreatedAt.Format(time.RFC3339),
			entry.TaskType,
			entry.Status,
			entry.Attempts,
			entry.Duration,
			entry.Error,
		)
	}
	return w.Flush()
}

func printResult(res *core.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if !res.Success {
		fmt.Printf("failed: %s\n", res.Err.Error())
		return nil
	}
	if reply, ok := res.Data["reply"].(string); ok {
		fmt.Println(reply)
		for k, v := range res.Data {
			if k == "reply" {
				continue
			}
			fmt.Printf("  %s: %v\n", k, v)
		}
		return nil
	}
	for k, v := range res.Data {
		fmt.Printf("  %s: %v\n", k, v)
	}
	return nil
}

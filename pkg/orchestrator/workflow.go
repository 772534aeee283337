// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/aidekit/aide/pkg/core"
	"github.com/aidekit/aide/pkg/errors"
	"github.com/aidekit/aide/pkg/workflow"
)

// RunWorkflow executes all steps of a validated workflow, submitting
// each step as soon as its dependencies have succeeded. A failed step
// cancels its dependents without invoking their agents; independent
// branches keep running. Results are returned in step declaration
// order. The returned error reports workflow-level problems only;
// per-step outcomes live in the results.
func (o *Orchestrator) RunWorkflow(ctx context.Context, wf *workflow.Workflow) ([]*core.Result, error) {
	if err := wf.Validate(); err != nil {
		return nil, err
	}

	type stepState struct {
		done   chan struct{}
		result *core.Result
	}
	states := make(map[string]*stepState, len(wf.Steps))
	for _, step := range wf.Steps {
		states[step.ID] = &stepState{done: make(chan struct{})}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range wf.Steps {
		step := wf.Steps[i]
		state := states[step.ID]
		g.Go(func() error {
			defer close(state.done)

			// Wait for every dependency; a non-success outcome in any of
			// them cancels this step before dispatch.
			for _, dep := range step.DependsOn {
				depState := states[dep]
				select {
				case <-depState.done:
				case <-ctx.Done():
					state.result = cancelledStep(step.ID, "workflow context cancelled")
					return nil
				}
				if depState.result == nil || !depState.result.Success {
					state.result = cancelledStep(step.ID, fmt.Sprintf("dependency %s did not succeed", dep))
					return nil
				}
			}

			task := core.NewTask(step.Type, step.StepPriority())
			for k, v := range step.Payload {
				task.Payload[k] = v
			}
			task.Payload["workflow_id"] = wf.ID
			task.Payload["step_id"] = step.ID
			for _, dep := range step.DependsOn {
				if data := states[dep].result.Data; len(data) > 0 {
					task.Payload["from_"+dep] = data
				}
			}

			state.result = o.submit(ctx, task, step.Capability)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]*core.Result, len(wf.Steps))
	for i, step := range wf.Steps {
		results[i] = states[step.ID].result
	}
	return results, nil
}

func cancelledStep(stepID, reason string) *core.Result {
	return core.FailedResult("", errors.New(errors.CodeCancelled, reason, nil).
		WithContext("step_id", stepID))
}

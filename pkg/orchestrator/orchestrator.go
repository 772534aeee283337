// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator is the scheduling core: it accepts tasks, routes
// them to capable agents through the registry, executes them on a
// bounded worker pool with retries and cancellation, and mirrors
// significant exchanges into semantic memory.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aidekit/aide/pkg/core"
	"github.com/aidekit/aide/pkg/errors"
	"github.com/aidekit/aide/pkg/memory"
	"github.com/aidekit/aide/pkg/registry"
	"github.com/aidekit/aide/pkg/resilience"
	"github.com/aidekit/aide/pkg/telemetry"
)

// Config tunes the orchestrator's scheduling behavior.
type Config struct {
	// Workers bounds the number of concurrently running tasks. Tasks
	// beyond the bound stay queued (backpressure, not rejection).
	Workers int

	// RetryCeiling caps a task's attempts. A task's attempts never
	// exceed it.
	RetryCeiling int

	// InitialBackoff is the delay before retrying the same agent.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff delay.
	MaxBackoff time.Duration

	// DefaultTimeout bounds Submit when the caller's context carries no
	// deadline. Zero means wait indefinitely for a terminal status.
	DefaultTimeout time.Duration
}

// sideEffectTimeout bounds memory mirroring and history writes so a
// slow backend cannot hold a worker's terminal path open.
const sideEffectTimeout = 5 * time.Second

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.RetryCeiling <= 0 {
		c.RetryCeiling = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	return c
}

// HistoryRecorder archives terminal tasks. Implementations must tolerate
// being called from multiple workers.
type HistoryRecorder interface {
	Record(ctx context.Context, task *core.Task, result *core.Result) error
}

// submission tracks one task through the queue and worker pool.
type submission struct {
	task       *core.Task
	candidates []core.Agent
	seq        uint64

	once     sync.Once
	resultCh chan *core.Result

	// guarded by the orchestrator lock
	cancelExec context.CancelFunc
}

// resolve delivers the terminal result exactly once. The channel is
// buffered so late losers never block.
func (s *submission) resolve(res *core.Result) {
	s.once.Do(func() { s.resultCh <- res })
}

// Orchestrator is the central scheduler. It owns the task queue and all
// task status transitions; the registry is only read.
type Orchestrator struct {
	registry *registry.Registry
	mem      *memory.Store
	history  HistoryRecorder
	metrics  *telemetry.TaskMetrics
	cfg      Config

	mu      sync.Mutex
	queue   *taskQueue
	active  map[string]*submission
	running int
	seq     uint64

	inflight sync.WaitGroup
	tracer   trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMemory mirrors successful exchanges into the semantic memory store.
func WithMemory(store *memory.Store) Option {
	return func(o *Orchestrator) { o.mem = store }
}

// WithHistory archives terminal tasks through the recorder.
func WithHistory(rec HistoryRecorder) Option {
	return func(o *Orchestrator) { o.history = rec }
}

// WithMetrics publishes task metrics.
func WithMetrics(m *telemetry.TaskMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an orchestrator over the given registry. The orchestrator
// holds the registry reference; the registry never references back.
func New(reg *registry.Registry, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: reg,
		cfg:      cfg.withDefaults(),
		queue:    newTaskQueue(),
		active:   make(map[string]*submission),
		tracer:   otel.Tracer("aide/orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit routes the task to a capable agent and suspends the caller
// until the task reaches a terminal status or ctx expires. It always
// returns a Result; routing and execution errors are captured in it, not
// raised.
func (o *Orchestrator) Submit(ctx context.Context, task *core.Task) *core.Result {
	return o.submit(ctx, task, "")
}

func (o *Orchestrator) submit(ctx context.Context, task *core.Task, capability string) *core.Result {
	ctx, span := o.tracer.Start(ctx, "Orchestrator.Submit",
		trace.WithAttributes(
			attribute.String("task.id", task.ID),
			attribute.String("task.type", task.Type),
			attribute.String("task.priority", task.Priority.String()),
		),
	)
	defer span.End()

	if o.cfg.DefaultTimeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, o.cfg.DefaultTimeout)
			defer cancel()
		}
	}

	candidates := o.registry.Find(capability, task.Type)
	if len(candidates) == 0 {
		// Retrying cannot fix a missing capability, so fail immediately
		// with zero attempts.
		o.mu.Lock()
		task.Fail()
		o.mu.Unlock()
		res := core.FailedResult(task.ID, errors.New(errors.CodeNoCapableAgent, "no agent accepts task type", nil).
			WithContext("task_type", task.Type).
			WithRecoverable(false))
		o.recordTerminal(task, res)
		return res
	}

	sub := &submission{
		task:       task,
		candidates: candidates,
		resultCh:   make(chan *core.Result, 1),
	}

	o.inflight.Add(1)
	o.mu.Lock()
	sub.seq = o.seq
	o.seq++
	o.queue.push(sub)
	o.active[task.ID] = sub
	// Gauge moves with the queue under the same lock: up on push, down
	// on pop, so it never counts a task a worker already holds.
	o.metrics.QueueDelta(ctx, 1)
	o.dispatchLocked()
	o.mu.Unlock()

	select {
	case res := <-sub.resultCh:
		return res
	case <-ctx.Done():
		code := errors.CodeCancelled
		msg := "submit cancelled by caller"
		if ctx.Err() == context.DeadlineExceeded {
			code = errors.CodeTimeout
			msg = "task deadline exceeded"
		}
		// Resolve before signalling cancellation so the caller observes
		// the deadline outcome, not the worker's cancellation outcome.
		sub.resolve(core.FailedResult(task.ID, errors.New(code, msg, ctx.Err())))
		o.Cancel(task.ID)
		return <-sub.resultCh
	}
}

// SubmitAll executes the tasks in parallel, respecting the worker bound,
// and returns results positionally matching the input.
func (o *Orchestrator) SubmitAll(ctx context.Context, tasks []*core.Task) []*core.Result {
	results := make([]*core.Result, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task *core.Task) {
			defer wg.Done()
			results[i] = o.Submit(ctx, task)
		}(i, task)
	}
	wg.Wait()
	return results
}

// Cancel requests cancellation of a queued or running task. A queued
// task resolves CANCELLED immediately with no agent invocation; a
// running task is signalled through its context and resolves CANCELLED
// once the agent yields, even if its work completed.
func (o *Orchestrator) Cancel(taskID string) {
	o.mu.Lock()
	sub, ok := o.active[taskID]
	if !ok {
		o.mu.Unlock()
		return
	}
	if sub.cancelExec != nil {
		cancel := sub.cancelExec
		o.mu.Unlock()
		cancel()
		return
	}

	// Still queued: remove and resolve without ever invoking an agent.
	o.queue.remove(taskID)
	o.metrics.QueueDelta(context.Background(), -1)
	sub.task.Cancel()
	delete(o.active, taskID)
	o.mu.Unlock()

	res := core.FailedResult(taskID, errors.New(errors.CodeCancelled, "cancelled before dispatch", nil))
	o.recordTerminal(sub.task, res)
	sub.resolve(res)
	o.inflight.Done()
}

// Drain waits for all queued and running tasks to finish, or for ctx to
// expire. Intended for shutdown.
func (o *Orchestrator) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.New(errors.CodeTimeout, "drain interrupted", ctx.Err())
	}
}

// dispatchLocked hands queued submissions to workers while capacity
// remains. Callers must hold o.mu.
func (o *Orchestrator) dispatchLocked() {
	for o.running < o.cfg.Workers && o.queue.Len() > 0 {
		sub := o.queue.pop()
		o.metrics.QueueDelta(context.Background(), -1)
		o.running++
		sub.task.Start()
		execCtx, cancel := context.WithCancel(context.Background())
		sub.cancelExec = cancel
		go o.run(execCtx, sub)
	}
}

// run executes a dispatched task, failing over to the next-ranked
// candidate on error and backing off when only one candidate remains.
func (o *Orchestrator) run(ctx context.Context, sub *submission) {
	defer func() {
		o.mu.Lock()
		o.running--
		o.dispatchLocked()
		o.mu.Unlock()
	}()

	task := sub.task
	backoff := resilience.RetryConfig{
		InitialDelay: o.cfg.InitialBackoff,
		MaxDelay:     o.cfg.MaxBackoff,
		Multiplier:   2.0,
		Jitter:       0.1,
	}

	candIdx := 0
	var lastErr *errors.AideError
	for {
		agent := sub.candidates[candIdx]
		started := time.Now()
		res, err := o.execute(ctx, agent, task)
		elapsed := time.Since(started)

		if ctx.Err() != nil {
			// A definitive caller intent: even a completed result is
			// discarded once cancellation was observed.
			o.finalizeCancelled(sub)
			return
		}

		if err == nil {
			res.TaskID = task.ID
			res.Duration = elapsed
			o.mu.Lock()
			task.Succeed()
			delete(o.active, task.ID)
			o.mu.Unlock()
			o.mirrorExchange(task, agent.ID())
			o.recordTerminal(task, res)
			slog.Info("task succeeded",
				slog.String("task_id", task.ID),
				slog.String("task_type", task.Type),
				slog.String("agent_id", agent.ID()),
				slog.Duration("duration", elapsed),
			)
			sub.resolve(res)
			o.inflight.Done()
			return
		}

		lastErr = errors.AsAideError(err)
		o.mu.Lock()
		task.Attempts++
		attempts := task.Attempts
		o.mu.Unlock()

		// Agent failures retry by default; only an error the agent
		// explicitly marked non-recoverable fails the task on the spot.
		retryable := lastErr.RecoverableOr(true)
		if !retryable || attempts >= o.cfg.RetryCeiling {
			o.mu.Lock()
			task.Fail()
			delete(o.active, task.ID)
			o.mu.Unlock()
			failure := lastErr
			if retryable {
				failure = errors.New(errors.CodeRetryExhausted, "retry ceiling reached", lastErr).
					WithContext("attempts", attempts)
			}
			final := core.FailedResult(task.ID, failure)
			final.Duration = elapsed
			o.recordTerminal(task, final)
			slog.Error("task failed",
				slog.String("task_id", task.ID),
				slog.String("task_type", task.Type),
				slog.Int("attempts", attempts),
				slog.String("error", lastErr.Error()),
			)
			sub.resolve(final)
			o.inflight.Done()
			return
		}

		o.metrics.RecordRetry(ctx, task.Type)
		slog.Warn("task attempt failed",
			slog.String("task_id", task.ID),
			slog.String("agent_id", agent.ID()),
			slog.Int("attempt", attempts),
			slog.String("error", lastErr.Error()),
		)

		// Prefer the next-ranked candidate over hammering the agent that
		// just failed; back off only when no alternative exists.
		if candIdx+1 < len(sub.candidates) {
			candIdx++
			continue
		}
		select {
		case <-time.After(resilience.Backoff(attempts, backoff)):
		case <-ctx.Done():
			o.finalizeCancelled(sub)
			return
		}
	}
}

// execute invokes the agent with panic recovery, normalizing every
// failure mode into an AideError.
func (o *Orchestrator) execute(ctx context.Context, agent core.Agent, task *core.Task) (res *core.Result, err error) {
	ctx, span := o.tracer.Start(ctx, "Agent.Execute",
		trace.WithAttributes(
			attribute.String("agent.id", agent.ID()),
			attribute.String("task.id", task.ID),
		),
	)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = errors.New(errors.CodeAgentExecution, "agent panicked", fmt.Errorf("%v", r)).
				WithContext("agent_id", agent.ID()).
				WithRecoverable(true)
		}
	}()

	res, execErr := agent.Execute(core.WithTaskID(ctx, task.ID), task)
	if execErr != nil {
		if ae, ok := execErr.(*errors.AideError); ok {
			return nil, ae
		}
		return nil, errors.New(errors.CodeAgentExecution, "agent execution failed", execErr).
			WithContext("agent_id", agent.ID()).
			WithRecoverable(true)
	}
	if res == nil {
		return nil, errors.New(errors.CodeAgentExecution, "agent returned no result", nil).
			WithContext("agent_id", agent.ID()).
			WithRecoverable(true)
	}
	if !res.Success {
		failure := res.Err
		if failure == nil {
			failure = errors.New(errors.CodeAgentExecution, "agent reported failure", nil)
		}
		return nil, failure
	}
	return res, nil
}

func (o *Orchestrator) finalizeCancelled(sub *submission) {
	task := sub.task
	o.mu.Lock()
	task.Cancel()
	delete(o.active, task.ID)
	o.mu.Unlock()

	res := core.FailedResult(task.ID, errors.New(errors.CodeCancelled, "task cancelled", nil))
	o.recordTerminal(task, res)
	slog.Info("task cancelled", slog.String("task_id", task.ID))
	sub.resolve(res)
	o.inflight.Done()
}

// mirrorExchange writes a condensed summary of a successful exchange
// into semantic memory so it becomes retrievable context later.
func (o *Orchestrator) mirrorExchange(task *core.Task, agentID string) {
	if o.mem == nil {
		return
	}
	meta := map[string]any{
		"kind":      "task_exchange",
		"task_id":   task.ID,
		"task_type": task.Type,
		"agent_id":  agentID,
	}
	if task.Intent != nil {
		meta["intent"] = task.Intent.Label
	}
	err := resilience.WithTimeout(context.Background(), sideEffectTimeout, func(ctx context.Context) error {
		_, err := o.mem.Add(ctx, summarizeExchange(task, agentID), meta)
		return err
	})
	if err != nil {
		slog.Warn("memory mirror failed",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
	}
}

func summarizeExchange(task *core.Task, agentID string) string {
	if instruction, ok := task.Payload["instruction"].(string); ok && instruction != "" {
		return fmt.Sprintf("%s (%s handled by %s)", instruction, task.Type, agentID)
	}
	return fmt.Sprintf("%s task handled by %s", task.Type, agentID)
}

func (o *Orchestrator) recordTerminal(task *core.Task, res *core.Result) {
	o.metrics.RecordTerminal(context.Background(), task.Type, string(task.Status), res.Duration)
	if o.history == nil {
		return
	}
	err := resilience.WithTimeout(context.Background(), sideEffectTimeout, func(ctx context.Context) error {
		return o.history.Record(ctx, task, res)
	})
	if err != nil {
		slog.Warn("history record failed",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
	}
}

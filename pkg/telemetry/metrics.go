// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TaskMetrics tracks task throughput, queue pressure, and execution
// latency for the orchestrator.
type TaskMetrics struct {
	// taskCounter counts tasks by terminal status and type.
	taskCounter metric.Int64Counter

	// retryCounter counts retry attempts by task type.
	retryCounter metric.Int64Counter

	// queueDepth tracks the number of queued-but-not-running tasks.
	queueDepth metric.Int64UpDownCounter

	// duration records task execution time in seconds by type.
	duration metric.Float64Histogram
}

// NewTaskMetrics creates the orchestrator metric instruments.
func NewTaskMetrics() (*TaskMetrics, error) {
	meter := otel.Meter("aide/orchestrator")

	taskCounter, err := meter.Int64Counter(
		"aide.tasks.total",
		metric.WithDescription("Tasks by terminal status and type"),
	)
	if err != nil {
		return nil, err
	}

	retryCounter, err := meter.Int64Counter(
		"aide.tasks.retries",
		metric.WithDescription("Retry attempts by task type"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64UpDownCounter(
		"aide.queue.depth",
		metric.WithDescription("Queued tasks awaiting a worker"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"aide.task.duration",
		metric.WithDescription("Task execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &TaskMetrics{
		taskCounter:  taskCounter,
		retryCounter: retryCounter,
		queueDepth:   queueDepth,
		duration:     duration,
	}, nil
}

// RecordTerminal records a task reaching a terminal status.
func (m *TaskMetrics) RecordTerminal(ctx context.Context, taskType, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("task.type", taskType),
		attribute.String("task.status", status),
	)
	m.taskCounter.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("task.type", taskType)))
}

// RecordRetry records a retry attempt.
func (m *TaskMetrics) RecordRetry(ctx context.Context, taskType string) {
	if m == nil {
		return
	}
	m.retryCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("task.type", taskType)))
}

// QueueDelta adjusts the queued-task gauge.
func (m *TaskMetrics) QueueDelta(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.queueDepth.Add(ctx, delta)
}

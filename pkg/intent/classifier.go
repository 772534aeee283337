// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package intent maps free-form instruction text to a classified intent:
// a label from a closed set, a confidence score, and extracted slots.
package intent

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aidekit/aide/pkg/core"
)

const (
	// defaultThreshold is the minimum model confidence before the
	// deterministic fallback is consulted.
	defaultThreshold = 0.7

	// fallbackConfidence is the fixed ceiling assigned to pattern matches.
	// It sits below the threshold so a fallback label is always
	// distinguishable from a confident model prediction.
	fallbackConfidence = 0.65
)

// Config tunes the classifier.
type Config struct {
	// Threshold is the minimum model confidence; below it the pattern
	// fallback is consulted. Zero means the default (0.7).
	Threshold float64

	// ExtraExamples extends the seed training corpus per label, so the
	// closed label set stays extensible without retraining machinery.
	ExtraExamples map[string][]string
}

// Classifier maps instruction text to an Intent using a trained
// statistical model with a deterministic pattern fallback.
type Classifier struct {
	model     *model
	threshold float64
	tracer    trace.Tracer
}

// NewClassifier builds a classifier, training the statistical model on
// the seed corpus plus any configured extra examples.
func NewClassifier(cfg Config) *Classifier {
	examples := seedExamples()
	for label, texts := range cfg.ExtraExamples {
		examples[label] = append(examples[label], texts...)
	}

	threshold := cfg.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultThreshold
	}

	return &Classifier{
		model:     trainModel(examples),
		threshold: threshold,
		tracer:    otel.Tracer("aide/intent"),
	}
}

// Classify maps text to an Intent. It never fails: empty or
// whitespace-only input yields the unknown label with confidence 0, and
// low confidence with no fallback match degrades to unknown rather than
// guessing. recentContext, when supplied, may only adjust slot
// extraction, never the chosen label.
func (c *Classifier) Classify(ctx context.Context, text string, recentContext []string) core.Intent {
	_, span := c.tracer.Start(ctx, "Classifier.Classify")
	defer span.End()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		span.SetAttributes(attribute.String("intent.label", core.IntentUnknown))
		return core.Intent{Label: core.IntentUnknown, Confidence: 0, Slots: map[string]string{}}
	}

	label, confidence := c.model.predict(tokenize(trimmed))

	if confidence < c.threshold {
		if fallback := matchFallback(trimmed); fallback != "" {
			label = fallback
			confidence = fallbackConfidence
		} else {
			slog.Debug("classification ambiguous",
				slog.String("label", label),
				slog.Float64("confidence", confidence),
			)
			label = core.IntentUnknown
		}
	}

	slots := extractSlots(label, trimmed)
	resolveWithContext(slots, trimmed, recentContext)

	span.SetAttributes(
		attribute.String("intent.label", label),
		attribute.Float64("intent.confidence", confidence),
	)
	return core.Intent{Label: label, Confidence: confidence, Slots: slots}
}

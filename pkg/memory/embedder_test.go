// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"testing"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	a, err := e.Embed(context.Background(), "list files in the home directory")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	b, err := e.Embed(context.Background(), "list files in the home directory")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("expected fixed dimension 64, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings for identical text must match at index %d", i)
		}
	}
}

func TestHashEmbedderNormalized(t *testing.T) {
	e := NewHashEmbedder(32)
	vec, err := e.Embed(context.Background(), "normalize me please")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm < 0.99 || norm > 1.01 {
		t.Fatalf("expected unit norm, got %f", norm)
	}
}

func TestHashEmbedderEmptyText(t *testing.T) {
	e := NewHashEmbedder(16)
	vec, err := e.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 16 {
		t.Fatalf("empty text still yields the fixed dimension, got %d", len(vec))
	}
}

func TestHashEmbedderMinimumDimension(t *testing.T) {
	e := NewHashEmbedder(2)
	if e.Dimension() != 64 {
		t.Fatalf("tiny dimensions raise to 64, got %d", e.Dimension())
	}
}

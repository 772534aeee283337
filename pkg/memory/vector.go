// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides the semantic memory store: a similarity index
// over (text, vector, metadata) records backed by a pluggable vector
// store and embedding provider.
package memory

import (
	"context"
	"time"
)

// Record is a stored (text, embedding, metadata) unit enabling semantic
// recall. Immutable once created except for deletion.
type Record struct {
	ID        string
	Text      string
	Vector    []float32
	Metadata  map[string]any
	CreatedAt time.Time
}

// Hit pairs a record with its similarity score for a query.
type Hit struct {
	Record Record
	Score  float32
}

// VectorStore is the persistence contract behind the Store facade.
// Implementations must keep concurrent Query calls safe against
// concurrent Upserts: a reader may or may not see a record added
// mid-query, but never a partially written vector.
type VectorStore interface {
	// Upsert stores a record. Records share one fixed vector dimension.
	Upsert(ctx context.Context, rec Record) error
	// Query returns up to k records most similar to vector, descending by
	// score, optionally narrowed by exact-match metadata filter. Ties
	// break by more recent CreatedAt.
	Query(ctx context.Context, vector []float32, k int, filter map[string]any) ([]Hit, error)
	// Delete removes a record by id. Deleting a missing id is a no-op.
	Delete(ctx context.Context, id string) error
}

// Embedder defines the contract an embedding provider must satisfy:
// a fixed output dimension, stable across calls.
type Embedder interface {
	// Embed converts a text string into a vector.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aidekit/aide/pkg/errors"
)

// Store is the semantic memory facade: it embeds text via the configured
// Embedder and delegates persistence to a VectorStore. The store knows
// nothing about tasks; it is a generic similarity index.
type Store struct {
	backend  VectorStore
	embedder Embedder
}

// NewStore creates a semantic memory store over the given backend and
// embedding provider.
func NewStore(backend VectorStore, embedder Embedder) *Store {
	return &Store{backend: backend, embedder: embedder}
}

// Add embeds text and stores it with the given metadata, returning the
// record id. Non-scalar metadata values are converted to their string
// representation rather than rejected, so Add is total over inputs.
func (s *Store) Add(ctx context.Context, text string, metadata map[string]any) (string, error) {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", errors.New(errors.CodeMemoryError, "failed to embed text", err)
	}

	rec := Record{
		ID:        uuid.NewString(),
		Text:      text,
		Vector:    vector,
		Metadata:  coerceMetadata(metadata),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.backend.Upsert(ctx, rec); err != nil {
		return "", errors.New(errors.CodeMemoryError, "failed to store record", err)
	}
	return rec.ID, nil
}

// Search embeds the query text and returns up to k hits ordered by
// descending similarity, optionally narrowed by exact-match metadata
// filter. An empty store yields an empty slice, never an error.
func (s *Store) Search(ctx context.Context, query string, k int, filter map[string]any) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.New(errors.CodeMemoryError, "failed to embed query", err)
	}
	hits, err := s.backend.Query(ctx, vector, k, coerceMetadata(filter))
	if err != nil {
		return nil, errors.New(errors.CodeMemoryError, "search failed", err)
	}
	return hits, nil
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return errors.New(errors.CodeMemoryError, "delete failed", err)
	}
	return nil
}

// coerceMetadata normalizes values to scalars. Numeric types collapse to
// int64/float64 so exact-match filters compare predictably; anything
// non-scalar becomes its string representation.
func coerceMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = coerceScalar(v)
	}
	return out
}

func coerceScalar(v any) any {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case float32:
		return float64(val)
	case float64:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

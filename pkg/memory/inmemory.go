// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// InMemoryStore is an in-process VectorStore. Writes copy their vectors
// under the write lock, so concurrent readers never observe a partially
// written vector.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	dim     int
}

// NewInMemoryStore creates an empty in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

// Upsert stores a copy of the record. The first record fixes the store's
// vector dimension; later records must match it.
func (s *InMemoryStore) Upsert(_ context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record id is required")
	}
	if len(rec.Vector) == 0 {
		return fmt.Errorf("record vector is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim == 0 {
		s.dim = len(rec.Vector)
	} else if len(rec.Vector) != s.dim {
		return fmt.Errorf("vector dimension %d does not match store dimension %d", len(rec.Vector), s.dim)
	}

	stored := rec
	stored.Vector = append([]float32(nil), rec.Vector...)
	s.records[rec.ID] = stored
	return nil
}

// Query returns the top-k records by cosine similarity, ties broken by
// more recent CreatedAt.
func (s *InMemoryStore) Query(_ context.Context, vector []float32, k int, filter map[string]any) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]Hit, 0, len(s.records))
	for _, rec := range s.records {
		if !matchesFilter(rec.Metadata, filter) {
			continue
		}
		hits = append(hits, Hit{Record: rec, Score: cosineSimilarity(vector, rec.Vector)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Record.CreatedAt.After(hits[j].Record.CreatedAt)
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes a record by id. Missing ids are a no-op.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func matchesFilter(metadata, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

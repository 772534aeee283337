// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestStore() *Store {
	return NewStore(NewInMemoryStore(), NewHashEmbedder(64))
}

func TestSearchEmptyStore(t *testing.T) {
	store := newTestStore()
	hits, err := store.Search(context.Background(), "anything", 5, nil)
	if err != nil {
		t.Fatalf("search on empty store must not fail: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestSearchZeroK(t *testing.T) {
	store := newTestStore()
	if _, err := store.Add(context.Background(), "some text", nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	hits, err := store.Search(context.Background(), "some text", 0, nil)
	if err != nil {
		t.Fatalf("search with k=0 must not fail: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("k=0 must return no hits, got %d", len(hits))
	}
}

func TestAddSearchRoundTrip(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	id, err := store.Add(ctx, "scan the local network for open ports", map[string]any{"kind": "command"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := store.Add(ctx, "the weather in madrid is sunny", nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	hits, err := store.Search(ctx, "scan the local network for open ports", 1, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Record.ID != id {
		t.Fatalf("expected the added record as top hit")
	}
	if hits[0].Record.Metadata["kind"] != "command" {
		t.Fatalf("expected metadata round-trip, got %v", hits[0].Record.Metadata)
	}
}

func TestSearchOrderingAndLimit(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	texts := []string{
		"deploy the web service to staging",
		"deploy the database to staging",
		"play some jazz music",
		"restart the docker container",
	}
	for _, text := range texts {
		if _, err := store.Add(ctx, text, nil); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	hits, err := store.Search(ctx, "deploy service staging", 3, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) > 3 {
		t.Fatalf("expected at most 3 hits, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("hits must be non-increasing by score: %v then %v", hits[i-1].Score, hits[i].Score)
		}
	}
}

func TestSearchMetadataFilter(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	if _, err := store.Add(ctx, "check disk usage", map[string]any{"agent": "devops"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := store.Add(ctx, "check disk usage", map[string]any{"agent": "security"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	hits, err := store.Search(ctx, "check disk usage", 10, map[string]any{"agent": "devops"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected filter to narrow to 1 hit, got %d", len(hits))
	}
	if hits[0].Record.Metadata["agent"] != "devops" {
		t.Fatalf("wrong record passed the filter: %v", hits[0].Record.Metadata)
	}
}

func TestAddCoercesNonScalarMetadata(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	_, err := store.Add(ctx, "remember this", map[string]any{
		"tags":  []string{"a", "b"},
		"count": 7,
	})
	if err != nil {
		t.Fatalf("non-scalar metadata must not reject the add: %v", err)
	}

	hits, err := store.Search(ctx, "remember this", 1, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	meta := hits[0].Record.Metadata
	if _, ok := meta["tags"].(string); !ok {
		t.Fatalf("expected slice coerced to string, got %T", meta["tags"])
	}
	if meta["count"] != int64(7) {
		t.Fatalf("expected int normalized to int64, got %T", meta["count"])
	}
}

func TestDelete(t *testing.T) {
	backend := NewInMemoryStore()
	store := NewStore(backend, NewHashEmbedder(64))
	ctx := context.Background()

	id, err := store.Add(ctx, "ephemeral note", nil)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if backend.Len() != 0 {
		t.Fatalf("expected empty backend after delete")
	}
	// Deleting a missing id stays a no-op.
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting missing id must not fail: %v", err)
	}
}

func TestTieBreakPrefersRecent(t *testing.T) {
	backend := NewInMemoryStore()
	ctx := context.Background()

	vec := []float32{1, 0, 0}
	older := Record{ID: "older", Text: "same", Vector: vec, CreatedAt: time.Now().Add(-time.Hour)}
	newer := Record{ID: "newer", Text: "same", Vector: vec, CreatedAt: time.Now()}
	if err := backend.Upsert(ctx, older); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := backend.Upsert(ctx, newer); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	hits, err := backend.Query(ctx, vec, 2, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if hits[0].Record.ID != "newer" {
		t.Fatalf("equal scores must prefer the more recent record, got %s first", hits[0].Record.ID)
	}
}

func TestDimensionMismatchRejected(t *testing.T) {
	backend := NewInMemoryStore()
	ctx := context.Background()

	if err := backend.Upsert(ctx, Record{ID: "a", Vector: []float32{1, 2, 3}}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := backend.Upsert(ctx, Record{ID: "b", Vector: []float32{1, 2}}); err == nil {
		t.Fatalf("expected dimension mismatch to be rejected")
	}
}

func TestConcurrentAddAndSearch(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := store.Add(ctx, "concurrent entry", nil); err != nil {
					t.Errorf("add failed: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := store.Search(ctx, "concurrent entry", 3, nil); err != nil {
					t.Errorf("search failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

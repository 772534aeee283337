// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEmbedder is a deterministic, offline embedding provider: tokens are
// hashed into a fixed number of buckets and the resulting bag-of-words
// vector is L2-normalized. It is not semantically meaningful the way a
// trained model is, but identical texts always land on identical vectors,
// which is enough for exact-recall and for tests.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder with the given dimension.
// Dimensions below 8 are raised to 64.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim < 8 {
		dim = 64
	}
	return &HashEmbedder{dim: dim}
}

// Dimension returns the fixed output dimension.
func (e *HashEmbedder) Dimension() int { return e.dim }

// Embed converts text into a normalized bucketed token-count vector.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package mock provides a deterministic embedder for tests and the chromem
// development backend. Identical text always yields identical vectors.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

const dimensions = 384

// Embedder generates hash-seeded pseudo-random unit vectors.
type Embedder struct{}

// New creates a mock embedder.
func New() *Embedder {
	return &Embedder{}
}

// Embed derives a deterministic embedding from the text's FNV hash.
func (m *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, dimensions)
	for i := range embedding {
		// Linear congruential step per dimension.
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding vector size.
func (m *Embedder) Dimensions() int {
	return dimensions
}

// Close is a no-op.
func (m *Embedder) Close() error { return nil }

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

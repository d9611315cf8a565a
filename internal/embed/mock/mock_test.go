// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_Deterministic(t *testing.T) {
	m := New()
	ctx := context.Background()

	a, err := m.Embed(ctx, "the same text")
	require.NoError(t, err)
	b, err := m.Embed(ctx, "the same text")
	require.NoError(t, err)
	c, err := m.Embed(ctx, "different text")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, m.Dimensions())
}

func TestEmbed_UnitVector(t *testing.T) {
	m := New()
	vec, err := m.Embed(context.Background(), "normalize me")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)
}

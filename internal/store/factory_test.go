// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package store_test

import (
	"testing"

	"github.com/mnemo-dev/mnemo/internal/store"
	_ "github.com/mnemo-dev/mnemo/internal/store/chromem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStores_UnsupportedBackend(t *testing.T) {
	_, _, err := store.NewStores(&store.StorageConfig{Backend: "cassandra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage backend")
}

func TestNewStores_RegisteredBackend(t *testing.T) {
	es, vs, err := store.NewStores(&store.StorageConfig{Backend: "chromem"})
	require.NoError(t, err)
	require.NotNil(t, es)
	require.NotNil(t, vs)
	t.Cleanup(func() {
		_ = es.Close()
		_ = vs.Close()
	})
}

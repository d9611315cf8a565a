// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mnemo-dev/mnemo/internal/store"
)

func init() {
	store.RegisterBackend("sqlite", newStores)
}

func newStores(dataPath string, vectorDims int) (store.EntryStore, store.VectorStore, error) {
	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	es, err := NewEntryStore(filepath.Join(dataPath, "memories.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating entry store: %w", err)
	}

	vs, err := NewVectorStore(filepath.Join(dataPath, "vectors.db"), vectorDims)
	if err != nil {
		_ = es.Close()
		return nil, nil, fmt.Errorf("creating vector store: %w", err)
	}

	return es, vs, nil
}

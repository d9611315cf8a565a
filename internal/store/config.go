// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package store

// StorageConfig controls which backend the store factory uses.
type StorageConfig struct {
	Backend          string // "sqlite" (default) or "chromem".
	Path             string // Data directory for file-backed backends.
	VectorDimensions int    // Embedding dimensions; 0 uses the default (384).
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package server

import (
	"context"

	"github.com/mnemo-dev/mnemo/internal/engine"
	"github.com/mnemo-dev/mnemo/internal/recall"
	"github.com/mnemo-dev/mnemo/internal/store"
)

// MemoryService is the slice of the memory service the HTTP layer consumes
// directly, bypassing the turn engine.
type MemoryService interface {
	Recall(ctx context.Context, q recall.Query) (*recall.Result, error)
	List(ctx context.Context, opts store.ListOpts) ([]recall.MemoryEntry, error)
	Count(ctx context.Context) (int64, error)
}

// Services bundles the dependencies the REST routes dispatch to. The engine
// owns writes and the per-turn pipeline; reads go straight to the memory
// service.
type Services struct {
	Engine *engine.Engine
	Memory MemoryService
}

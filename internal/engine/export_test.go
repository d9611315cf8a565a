// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine

import (
	"time"

	"github.com/mnemo-dev/mnemo/internal/recall"
)

// FuseEntries exposes the fusion merge step for property tests.
func FuseEntries(results []*recall.Result, highImpact bool, minScore float64, limit int) []RankedEntry {
	return fuseEntries(results, highImpact, minScore, limit)
}

// SetClock replaces the sampler's time source for interval-flush tests.
func (t *Telemetry) SetClock(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.lastFlush = now()
	t.mu.Unlock()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mnemo-dev/mnemo/internal/recall"
)

const (
	defaultFlushTurns    = 25
	defaultFlushInterval = 10 * time.Minute
)

// TelemetrySnapshot is a read-only view of the sampler's counters.
type TelemetrySnapshot struct {
	Turns      int64     `json:"turns"`
	Recalls    int64     `json:"recalls"`
	Preflights int64     `json:"preflights"`
	Injected   int64     `json:"injected"`
	LastFlush  time.Time `json:"last_flush"`
}

// Telemetry tracks per-process engine activity and periodically emits one
// summary record through the store capability. Counters are cumulative for
// the process lifetime; a flush records them but does not reset them. Flush
// failures are swallowed; self-observation must never cost a turn.
type Telemetry struct {
	mu         sync.Mutex
	turns      int64
	recalls    int64
	preflights int64
	injected   int64
	lastFlush  time.Time

	flushTurns    int
	flushInterval time.Duration
	sink          recall.Rememberer
	logger        *slog.Logger
	now           func() time.Time
}

// NewTelemetry creates a sampler flushing every flushTurns turns or after
// flushInterval since the last flush, whichever comes first. Create one per
// host process.
func NewTelemetry(sink recall.Rememberer, flushTurns int, flushInterval time.Duration, logger *slog.Logger) *Telemetry {
	if flushTurns <= 0 {
		flushTurns = defaultFlushTurns
	}
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := &Telemetry{
		flushTurns:    flushTurns,
		flushInterval: flushInterval,
		sink:          sink,
		logger:        logger,
		now:           time.Now,
	}
	t.lastFlush = t.now()
	return t
}

// RecordTurn updates the counters for one processed turn and flushes when
// the rate-limit policy allows.
func (t *Telemetry) RecordTurn(ctx context.Context, recallsIssued int, preflight bool, injected int) {
	t.mu.Lock()
	t.turns++
	t.recalls += int64(recallsIssued)
	if preflight {
		t.preflights++
	}
	t.injected += int64(injected)

	due := t.turns%int64(t.flushTurns) == 0 ||
		t.now().Sub(t.lastFlush) >= t.flushInterval
	var snap TelemetrySnapshot
	if due {
		t.lastFlush = t.now()
		snap = t.snapshotLocked()
	}
	t.mu.Unlock()

	if due {
		t.flush(ctx, snap)
	}
}

// Snapshot returns the current counter values.
func (t *Telemetry) Snapshot() TelemetrySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Telemetry) snapshotLocked() TelemetrySnapshot {
	return TelemetrySnapshot{
		Turns:      t.turns,
		Recalls:    t.recalls,
		Preflights: t.preflights,
		Injected:   t.injected,
		LastFlush:  t.lastFlush,
	}
}

// flush stores one summary record. Errors are logged and dropped.
func (t *Telemetry) flush(ctx context.Context, snap TelemetrySnapshot) {
	if t.sink == nil {
		return
	}

	content := fmt.Sprintf(
		"mnemo telemetry: turns=%d recalls=%d preflights=%d injected=%d",
		snap.Turns, snap.Recalls, snap.Preflights, snap.Injected,
	)

	_, err := t.sink.Remember(ctx, recall.StoreRequest{
		Content: content,
		Type:    recall.TypeEpisodic,
		Tags:    []string{"telemetry", "mnemo"},
		Subject: "mnemo",
		Source:  "telemetry",
	})
	if err != nil {
		t.logger.Debug("telemetry flush failed", "error", err)
	}
}

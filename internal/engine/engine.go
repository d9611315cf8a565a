// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mnemo-dev/mnemo/internal/recall"
)

// Defaults for the fusion limits. The general limit matches the memory
// service's own default recall page size.
const (
	defaultGeneralLimit   = 10
	defaultPreflightLimit = 5
	defaultMinScore       = 0.35
	defaultProjectSubject = "project"
)

// Config holds the engine's tuning knobs.
type Config struct {
	// GeneralLimit caps the unscoped prompt query and the final ranked list
	// on ordinary turns.
	GeneralLimit int
	// PreflightLimit caps the preflight query and the final ranked list on
	// high-impact turns.
	PreflightLimit int
	// MinScore is the adjusted-score floor below which fused entries are
	// discarded. Compared against the unclamped, bonus-boosted score.
	MinScore float64
	// ChecklistMax caps the rendered checklist length.
	ChecklistMax int
	// ProjectSubject scopes the project-constraints side query.
	ProjectSubject string
}

func (c *Config) applyDefaults() {
	if c.GeneralLimit <= 0 {
		c.GeneralLimit = defaultGeneralLimit
	}
	if c.PreflightLimit <= 0 {
		c.PreflightLimit = defaultPreflightLimit
	}
	if c.MinScore == 0 {
		c.MinScore = defaultMinScore
	}
	if c.ChecklistMax <= 0 {
		c.ChecklistMax = defaultChecklistMax
	}
	if c.ProjectSubject == "" {
		c.ProjectSubject = defaultProjectSubject
	}
}

// Engine is the per-process turn decision engine. The policy cache and
// telemetry sampler are injected so hosts and tests own their lifecycle
// explicitly instead of relying on hidden globals.
type Engine struct {
	client    recall.Client
	cfg       Config
	cache     *PolicyCache
	telemetry *Telemetry
	logger    *slog.Logger
}

// New creates an Engine.
func New(client recall.Client, cfg Config, cache *PolicyCache, telemetry *Telemetry, logger *slog.Logger) *Engine {
	cfg.applyDefaults()
	if cache == nil {
		cache = NewPolicyCache()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		client:    client,
		cfg:       cfg,
		cache:     cache,
		telemetry: telemetry,
		logger:    logger,
	}
}

// TurnContext is the engine's output for one conversational turn.
type TurnContext struct {
	// ContextBlock is the rendered fused-memories-plus-checklist text to
	// prepend to the model's context; empty when nothing qualified.
	ContextBlock string   `json:"context_block,omitempty"`
	HighImpact   bool     `json:"high_impact"`
	Injected     int      `json:"injected"`
	Checklist    []string `json:"checklist,omitempty"`
}

// OnTurnStart runs the full per-turn pipeline: intent classification, recall
// fan-out and fusion, policy-cache refresh, checklist construction, and
// telemetry accounting. It never fails: any unexpected internal error
// degrades to an empty context block.
func (e *Engine) OnTurnStart(ctx context.Context, prompt string) (tc TurnContext) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("turn pipeline panicked, returning empty context", "panic", r)
			tc = TurnContext{HighImpact: tc.HighImpact}
		}
	}()

	highImpact := ClassifyIntent(prompt)
	tc.HighImpact = highImpact

	fused := e.fuse(ctx, prompt, highImpact)

	// Read-through refresh: governance entries surfacing in this pass
	// overwrite their cached rules with the pass's adjusted scores.
	for _, rule := range ExtractPolicyRules(fused.entries) {
		e.cache.Upsert(rule)
	}

	tc.Checklist = BuildChecklist(prompt, e.cache.Snapshot(), e.cfg.ChecklistMax)
	tc.Injected = len(fused.entries)
	tc.ContextBlock = renderContextBlock(fused, tc.Checklist)

	if e.telemetry != nil {
		e.telemetry.RecordTurn(ctx, fused.queriesIssued, fused.preflight, tc.Injected)
	}

	return tc
}

// Remember stores a memory through the service and write-throughs any
// governance-tagged result into the policy cache at full trust (score 1.0),
// so freshly authored rules are hot before any recall round-trip.
func (e *Engine) Remember(ctx context.Context, req recall.StoreRequest) (*recall.MemoryEntry, error) {
	entry, err := e.client.Remember(ctx, req)
	if err != nil {
		return nil, err
	}

	if IsGovernance(entry) {
		e.cache.Upsert(RuleFromEntry(*entry, 1.0))
	}
	return entry, nil
}

// Forget removes a memory from the service and, as a required side effect,
// drops the corresponding policy-cache entry.
func (e *Engine) Forget(ctx context.Context, id string) (bool, error) {
	ok, err := e.client.Forget(ctx, id)
	if err != nil {
		return false, err
	}

	e.cache.Remove(id)
	return ok, nil
}

// PolicySnapshot exposes the cached rules, read-only.
func (e *Engine) PolicySnapshot() []PolicyRule {
	return e.cache.Snapshot()
}

// Telemetry exposes the sampler's counters, read-only. Nil-safe.
func (e *Engine) Telemetry() TelemetrySnapshot {
	if e.telemetry == nil {
		return TelemetrySnapshot{}
	}
	return e.telemetry.Snapshot()
}

// WarmPolicyCache upserts pre-authored rules, used at startup to seed the
// cache from a rules file.
func (e *Engine) WarmPolicyCache(rules []PolicyRule) {
	for _, rule := range rules {
		e.cache.Upsert(rule)
	}
}

// renderContextBlock assembles the injectable text. Empty when the pass
// produced no entries, no graph context, and no checklist.
func renderContextBlock(fused fusionResult, checklist []string) string {
	if len(fused.entries) == 0 && fused.graphContext == "" && len(checklist) == 0 {
		return ""
	}

	var b strings.Builder

	if len(fused.entries) > 0 {
		b.WriteString("## Relevant memories\n")
		for _, re := range fused.entries {
			b.WriteString(fmt.Sprintf("- [%.2f] %s", re.Score, re.Entry.Content))
			if re.Entry.Subject != "" {
				b.WriteString(fmt.Sprintf(" (subject: %s)", re.Entry.Subject))
			}
			b.WriteByte('\n')
		}
	}

	if fused.graphContext != "" {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("## Memory graph context\n")
		b.WriteString(fused.graphContext)
		b.WriteByte('\n')
	}

	if len(checklist) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("## Pre-action checklist\n")
		for _, line := range checklist {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

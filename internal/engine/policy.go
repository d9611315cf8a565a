// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine

import (
	"sync"

	"github.com/mnemo-dev/mnemo/internal/recall"
)

// governanceTags mark an entry as a standing rule rather than ordinary
// recall content.
var governanceTags = []string{"policy", "workflow", "critical", "correction"}

// IsGovernance reports whether the entry carries at least one governance tag.
func IsGovernance(e *recall.MemoryEntry) bool {
	return e.HasAnyTag(governanceTags...)
}

// PolicyRule is a compact projection of a governance-tagged memory entry.
// The Score is the adjusted score at extraction time, or 1.0 for rules
// authored through the engine's own store path ("authored now, trust fully").
type PolicyRule struct {
	ID      string   `json:"id"`
	Content string   `json:"content"`
	Subject string   `json:"subject,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Score   float64  `json:"score"`
}

// RuleFromEntry projects a memory entry into a PolicyRule with the given score.
func RuleFromEntry(e recall.MemoryEntry, score float64) PolicyRule {
	return PolicyRule{
		ID:      e.ID,
		Content: e.Content,
		Subject: e.Subject,
		Tags:    e.Tags,
		Score:   score,
	}
}

// HasAnyTag reports whether the rule carries at least one of the given tags,
// case-insensitively.
func (r PolicyRule) HasAnyTag(tags ...string) bool {
	entry := recall.MemoryEntry{Tags: r.Tags}
	return entry.HasAnyTag(tags...)
}

// ExtractPolicyRules filters fused entries down to governance-tagged ones and
// projects them into rule records carrying their adjusted score. Pure and
// total; empty input yields empty output.
func ExtractPolicyRules(entries []RankedEntry) []PolicyRule {
	var rules []PolicyRule
	for _, re := range entries {
		if IsGovernance(&re.Entry) {
			rules = append(rules, RuleFromEntry(re.Entry, re.Score))
		}
	}
	return rules
}

// PolicyCache is the process-lifetime store of policy rules, keyed by the
// originating entry id. It is enriched by write-through (direct governance
// stores) and read-through refresh (governance entries surfacing in fusion
// results), and only shrinks via explicit removal. Overwrite is idempotent
// by identifier, so last-write-wins under concurrent upserts is acceptable.
type PolicyCache struct {
	mu    sync.RWMutex
	rules map[string]PolicyRule
}

// NewPolicyCache creates an empty cache. Create one per host process; the
// cache is never implicitly reset.
func NewPolicyCache() *PolicyCache {
	return &PolicyCache{rules: make(map[string]PolicyRule)}
}

// Upsert inserts or overwrites a rule by identifier.
func (c *PolicyCache) Upsert(rule PolicyRule) {
	if rule.ID == "" {
		return
	}
	c.mu.Lock()
	c.rules[rule.ID] = rule
	c.mu.Unlock()
}

// Snapshot returns a copy of all currently cached rules.
func (c *PolicyCache) Snapshot() []PolicyRule {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]PolicyRule, 0, len(c.rules))
	for _, rule := range c.rules {
		out = append(out, rule)
	}
	return out
}

// Remove deletes a rule. Invoked only by an explicit unpin/forget action.
func (c *PolicyCache) Remove(id string) {
	c.mu.Lock()
	delete(c.rules, id)
	c.mu.Unlock()
}

// Len returns the number of cached rules.
func (c *PolicyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rules)
}

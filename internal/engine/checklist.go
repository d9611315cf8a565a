// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine

import (
	"fmt"
	"sort"
)

// defaultChecklistMax caps how many rules a checklist renders.
const defaultChecklistMax = 5

// BuildChecklist selects and orders up to max cached policy rules for the
// turn. High-impact turns see every supplied rule; ordinary turns only rules
// explicitly tagged "workflow" or "policy". Candidates sort descending by
// stored score (stable; ties keep input order) and render as a 1-based
// numbered list. An empty candidate set yields nil: no checklist for the
// turn, which is not an error.
func BuildChecklist(promptText string, rules []PolicyRule, max int) []string {
	if max <= 0 {
		max = defaultChecklistMax
	}

	highImpact := ClassifyIntent(promptText)

	candidates := make([]PolicyRule, 0, len(rules))
	for _, rule := range rules {
		if highImpact || hasChecklistTag(rule) {
			candidates = append(candidates, rule)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}

	lines := make([]string, len(candidates))
	for i, rule := range candidates {
		lines[i] = fmt.Sprintf("%d. %s", i+1, rule.Content)
	}
	return lines
}

func hasChecklistTag(rule PolicyRule) bool {
	return rule.HasAnyTag("workflow", "policy")
}

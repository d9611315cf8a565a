// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine_test

import (
	"testing"

	"github.com/mnemo-dev/mnemo/internal/engine"
	"github.com/mnemo-dev/mnemo/internal/recall"
	"github.com/stretchr/testify/assert"
)

func scored(base float64, subject string, tags ...string) recall.ScoredEntry {
	return recall.ScoredEntry{
		Entry: recall.MemoryEntry{ID: "e", Content: "c", Subject: subject, Tags: tags},
		Score: base,
	}
}

func TestAdjustedScore_Bonuses(t *testing.T) {
	cases := []struct {
		name       string
		entry      recall.ScoredEntry
		highImpact bool
		want       float64
	}{
		{"no bonuses", scored(0.5, ""), false, 0.5},
		{"pinned", scored(0.5, "", "pinned"), false, 0.75},
		{"policy", scored(0.5, "", "policy"), false, 0.70},
		{"workflow", scored(0.5, "", "workflow"), false, 0.60},
		{"user subject", scored(0.5, "user"), false, 0.55},
		{"deploy tag ignored on ordinary turn", scored(0.5, "", "deploy"), false, 0.5},
		{"deploy tag on high-impact turn", scored(0.5, "", "deploy"), true, 0.62},
		{"ci tag on high-impact turn", scored(0.5, "", "ci"), true, 0.62},
		{"missing base score", scored(0, "", "pinned"), false, 0.25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, engine.AdjustedScore(tc.entry, tc.highImpact), 1e-9)
		})
	}
}

func TestAdjustedScore_BonusesCompoundUnclamped(t *testing.T) {
	se := scored(0.6, "user", "pinned", "policy", "workflow", "deploy")
	// 0.6 + 0.25 + 0.20 + 0.10 + 0.12 + 0.05 = 1.32
	assert.InDelta(t, 1.32, engine.AdjustedScore(se, true), 1e-9)
}

func TestAdjustedScore_TagsCaseInsensitive(t *testing.T) {
	assert.InDelta(t, 0.75, engine.AdjustedScore(scored(0.5, "", "PINNED"), false), 1e-9)
	assert.InDelta(t, 0.70, engine.AdjustedScore(scored(0.5, "", "Policy"), false), 1e-9)
}

// Adding a qualifying tag never decreases the score.
func TestAdjustedScore_MonotoneInTags(t *testing.T) {
	base := scored(0.4, "")
	tagged := scored(0.4, "", "workflow")
	moreTagged := scored(0.4, "", "workflow", "pinned")

	s0 := engine.AdjustedScore(base, false)
	s1 := engine.AdjustedScore(tagged, false)
	s2 := engine.AdjustedScore(moreTagged, false)

	assert.LessOrEqual(t, s0, s1)
	assert.LessOrEqual(t, s1, s2)
}

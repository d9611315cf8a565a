// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine_test

import (
	"testing"

	"github.com/mnemo-dev/mnemo/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChecklist_OrdersByScoreDescending(t *testing.T) {
	rules := []engine.PolicyRule{
		{ID: "b", Content: "update the changelog", Tags: []string{"workflow"}, Score: 0.9},
		{ID: "c", Content: "announce in the team channel", Tags: []string{"workflow"}, Score: 0.7},
		{ID: "a", Content: "run the smoke suite", Tags: []string{"policy"}, Score: 0.95},
	}

	lines := engine.BuildChecklist("deploy the api to production", rules, 5)

	require.Equal(t, []string{
		"1. run the smoke suite",
		"2. update the changelog",
		"3. announce in the team channel",
	}, lines)
}

func TestBuildChecklist_OrdinaryTurnFiltersByTag(t *testing.T) {
	rules := []engine.PolicyRule{
		{ID: "a", Content: "squash commits", Tags: []string{"workflow"}, Score: 0.8},
		{ID: "b", Content: "never force-push main", Tags: []string{"critical"}, Score: 0.9},
		{ID: "c", Content: "prefer table tests", Tags: []string{"policy"}, Score: 0.7},
	}

	lines := engine.BuildChecklist("explain this function", rules, 5)

	// "critical" qualifies only on high-impact turns.
	require.Equal(t, []string{
		"1. squash commits",
		"2. prefer table tests",
	}, lines)
}

func TestBuildChecklist_HighImpactIncludesAllRules(t *testing.T) {
	rules := []engine.PolicyRule{
		{ID: "a", Content: "never force-push main", Tags: []string{"critical"}, Score: 0.9},
		{ID: "b", Content: "double-check the target env", Tags: []string{"correction"}, Score: 0.6},
	}

	lines := engine.BuildChecklist("run the migration now", rules, 5)

	require.Len(t, lines, 2)
	assert.Equal(t, "1. never force-push main", lines[0])
}

func TestBuildChecklist_CapsAtMax(t *testing.T) {
	rules := make([]engine.PolicyRule, 8)
	for i := range rules {
		rules[i] = engine.PolicyRule{
			ID:      string(rune('a' + i)),
			Content: "rule",
			Tags:    []string{"policy"},
			Score:   float64(8-i) / 10,
		}
	}

	lines := engine.BuildChecklist("review this diff", rules, 5)
	assert.Len(t, lines, 5)
}

func TestBuildChecklist_EmptyCandidatesYieldNil(t *testing.T) {
	assert.Nil(t, engine.BuildChecklist("deploy everything", nil, 5))
	assert.Nil(t, engine.BuildChecklist("explain this", []engine.PolicyRule{
		{ID: "a", Content: "untagged note", Score: 0.9},
	}, 5))
}

func TestBuildChecklist_StableForEqualScores(t *testing.T) {
	rules := []engine.PolicyRule{
		{ID: "a", Content: "first", Tags: []string{"policy"}, Score: 0.5},
		{ID: "b", Content: "second", Tags: []string{"policy"}, Score: 0.5},
	}

	lines := engine.BuildChecklist("summarize the notes", rules, 5)
	require.Equal(t, []string{"1. first", "2. second"}, lines)
}

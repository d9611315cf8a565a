// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mnemo-dev/mnemo/internal/recall"
)

// Fixed fan-out queries. The general query carries the raw prompt; these
// pull in standing context regardless of what the prompt says.
const (
	queryUserRules          = "user preferences and operating rules"
	queryProjectConstraints = "project workflow constraints"
	queryPreflight          = "deployment workflow post-deploy checklist ci update"
)

// smallScopedLimit bounds the subject-scoped side queries.
const smallScopedLimit = 3

// RankedEntry is a fused candidate carrying its adjusted score.
type RankedEntry struct {
	Entry recall.MemoryEntry
	Score float64
}

// fusionResult is the outcome of one fan-out pass.
type fusionResult struct {
	entries       []RankedEntry
	graphContext  string
	queriesIssued int
	preflight     bool
}

// fuse fans out up to four concurrent recall queries, swallows per-branch
// failures, and merges the settled results into one deduplicated, ranked,
// capped list. A failing source never aborts or contaminates the others; the
// whole pass degrades to zero entries rather than raising.
func (e *Engine) fuse(ctx context.Context, prompt string, highImpact bool) fusionResult {
	queries := []recall.Query{
		{Text: prompt, Limit: e.cfg.GeneralLimit},
		{Text: queryUserRules, Limit: smallScopedLimit, Subject: subjectUser},
		{Text: queryProjectConstraints, Limit: smallScopedLimit, Subject: e.cfg.ProjectSubject},
	}
	if highImpact {
		queries = append(queries, recall.Query{Text: queryPreflight, Limit: e.cfg.PreflightLimit})
	}

	results := make([]*recall.Result, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			res, err := e.client.Recall(ctx, q)
			if err != nil {
				e.logger.Warn("recall source failed, degrading to empty",
					"query", q.Text, "subject", q.Subject, "error", err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	// Branches never return errors; Wait is purely the join point.
	_ = g.Wait()

	var graphContext string
	if results[0] != nil {
		graphContext = results[0].GraphContext
	}

	limit := e.cfg.GeneralLimit
	if highImpact {
		limit = e.cfg.PreflightLimit
	}

	return fusionResult{
		entries:       fuseEntries(results, highImpact, e.cfg.MinScore, limit),
		graphContext:  graphContext,
		queriesIssued: len(queries),
		preflight:     highImpact,
	}
}

// fuseEntries merges settled recall results: dedup by entry id keeping the
// strictly higher adjusted score (ties keep first seen), drop entries below
// the floor, stable-sort descending, truncate to limit.
func fuseEntries(results []*recall.Result, highImpact bool, minScore float64, limit int) []RankedEntry {
	var kept []RankedEntry
	index := make(map[string]int)

	for _, res := range results {
		if res == nil {
			continue
		}
		for _, se := range res.Entries {
			adjusted := AdjustedScore(se, highImpact)
			if i, ok := index[se.Entry.ID]; ok {
				if adjusted > kept[i].Score {
					kept[i] = RankedEntry{Entry: se.Entry, Score: adjusted}
				}
				continue
			}
			index[se.Entry.ID] = len(kept)
			kept = append(kept, RankedEntry{Entry: se.Entry, Score: adjusted})
		}
	}

	survivors := kept[:0]
	for _, re := range kept {
		if re.Score >= minScore {
			survivors = append(survivors, re)
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Score > survivors[j].Score
	})

	if limit > 0 && len(survivors) > limit {
		survivors = survivors[:limit]
	}
	return survivors
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine

import "github.com/mnemo-dev/mnemo/internal/recall"

// Score bonuses. Each applies independently and additively; an entry can
// collect several. The result is deliberately unclamped: stacked bonuses may
// push a score past 1.0, which makes heavily-tagged entries outrank any
// similarity hit. The minimum-score floor compares against the boosted value.
const (
	bonusPinned      = 0.25
	bonusPolicy      = 0.20
	bonusWorkflow    = 0.10
	bonusShipContext = 0.12
	bonusUserSubject = 0.05

	subjectUser = "user"
)

// AdjustedScore computes the ranking score for one candidate entry. A missing
// base score counts as 0. Tag comparison is case-insensitive. Pure and total.
func AdjustedScore(se recall.ScoredEntry, highImpact bool) float64 {
	score := se.Score

	if se.Entry.HasTag("pinned") {
		score += bonusPinned
	}
	if se.Entry.HasTag("policy") {
		score += bonusPolicy
	}
	if se.Entry.HasTag("workflow") {
		score += bonusWorkflow
	}
	if highImpact && se.Entry.HasAnyTag("deploy", "release", "ci") {
		score += bonusShipContext
	}
	if se.Entry.Subject == subjectUser {
		score += bonusUserSubject
	}

	return score
}

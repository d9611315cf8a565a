// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package engine decides, on every conversational turn, which memories are
// worth injecting into the model's context window.
//
// The pipeline per turn: classify the prompt's intent, fan out several
// concurrent recall queries, fuse the scored results into one deduplicated
// ranked list, refresh the policy-rule cache from what surfaced, and render
// the fused memories plus (for high-impact turns) a prioritized checklist of
// standing rules the agent must satisfy before acting.
//
// Nothing in this package is permitted to fail a turn: every externally
// sourced error is swallowed at its call site and degrades to "no data from
// this source". A turn with all recall sources failing behaves identically
// to a turn with zero relevant memories.
package engine

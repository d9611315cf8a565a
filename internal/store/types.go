// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package store

import "time"

// Entry is a persisted memory record. The ID is assigned by the service at
// store time and is stable for the lifetime of the record.
type Entry struct {
	ID        string
	Content   string
	Type      string
	Subject   string
	Tags      []string
	AgentID   string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListOpts filters and pages an entry listing.
type ListOpts struct {
	Subject string
	Type    string
	Tag     string
	Limit   int
	Offset  int
}

// VectorResult is one hit from a similarity search. Score is a distance
// (lower means more similar); the service converts it to a relevance score.
type VectorResult struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// RecallCount pairs an entry with how often recall has surfaced it.
type RecallCount struct {
	EntryID string
	Count   int64
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package store

import "context"

// EntryStore manages memory entry records and their recall history.
type EntryStore interface {
	PutEntry(ctx context.Context, entry *Entry) error
	GetEntry(ctx context.Context, id string) (*Entry, error)
	ListEntries(ctx context.Context, opts ListOpts) ([]*Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	CountEntries(ctx context.Context) (int64, error)

	// SearchKeyword is the non-semantic fallback: substring match on content,
	// optionally scoped to a subject.
	SearchKeyword(ctx context.Context, text string, limit int, subject string) ([]*Entry, error)

	// LogRecall records that recall surfaced these entries, for importance
	// tracking. Best effort; failures do not abort the recall.
	LogRecall(ctx context.Context, ids []string) error
	RecallCounts(ctx context.Context, ids []string) ([]RecallCount, error)

	Close() error
}

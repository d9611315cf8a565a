// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package chromem provides an in-process storage backend on chromem-go,
// suitable for development and tests where no sqlite-vec build is wanted.
// Entries live in a guarded map; vectors live in a chromem collection.
package chromem

import (
	"context"
	"sort"
	"strings"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/mnemo-dev/mnemo/internal/store"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

const collectionName = "mnemo_vectors"

func init() {
	store.RegisterBackend("chromem", newStores)
}

func newStores(_ string, _ int) (store.EntryStore, store.VectorStore, error) {
	db := chromemgo.NewDB()

	// No embedding func: embeddings are always supplied by the caller.
	col, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "creating chromem collection: %w", err)
	}

	es := &EntryStore{
		entries: make(map[string]store.Entry),
		recalls: make(map[string]int64),
	}
	vs := &VectorStore{col: col}
	return es, vs, nil
}

// Compile-time interface checks.
var (
	_ store.EntryStore  = (*EntryStore)(nil)
	_ store.VectorStore = (*VectorStore)(nil)
)

// EntryStore keeps entries and recall counts in memory.
type EntryStore struct {
	mu      sync.RWMutex
	entries map[string]store.Entry
	recalls map[string]int64
}

func (s *EntryStore) PutEntry(_ context.Context, entry *store.Entry) error {
	if entry.ID == "" {
		return mnemoerr.New(mnemoerr.CodeStoreEntryInvalid, "entry id is required")
	}

	s.mu.Lock()
	s.entries[entry.ID] = *entry
	s.mu.Unlock()
	return nil
}

func (s *EntryStore) GetEntry(_ context.Context, id string) (*store.Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, mnemoerr.New(mnemoerr.CodeStoreEntryNotFound, "entry not found",
			mnemoerr.FieldEntryID(id))
	}
	return &entry, nil
}

func (s *EntryStore) ListEntries(_ context.Context, opts store.ListOpts) ([]*store.Entry, error) {
	s.mu.RLock()
	candidates := make([]store.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if opts.Subject != "" && entry.Subject != opts.Subject {
			continue
		}
		if opts.Type != "" && entry.Type != opts.Type {
			continue
		}
		if opts.Tag != "" && !hasTag(entry.Tags, opts.Tag) {
			continue
		}
		candidates = append(candidates, entry)
	}
	s.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if opts.Offset >= len(candidates) {
		return nil, nil
	}
	candidates = candidates[opts.Offset:]
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]*store.Entry, len(candidates))
	for i := range candidates {
		out[i] = &candidates[i]
	}
	return out, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s *EntryStore) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return mnemoerr.New(mnemoerr.CodeStoreEntryNotFound, "entry not found",
			mnemoerr.FieldEntryID(id))
	}
	delete(s.entries, id)
	delete(s.recalls, id)
	return nil
}

func (s *EntryStore) CountEntries(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}

func (s *EntryStore) SearchKeyword(_ context.Context, text string, limit int, subject string) ([]*store.Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	needle := strings.ToLower(text)

	s.mu.RLock()
	var hits []store.Entry
	for _, entry := range s.entries {
		if subject != "" && entry.Subject != subject {
			continue
		}
		if strings.Contains(strings.ToLower(entry.Content), needle) {
			hits = append(hits, entry)
		}
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].CreatedAt.After(hits[j].CreatedAt)
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]*store.Entry, len(hits))
	for i := range hits {
		out[i] = &hits[i]
	}
	return out, nil
}

func (s *EntryStore) LogRecall(_ context.Context, ids []string) error {
	s.mu.Lock()
	for _, id := range ids {
		s.recalls[id]++
	}
	s.mu.Unlock()
	return nil
}

func (s *EntryStore) RecallCounts(_ context.Context, ids []string) ([]store.RecallCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts []store.RecallCount
	for _, id := range ids {
		if n, ok := s.recalls[id]; ok {
			counts = append(counts, store.RecallCount{EntryID: id, Count: n})
		}
	}
	return counts, nil
}

func (s *EntryStore) Close() error { return nil }

// VectorStore wraps a chromem collection holding caller-supplied embeddings.
type VectorStore struct {
	mu  sync.Mutex
	col *chromemgo.Collection
}

func (v *VectorStore) Store(ctx context.Context, id string, embedding []float32, metadata map[string]any) error {
	meta := make(map[string]string, len(metadata))
	for k, val := range metadata {
		if s, ok := val.(string); ok {
			meta[k] = s
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.col.AddDocument(ctx, chromemgo.Document{
		ID:        id,
		Embedding: embedding,
		Metadata:  meta,
		// chromem requires non-empty content; the id stands in since entry
		// content lives in the entry store.
		Content: id,
	})
	if err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "adding chromem document %s: %w", id, err)
	}
	return nil
}

// Search queries the collection, clamping k to the collection size since
// chromem rejects nResults larger than the document count.
func (v *VectorStore) Search(ctx context.Context, query []float32, k int) ([]store.VectorResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	count := v.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := v.col.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "querying chromem: %w", err)
	}

	out := make([]store.VectorResult, 0, len(results))
	for _, res := range results {
		meta := make(map[string]any, len(res.Metadata))
		for key, val := range res.Metadata {
			meta[key] = val
		}
		out = append(out, store.VectorResult{
			ID: res.ID,
			// chromem reports cosine similarity (higher = closer); the store
			// contract is distance (lower = closer).
			Score:    float64(1 - res.Similarity),
			Metadata: meta,
		})
	}
	return out, nil
}

func (v *VectorStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.col.Delete(ctx, nil, nil, ids...); err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "deleting chromem documents: %w", err)
	}
	return nil
}

func (v *VectorStore) Close() error { return nil }

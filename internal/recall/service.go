// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package recall

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-dev/mnemo/internal/store"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Input limits for stored memories.
const (
	maxContentBytes = 100 * 1024
	maxTags         = 50
	maxTagLength    = 200
	maxSubjectLen   = 500

	defaultRecallLimit = 10
	maxRecallLimit     = 100

	// keywordFallbackScore is assigned to keyword-matched entries, which have
	// no similarity measure of their own.
	keywordFallbackScore = 0.5

	// frequentRecallThreshold is how many past recalls mark an entry as
	// standing context worth calling out.
	frequentRecallThreshold = 3
)

// Embedder is the slice of internal/embed the service needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Compile-time interface check.
var _ Client = (*Service)(nil)

// Service is the bundled local memory service: entries and vectors behind
// the same Client interface a remote memory daemon would serve.
type Service struct {
	entries store.EntryStore
	vectors store.VectorStore
	embed   Embedder
	logger  *slog.Logger
}

// NewService creates a Service over the given stores and embedder.
func NewService(entries store.EntryStore, vectors store.VectorStore, embed Embedder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		entries: entries,
		vectors: vectors,
		embed:   embed,
		logger:  logger,
	}
}

// Remember validates and persists a memory, then indexes its embedding.
// Embedding failures are tolerated: the entry is still stored and remains
// reachable through keyword search.
func (s *Service) Remember(ctx context.Context, req StoreRequest) (*MemoryEntry, error) {
	if err := validateStoreRequest(&req); err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &store.Entry{
		ID:        uuid.NewString(),
		Content:   req.Content,
		Type:      string(ParseMemoryType(string(req.Type))),
		Subject:   req.Subject,
		Tags:      req.Tags,
		AgentID:   req.AgentID,
		Source:    req.Source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.entries.PutEntry(ctx, entry); err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeRememberStoreFailure, "storing memory")
	}

	s.indexEmbedding(ctx, entry)

	return entryToMemory(entry), nil
}

// indexEmbedding embeds and stores the vector for an entry, best effort.
func (s *Service) indexEmbedding(ctx context.Context, entry *store.Entry) {
	vec, err := s.embed.Embed(ctx, entry.Content)
	if err != nil {
		s.logger.Warn("embedding failed, entry stored without vector index",
			"entry_id", entry.ID, "error", err)
		return
	}

	meta := map[string]any{"subject": entry.Subject}
	if err := s.vectors.Store(ctx, entry.ID, vec, meta); err != nil {
		s.logger.Warn("vector store failed, entry stored without vector index",
			"entry_id", entry.ID, "error", err)
	}
}

func validateStoreRequest(req *StoreRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return mnemoerr.New(mnemoerr.CodeRememberInputInvalid, "content is required")
	}
	if len(req.Content) > maxContentBytes {
		return mnemoerr.Errorf(mnemoerr.CodeRememberInputInvalid,
			"content exceeds %d bytes", maxContentBytes)
	}
	if len(req.Subject) > maxSubjectLen {
		return mnemoerr.Errorf(mnemoerr.CodeRememberInputInvalid,
			"subject exceeds %d characters", maxSubjectLen)
	}
	if len(req.Tags) > maxTags {
		return mnemoerr.Errorf(mnemoerr.CodeRememberInputInvalid,
			"at most %d tags allowed", maxTags)
	}

	seen := make(map[string]bool, len(req.Tags))
	deduped := req.Tags[:0]
	for _, tag := range req.Tags {
		if len(tag) > maxTagLength {
			return mnemoerr.Errorf(mnemoerr.CodeRememberInputInvalid,
				"tag exceeds %d characters", maxTagLength)
		}
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		deduped = append(deduped, tag)
	}
	req.Tags = deduped

	return nil
}

// Recall searches stored memories. A subject-scoped query lists that
// subject's entries at full score; otherwise the query text is embedded for
// semantic search, falling back to keyword matching when embedding fails or
// finds nothing.
func (s *Service) Recall(ctx context.Context, q Query) (*Result, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultRecallLimit
	}
	if limit > maxRecallLimit {
		limit = maxRecallLimit
	}

	if q.Subject != "" {
		return s.recallBySubject(ctx, q, limit)
	}
	if strings.TrimSpace(q.Text) == "" {
		return nil, mnemoerr.New(mnemoerr.CodeRecallQueryInvalid, "query text or subject is required")
	}
	return s.recallSemantic(ctx, q.Text, limit)
}

// recallBySubject returns the subject's entries at score 1.0. Scoping to a
// subject is an exact claim, not a similarity guess.
func (s *Service) recallBySubject(ctx context.Context, q Query, limit int) (*Result, error) {
	entries, err := s.entries.ListEntries(ctx, store.ListOpts{Subject: q.Subject, Limit: limit})
	if err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeRecallSearchFailure, "listing subject entries",
			mnemoerr.FieldSubject(q.Subject))
	}

	scored := make([]ScoredEntry, 0, len(entries))
	for _, entry := range entries {
		scored = append(scored, ScoredEntry{Entry: *entryToMemory(entry), Score: 1.0})
	}

	s.logRecall(ctx, scored)
	return &Result{Entries: scored, Method: "subject"}, nil
}

func (s *Service) recallSemantic(ctx context.Context, text string, limit int) (*Result, error) {
	vec, err := s.embed.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("embedding query failed, falling back to keyword search", "error", err)
		return s.recallKeyword(ctx, text, limit)
	}

	hits, err := s.vectors.Search(ctx, vec, limit)
	if err != nil {
		s.logger.Warn("vector search failed, falling back to keyword search", "error", err)
		return s.recallKeyword(ctx, text, limit)
	}
	if len(hits) == 0 {
		return s.recallKeyword(ctx, text, limit)
	}

	scored := make([]ScoredEntry, 0, len(hits))
	for _, hit := range hits {
		entry, err := s.entries.GetEntry(ctx, hit.ID)
		if err != nil {
			if mnemoerr.IsNotFound(err) {
				// Vector index can lag entry deletion; skip orphans.
				continue
			}
			return nil, mnemoerr.Wrap(err, mnemoerr.CodeRecallSearchFailure, "loading search hit",
				mnemoerr.FieldEntryID(hit.ID))
		}
		scored = append(scored, ScoredEntry{
			Entry: *entryToMemory(entry),
			Score: distanceToScore(hit.Score),
		})
	}
	if len(scored) == 0 {
		return s.recallKeyword(ctx, text, limit)
	}

	s.logRecall(ctx, scored)
	graph := s.graphContext(ctx, scored)
	return &Result{Entries: scored, GraphContext: graph, Method: "semantic"}, nil
}

func (s *Service) recallKeyword(ctx context.Context, text string, limit int) (*Result, error) {
	entries, err := s.entries.SearchKeyword(ctx, text, limit, "")
	if err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeRecallSearchFailure, "keyword search")
	}

	scored := make([]ScoredEntry, 0, len(entries))
	for _, entry := range entries {
		scored = append(scored, ScoredEntry{Entry: *entryToMemory(entry), Score: keywordFallbackScore})
	}

	s.logRecall(ctx, scored)
	return &Result{Entries: scored, Method: "keyword"}, nil
}

// distanceToScore maps a vector distance (0 = identical) onto (0, 1].
func distanceToScore(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1.0 / (1.0 + distance)
}

// logRecall records the recall event for importance tracking, best effort.
func (s *Service) logRecall(ctx context.Context, scored []ScoredEntry) {
	if len(scored) == 0 {
		return
	}
	ids := make([]string, len(scored))
	for i, se := range scored {
		ids[i] = se.Entry.ID
	}
	if err := s.entries.LogRecall(ctx, ids); err != nil {
		s.logger.Debug("recall logging failed", "error", err)
	}
}

// graphContext summarises which hits are frequently recalled, giving the
// engine standing-context prose to forward. Empty when nothing stands out.
func (s *Service) graphContext(ctx context.Context, scored []ScoredEntry) string {
	ids := make([]string, len(scored))
	for i, se := range scored {
		ids[i] = se.Entry.ID
	}

	counts, err := s.entries.RecallCounts(ctx, ids)
	if err != nil {
		s.logger.Debug("recall count lookup failed", "error", err)
		return ""
	}

	frequent := make(map[string]int64)
	for _, rc := range counts {
		if rc.Count >= frequentRecallThreshold {
			frequent[rc.EntryID] = rc.Count
		}
	}
	if len(frequent) == 0 {
		return ""
	}

	var b strings.Builder
	for _, se := range scored {
		if n, ok := frequent[se.Entry.ID]; ok {
			fmt.Fprintf(&b, "Frequently recalled (%dx): %s\n", n, se.Entry.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Forget removes a memory and its vector. Returns false without error when
// the id does not exist.
func (s *Service) Forget(ctx context.Context, id string) (bool, error) {
	if err := s.entries.DeleteEntry(ctx, id); err != nil {
		if mnemoerr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if err := s.vectors.Delete(ctx, []string{id}); err != nil {
		s.logger.Warn("deleting vector failed", "entry_id", id, "error", err)
	}
	return true, nil
}

// List exposes paged listing for the HTTP surface and CLI.
func (s *Service) List(ctx context.Context, opts store.ListOpts) ([]MemoryEntry, error) {
	entries, err := s.entries.ListEntries(ctx, opts)
	if err != nil {
		return nil, err
	}

	out := make([]MemoryEntry, len(entries))
	for i, entry := range entries {
		out[i] = *entryToMemory(entry)
	}
	return out, nil
}

// Count returns the number of stored memories.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.entries.CountEntries(ctx)
}

func entryToMemory(e *store.Entry) *MemoryEntry {
	return &MemoryEntry{
		ID:        e.ID,
		Content:   e.Content,
		Type:      MemoryType(e.Type),
		Subject:   e.Subject,
		Tags:      e.Tags,
		AgentID:   e.AgentID,
		Source:    e.Source,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

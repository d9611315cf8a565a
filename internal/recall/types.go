// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package recall

import "time"

// MemoryType classifies what kind of knowledge an entry holds.
type MemoryType string

const (
	TypeSemantic   MemoryType = "semantic"
	TypeEpisodic   MemoryType = "episodic"
	TypeProcedural MemoryType = "procedural"
	TypePreference MemoryType = "preference"
)

// ParseMemoryType maps a raw string to a MemoryType, defaulting to semantic.
func ParseMemoryType(s string) MemoryType {
	switch MemoryType(s) {
	case TypeEpisodic, TypeProcedural, TypePreference:
		return MemoryType(s)
	default:
		return TypeSemantic
	}
}

// MemoryEntry is a single stored memory as returned by the memory service.
// Entries are immutable inputs to the engine; the identifier is stable across
// recall calls for the same underlying fact.
type MemoryEntry struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Type      MemoryType `json:"type"`
	Subject   string     `json:"subject,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	AgentID   string     `json:"agent_id,omitempty"`
	Source    string     `json:"source,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasTag reports whether the entry carries the given tag, case-insensitively.
func (e *MemoryEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if equalFold(t, tag) {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the entry carries at least one of the given tags.
func (e *MemoryEntry) HasAnyTag(tags ...string) bool {
	for _, tag := range tags {
		if e.HasTag(tag) {
			return true
		}
	}
	return false
}

// equalFold is an ASCII-only case-insensitive comparison. Tags are plain
// ASCII identifiers; this avoids pulling unicode tables into the hot path.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// ScoredEntry pairs a MemoryEntry with the service-assigned relevance score.
// The score means "semantic similarity to the query"; it is conventionally
// near [0,1] but callers must not assume a bounded range.
type ScoredEntry struct {
	Entry MemoryEntry `json:"memory"`
	Score float64     `json:"score"`
}

// Query describes a single recall request.
type Query struct {
	Text    string
	Limit   int
	Subject string // optional; scopes the search to entries about one subject
}

// Result is the response to one recall query.
type Result struct {
	Entries []ScoredEntry
	// GraphContext is optional prose context assembled from the knowledge
	// graph around the top hits. Forwarded to the caller unchanged.
	GraphContext string
	// Method records how the search was satisfied ("semantic", "keyword",
	// "subject"). Informational only.
	Method string
}

// StoreRequest describes a memory to persist.
type StoreRequest struct {
	Content string
	Type    MemoryType
	Tags    []string
	Subject string
	AgentID string
	Source  string
}

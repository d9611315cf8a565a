// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/mnemo-dev/mnemo/internal/recall"
)

// mockClient is a scriptable recall.Client. Fan-out branches run
// concurrently, so all state is mutex-guarded.
type mockClient struct {
	mu sync.Mutex

	// queries records every recall issued, in arrival order.
	queries []recall.Query
	// respond maps a query's text to its canned result. Unmatched queries
	// get an empty result.
	respond map[string]*recall.Result
	// failAll makes every recall call return an error.
	failAll bool
	// remembered records every store request.
	remembered  []recall.StoreRequest
	rememberErr error
	forgotten   []string
	nextID      int
}

func newMockClient() *mockClient {
	return &mockClient{respond: make(map[string]*recall.Result)}
}

func (m *mockClient) Recall(_ context.Context, q recall.Query) (*recall.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, q)
	if m.failAll {
		return nil, fmt.Errorf("recall transport down")
	}
	if res, ok := m.respond[q.Text]; ok {
		return res, nil
	}
	return &recall.Result{}, nil
}

func (m *mockClient) Remember(_ context.Context, req recall.StoreRequest) (*recall.MemoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rememberErr != nil {
		return nil, m.rememberErr
	}

	m.remembered = append(m.remembered, req)
	m.nextID++
	return &recall.MemoryEntry{
		ID:      fmt.Sprintf("mem-%d", m.nextID),
		Content: req.Content,
		Type:    req.Type,
		Subject: req.Subject,
		Tags:    req.Tags,
	}, nil
}

func (m *mockClient) Forget(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.forgotten = append(m.forgotten, id)
	return true, nil
}

func (m *mockClient) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

func (m *mockClient) queryTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	texts := make([]string, len(m.queries))
	for i, q := range m.queries {
		texts[i] = q.Text
	}
	return texts
}

func (m *mockClient) rememberedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.remembered)
}

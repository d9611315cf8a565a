// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package recall_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mnemo-dev/mnemo/internal/embed/mock"
	"github.com/mnemo-dev/mnemo/internal/recall"
	"github.com/mnemo-dev/mnemo/internal/store"
	_ "github.com/mnemo-dev/mnemo/internal/store/chromem"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *recall.Service {
	t.Helper()
	es, vs, err := store.NewStores(&store.StorageConfig{Backend: "chromem"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = es.Close()
		_ = vs.Close()
	})
	return recall.NewService(es, vs, mock.New(), nil)
}

// failingEmbedder simulates an unreachable embedding provider.
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("provider unreachable")
}

func (failingEmbedder) Dimensions() int { return 384 }

func TestRemember_ValidatesInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  recall.StoreRequest
	}{
		{"empty content", recall.StoreRequest{}},
		{"whitespace content", recall.StoreRequest{Content: "   "}},
		{"oversized content", recall.StoreRequest{Content: strings.Repeat("x", 100*1024+1)}},
		{"oversized subject", recall.StoreRequest{Content: "ok", Subject: strings.Repeat("s", 501)}},
		{"too many tags", recall.StoreRequest{Content: "ok", Tags: make([]string, 51)}},
		{"oversized tag", recall.StoreRequest{Content: "ok", Tags: []string{strings.Repeat("t", 201)}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Remember(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, mnemoerr.IsInvalidInput(err))
		})
	}
}

func TestRemember_DedupesTagsAndAssignsID(t *testing.T) {
	svc := newTestService(t)

	entry, err := svc.Remember(context.Background(), recall.StoreRequest{
		Content: "always run tests first",
		Tags:    []string{"policy", "policy", "", "ci"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, []string{"policy", "ci"}, entry.Tags)
	assert.Equal(t, recall.TypeSemantic, entry.Type)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestRecall_SemanticFindsExactContent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stored, err := svc.Remember(ctx, recall.StoreRequest{Content: "the user prefers dark mode"})
	require.NoError(t, err)
	_, err = svc.Remember(ctx, recall.StoreRequest{Content: "deploys go through staging"})
	require.NoError(t, err)

	// The mock embedder is deterministic, so identical text embeds
	// identically and ranks first with a perfect score.
	res, err := svc.Recall(ctx, recall.Query{Text: "the user prefers dark mode"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Entries)
	assert.Equal(t, "semantic", res.Method)
	assert.Equal(t, stored.ID, res.Entries[0].Entry.ID)
	assert.InDelta(t, 1.0, res.Entries[0].Score, 1e-3)
}

func TestRecall_SubjectScopedScoresFull(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Remember(ctx, recall.StoreRequest{Content: "prefers tabs", Subject: "user"})
	require.NoError(t, err)
	_, err = svc.Remember(ctx, recall.StoreRequest{Content: "staging first", Subject: "project"})
	require.NoError(t, err)

	res, err := svc.Recall(ctx, recall.Query{Text: "anything", Subject: "user"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "subject", res.Method)
	assert.Equal(t, "prefers tabs", res.Entries[0].Entry.Content)
	assert.InDelta(t, 1.0, res.Entries[0].Score, 1e-9)
}

func TestRecall_RejectsEmptyQuery(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Recall(context.Background(), recall.Query{Text: "  "})
	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeRecallQueryInvalid, mnemoerr.CodeOf(err))
}

func TestRecall_KeywordFallbackWhenEmbeddingFails(t *testing.T) {
	es, vs, err := store.NewStores(&store.StorageConfig{Backend: "chromem"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = es.Close()
		_ = vs.Close()
	})
	svc := recall.NewService(es, vs, failingEmbedder{}, nil)
	ctx := context.Background()

	// Stored without a vector (embedding fails) but reachable by keyword.
	_, err = svc.Remember(ctx, recall.StoreRequest{Content: "rotate API keys quarterly"})
	require.NoError(t, err)

	res, err := svc.Recall(ctx, recall.Query{Text: "API keys"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "keyword", res.Method)
	assert.InDelta(t, 0.5, res.Entries[0].Score, 1e-9)
}

func TestRecall_GraphContextFlagsFrequentEntries(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Remember(ctx, recall.StoreRequest{Content: "never deploy on fridays"})
	require.NoError(t, err)

	var res *recall.Result
	for i := 0; i < 3; i++ {
		res, err = svc.Recall(ctx, recall.Query{Text: "never deploy on fridays"})
		require.NoError(t, err)
	}

	assert.Contains(t, res.GraphContext, "Frequently recalled")
	assert.Contains(t, res.GraphContext, "never deploy on fridays")
}

func TestForget(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Remember(ctx, recall.StoreRequest{Content: "temporary note"})
	require.NoError(t, err)

	ok, err := svc.Forget(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Forget(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListAndCount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Remember(ctx, recall.StoreRequest{Content: "one", Subject: "project"})
	require.NoError(t, err)
	_, err = svc.Remember(ctx, recall.StoreRequest{Content: "two", Subject: "user"})
	require.NoError(t, err)

	entries, err := svc.List(ctx, store.ListOpts{Subject: "project"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "one", entries[0].Content)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package google

import (
	"context"

	"google.golang.org/genai"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

const (
	defaultModel = "gemini-embedding-001"
	// gemini-embedding-001 produces 768-dimensional vectors.
	dimensions = 768
)

// Config holds Google embedder configuration.
type Config struct {
	APIKey string
	Model  string // empty uses gemini-embedding-001
}

// Embedder generates embeddings via the Gemini API.
type Embedder struct {
	client *genai.Client
	model  string
}

// New creates a Google embedder. Returns an error if the API key is missing.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, mnemoerr.New(mnemoerr.CodeEmbedConfigInvalid, "google: missing api key",
			mnemoerr.FieldProvider("google"))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeEmbedConfigInvalid, "google: creating genai client",
			mnemoerr.FieldProvider("google"))
	}

	return &Embedder{client: client, model: model}, nil
}

// Embed requests one embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeEmbedUpstreamFailure, "google embedding request failed",
			mnemoerr.FieldProvider("google"))
	}
	if len(result.Embeddings) == 0 {
		return nil, mnemoerr.New(mnemoerr.CodeEmbedUpstreamFailure, "google returned no embeddings",
			mnemoerr.FieldProvider("google"))
	}

	return result.Embeddings[0].Values, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return dimensions
}

// Close is a no-op; the genai client holds no persistent resources.
func (e *Embedder) Close() error { return nil }

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

const defaultModel = "text-embedding-3-small"

// modelDimensions maps known embedding models to their vector sizes.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds OpenAI embedder configuration.
type Config struct {
	APIKey  string
	Model   string // empty uses text-embedding-3-small
	BaseURL string // optional, useful for testing against a mock server
}

// Embedder generates embeddings via the OpenAI embeddings API.
type Embedder struct {
	client     openaisdk.Client
	model      string
	dimensions int
}

// New creates an OpenAI embedder. Returns an error if the API key is missing.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, mnemoerr.New(mnemoerr.CodeEmbedConfigInvalid, "openai: missing api key",
			mnemoerr.FieldProvider("openai"))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	dims, ok := modelDimensions[model]
	if !ok {
		return nil, mnemoerr.New(mnemoerr.CodeEmbedConfigInvalid, "openai: unknown embedding model "+model,
			mnemoerr.FieldProvider("openai"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Embedder{
		client:     openaisdk.NewClient(opts...),
		model:      model,
		dimensions: dims,
	}, nil
}

// Embed requests one embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openaisdk.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeEmbedUpstreamFailure, "openai embedding request failed",
			mnemoerr.FieldProvider("openai"))
	}
	if len(resp.Data) == 0 {
		return nil, mnemoerr.New(mnemoerr.CodeEmbedUpstreamFailure, "openai returned no embeddings",
			mnemoerr.FieldProvider("openai"))
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Dimensions returns the embedding vector size for the configured model.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the SDK client holds no persistent resources.
func (e *Embedder) Close() error { return nil }

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package embed turns text into embedding vectors for semantic recall.
// Providers are small subpackages behind one factory; the service only sees
// the Embedder interface.
package embed

import (
	"context"

	"github.com/mnemo-dev/mnemo/internal/embed/google"
	"github.com/mnemo-dev/mnemo/internal/embed/mock"
	"github.com/mnemo-dev/mnemo/internal/embed/onnx"
	"github.com/mnemo-dev/mnemo/internal/embed/openai"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}

// Config selects and configures an embedding provider.
type Config struct {
	Provider string // "openai", "google", "onnx", or "mock".
	Model    string // Provider model name; empty uses the provider default.
	APIKey   string // Resolved API key for hosted providers.
	Endpoint string // Optional base URL override (openai only).

	// Local ONNX model files. TokenizerPath defaults to tokenizer.json next
	// to the model.
	ModelPath     string
	TokenizerPath string
}

// New creates the configured embedder.
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return openai.New(openai.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.Endpoint,
		})
	case "google":
		return google.New(google.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
	case "onnx":
		return onnx.New(onnx.Config{
			ModelPath:     cfg.ModelPath,
			TokenizerPath: cfg.TokenizerPath,
		})
	case "mock":
		return mock.New(), nil
	default:
		return nil, mnemoerr.New(mnemoerr.CodeEmbedProviderUnsupported,
			"unsupported embedding provider", mnemoerr.FieldProvider(cfg.Provider))
	}
}

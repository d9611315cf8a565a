// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package embed_test

import (
	"testing"

	"github.com/mnemo-dev/mnemo/internal/embed"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := embed.New(embed.Config{Provider: "cohere"})
	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeEmbedProviderUnsupported, mnemoerr.CodeOf(err))
}

func TestNew_HostedProvidersRequireAPIKey(t *testing.T) {
	for _, provider := range []string{"openai", "google"} {
		_, err := embed.New(embed.Config{Provider: provider})
		require.Error(t, err, provider)
		assert.Equal(t, mnemoerr.CodeEmbedConfigInvalid, mnemoerr.CodeOf(err), provider)
	}
}

func TestNew_OnnxRequiresModelPath(t *testing.T) {
	_, err := embed.New(embed.Config{Provider: "onnx"})
	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeEmbedConfigInvalid, mnemoerr.CodeOf(err))
}

func TestNew_Mock(t *testing.T) {
	e, err := embed.New(embed.Config{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, 384, e.Dimensions())
}

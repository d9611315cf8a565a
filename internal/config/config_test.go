// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-dev/mnemo/internal/config"
)

// validConfig returns a minimal config that passes all validation.
func validConfig() *config.Config {
	return &config.Config{
		Networking: config.NetworkingConfig{
			Listen: "127.0.0.1:18790",
		},
		Storage: config.StorageConfig{
			Backend: "sqlite",
		},
		Embedding: config.EmbeddingConfig{
			Provider: "onnx",
		},
		Recall: config.RecallConfig{
			GeneralLimit:   10,
			PreflightLimit: 5,
			MinScore:       0.35,
			ChecklistMax:   5,
			ProjectSubject: "project",
		},
		Telemetry: config.TelemetryConfig{
			FlushTurns:    25,
			FlushInterval: 10 * time.Minute,
		},
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:18790", cfg.Networking.Listen)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "onnx", cfg.Embedding.Provider)
	assert.Equal(t, 10, cfg.Recall.GeneralLimit)
	assert.Equal(t, 5, cfg.Recall.PreflightLimit)
	assert.InDelta(t, 0.35, cfg.Recall.MinScore, 1e-9)
	assert.Equal(t, "project", cfg.Recall.ProjectSubject)
	assert.Equal(t, 25, cfg.Telemetry.FlushTurns)
	assert.Equal(t, 10*time.Minute, cfg.Telemetry.FlushInterval)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mnemo.yaml")

	content := `
networking:
  listen: "0.0.0.0:9999"
storage:
  backend: chromem
embedding:
  provider: mock
telemetry:
  flush_interval: 30s
`
	err := os.WriteFile(cfgPath, []byte(content), 0o600)
	require.NoError(t, err)

	cfg, err := config.Load(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Networking.Listen)
	assert.Equal(t, "chromem", cfg.Storage.Backend)
	assert.Equal(t, "mock", cfg.Embedding.Provider)
	assert.Equal(t, 30*time.Second, cfg.Telemetry.FlushInterval)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MNEMO_NETWORKING_LISTEN", "10.0.0.1:8080")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Networking.Listen)
}

func TestLoad_InvalidConfigFailsFast(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mnemo.yaml")

	content := `
networking:
  listen: "not-valid"
storage:
  backend: "mysql"
`
	err := os.WriteFile(cfgPath, []byte(content), 0o600)
	require.NoError(t, err)

	_, err = config.Load(cfgPath, nil)
	require.Error(t, err, "Load should fail with invalid config")
	assert.Contains(t, err.Error(), "validating config")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	errs := cfg.Validate()
	assert.Empty(t, errs, "valid config should produce no validation errors")
}

func TestValidate_NetworkingListen(t *testing.T) {
	tests := []struct {
		name    string
		listen  string
		wantErr bool
	}{
		{"valid address", "127.0.0.1:8080", false},
		{"valid all interfaces", "0.0.0.0:9999", false},
		{"valid ipv6", "[::1]:8080", false},
		{"empty listen", "", true},
		{"missing port", "127.0.0.1", true},
		{"invalid port zero", "127.0.0.1:0", true},
		{"port too high", "127.0.0.1:70000", true},
		{"not a number", "127.0.0.1:abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Networking.Listen = tt.listen
			errs := cfg.Validate()
			if tt.wantErr {
				require.NotEmpty(t, errs)
				assert.Contains(t, errs[0].Error(), "networking.listen")
			} else {
				for _, err := range errs {
					assert.NotContains(t, err.Error(), "networking.listen")
				}
			}
		})
	}
}

func TestValidate_StorageBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"valid sqlite", "sqlite", false},
		{"valid chromem", "chromem", false},
		{"invalid backend", "postgres", true},
		{"empty backend", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Storage.Backend = tt.backend
			errs := cfg.Validate()
			if tt.wantErr {
				require.NotEmpty(t, errs)
				assert.Contains(t, errs[0].Error(), "storage.backend")
			} else {
				for _, err := range errs {
					assert.NotContains(t, err.Error(), "storage.backend")
				}
			}
		})
	}
}

func TestValidate_EmbeddingProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{"valid onnx", "onnx", false},
		{"valid openai", "openai", false},
		{"valid google", "google", false},
		{"valid mock", "mock", false},
		{"invalid provider", "cohere", true},
		{"empty provider", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Embedding.Provider = tt.provider
			errs := cfg.Validate()
			if tt.wantErr {
				require.NotEmpty(t, errs)
				assert.Contains(t, errs[0].Error(), "embedding.provider")
			} else {
				for _, err := range errs {
					assert.NotContains(t, err.Error(), "embedding.provider")
				}
			}
		})
	}
}

func TestValidate_Recall(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"zero general limit", func(c *config.Config) { c.Recall.GeneralLimit = 0 }, "recall.general_limit"},
		{"negative preflight limit", func(c *config.Config) { c.Recall.PreflightLimit = -1 }, "recall.preflight_limit"},
		{"min score above one", func(c *config.Config) { c.Recall.MinScore = 1.5 }, "recall.min_score"},
		{"negative min score", func(c *config.Config) { c.Recall.MinScore = -0.1 }, "recall.min_score"},
		{"zero checklist max", func(c *config.Config) { c.Recall.ChecklistMax = 0 }, "recall.checklist_max"},
		{"empty project subject", func(c *config.Config) { c.Recall.ProjectSubject = "" }, "recall.project_subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tt.wantErr)
		})
	}
}

func TestValidate_Telemetry(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.FlushTurns = 0
	errs := cfg.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "telemetry.flush_turns")

	cfg = validConfig()
	cfg.Telemetry.FlushInterval = 0
	errs = cfg.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "telemetry.flush_interval")
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &config.Config{
		Networking: config.NetworkingConfig{Listen: ""},
		Storage:    config.StorageConfig{Backend: "postgres"},
		Embedding:  config.EmbeddingConfig{Provider: "bogus"},
	}

	errs := cfg.Validate()
	// Should collect multiple errors, not stop at the first one
	assert.GreaterOrEqual(t, len(errs), 5, "expected at least 5 validation errors, got %d: %v", len(errs), errs)
}

func TestDefaultConfigYAML_Parses(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mnemo.yaml")
	require.NoError(t, os.WriteFile(cfgPath, config.DefaultConfigYAML, 0o600))

	cfg, err := config.Load(cfgPath, nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Validate())
}

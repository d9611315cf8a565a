// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package config

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mnemo-dev/mnemo/internal/secrets"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Config is the top-level Mnemo configuration.
type Config struct {
	Networking NetworkingConfig `mapstructure:"networking"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Recall     RecallConfig     `mapstructure:"recall"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Policy     PolicyConfig     `mapstructure:"policy"`
}

// NetworkingConfig controls how the daemon listens for connections.
type NetworkingConfig struct {
	Listen string `mapstructure:"listen"`
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Backend          string `mapstructure:"backend"`
	Path             string `mapstructure:"path"`
	VectorDimensions int    `mapstructure:"vector_dimensions"`
}

// EmbeddingConfig selects and configures the embedding provider. The API key
// may be a keyring:// or env:// reference; it is resolved at load time.
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	Endpoint  string `mapstructure:"endpoint"`
	ModelPath string `mapstructure:"model_path"`
}

// RecallConfig tunes the turn engine's fusion pass.
type RecallConfig struct {
	GeneralLimit   int     `mapstructure:"general_limit"`
	PreflightLimit int     `mapstructure:"preflight_limit"`
	MinScore       float64 `mapstructure:"min_score"`
	ChecklistMax   int     `mapstructure:"checklist_max"`
	ProjectSubject string  `mapstructure:"project_subject"`
}

// TelemetryConfig controls the engine's self-observation sampler.
type TelemetryConfig struct {
	FlushTurns    int           `mapstructure:"flush_turns"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// PolicyConfig points at an optional rules file that pre-warms the policy
// cache at startup.
type PolicyConfig struct {
	SeedFile string `mapstructure:"seed_file"`
}

// defaultDataDir returns ~/.local/share/mnemo, falling back to a relative
// directory when the home directory cannot be resolved.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mnemo-data"
	}
	return filepath.Join(home, ".local", "share", "mnemo")
}

// SetDefaults applies Mnemo's default configuration to a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("networking.listen", "127.0.0.1:18790")
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", defaultDataDir())
	v.SetDefault("embedding.provider", "onnx")
	v.SetDefault("embedding.model_path", filepath.Join(defaultDataDir(), "models", "model.onnx"))
	v.SetDefault("recall.general_limit", 10)
	v.SetDefault("recall.preflight_limit", 5)
	v.SetDefault("recall.min_score", 0.35)
	v.SetDefault("recall.checklist_max", 5)
	v.SetDefault("recall.project_subject", "project")
	v.SetDefault("telemetry.flush_turns", 25)
	v.SetDefault("telemetry.flush_interval", 10*time.Minute)
}

// SetupEnv enables MNEMO_-prefixed environment overrides on a Viper instance
// (for example MNEMO_NETWORKING_LISTEN).
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("MNEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides. When a secret store is supplied, keyring://
// and env:// references are resolved before unmarshalling.
func Load(path string, store secrets.Store) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, mnemoerr.Errorf(mnemoerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	if store != nil {
		secrets.ResolveViperSecrets(v, store)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateRecall()...)
	errs = append(errs, c.validateTelemetry()...)

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue, "config: networking.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Networking.Listen)
	if err != nil {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: networking.listen must be a valid host:port address, got %q: %w",
			c.Networking.Listen, err,
		))
		return errs
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: networking.listen port must be a number, got %q",
			portStr,
		))
	} else if port < 1 || port > 65535 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: networking.listen port must be between 1 and 65535, got %d",
			port,
		))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true, "chromem": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite, chromem], got %q",
			c.Storage.Backend,
		))
	}

	if c.Storage.VectorDimensions < 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: storage.vector_dimensions must not be negative, got %d",
			c.Storage.VectorDimensions,
		))
	}

	return errs
}

func (c *Config) validateEmbedding() []error {
	var errs []error

	validProviders := map[string]bool{"openai": true, "google": true, "onnx": true, "mock": true}
	if !validProviders[c.Embedding.Provider] {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: embedding.provider must be one of [openai, google, onnx, mock], got %q",
			c.Embedding.Provider,
		))
	}

	return errs
}

func (c *Config) validateRecall() []error {
	var errs []error

	if c.Recall.GeneralLimit <= 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: recall.general_limit must be greater than 0, got %d", c.Recall.GeneralLimit))
	}
	if c.Recall.PreflightLimit <= 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: recall.preflight_limit must be greater than 0, got %d", c.Recall.PreflightLimit))
	}
	if c.Recall.MinScore < 0 || c.Recall.MinScore > 1 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: recall.min_score must be between 0 and 1, got %g", c.Recall.MinScore))
	}
	if c.Recall.ChecklistMax <= 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: recall.checklist_max must be greater than 0, got %d", c.Recall.ChecklistMax))
	}
	if c.Recall.ProjectSubject == "" {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: recall.project_subject must not be empty"))
	}

	return errs
}

func (c *Config) validateTelemetry() []error {
	var errs []error

	if c.Telemetry.FlushTurns <= 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: telemetry.flush_turns must be greater than 0, got %d", c.Telemetry.FlushTurns))
	}
	if c.Telemetry.FlushInterval <= 0 {
		errs = append(errs, mnemoerr.Errorf(mnemoerr.CodeConfigValidateInvalidValue,
			"config: telemetry.flush_interval must be greater than 0, got %s", c.Telemetry.FlushInterval))
	}

	return errs
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mnemo-dev/mnemo/internal/config"
	"github.com/mnemo-dev/mnemo/internal/embed"
	"github.com/mnemo-dev/mnemo/internal/engine"
	"github.com/mnemo-dev/mnemo/internal/recall"
	"github.com/mnemo-dev/mnemo/internal/secrets"
	"github.com/mnemo-dev/mnemo/internal/server"
	"github.com/mnemo-dev/mnemo/internal/store"

	// Storage backends register themselves at init.
	_ "github.com/mnemo-dev/mnemo/internal/store/chromem"
	_ "github.com/mnemo-dev/mnemo/internal/store/sqlite"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the mnemo daemon",
		Long:  "Load configuration, open storage, initialize the embedding provider and turn engine, and start the HTTP server.",
		RunE:  runStart,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("networking.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runStart(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = viper.ConfigFileUsed()
	}

	setupLogging(viper.GetBool("verbose"))

	cfg, err := config.Load(cfgPath, secrets.NewKeyringStore())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	config.WarnInsecurePermissions(cfgPath)

	// Apply any flag/env overrides that Viper resolved.
	if listen := viper.GetString("networking.listen"); listen != "" {
		cfg.Networking.Listen = listen
	}

	logger := slog.Default()

	embedder, err := embed.New(embed.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		APIKey:    cfg.Embedding.APIKey,
		Endpoint:  cfg.Embedding.Endpoint,
		ModelPath: cfg.Embedding.ModelPath,
	})
	if err != nil {
		return fmt.Errorf("initializing embedding provider: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	dims := cfg.Storage.VectorDimensions
	if dims <= 0 {
		dims = embedder.Dimensions()
	}

	entries, vectors, err := store.NewStores(&store.StorageConfig{
		Backend:          cfg.Storage.Backend,
		Path:             cfg.Storage.Path,
		VectorDimensions: dims,
	})
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		_ = vectors.Close()
		_ = entries.Close()
	}()

	svc := recall.NewService(entries, vectors, embedder, logger)

	telemetry := engine.NewTelemetry(svc, cfg.Telemetry.FlushTurns, cfg.Telemetry.FlushInterval, logger)
	eng := engine.New(svc, engine.Config{
		GeneralLimit:   cfg.Recall.GeneralLimit,
		PreflightLimit: cfg.Recall.PreflightLimit,
		MinScore:       cfg.Recall.MinScore,
		ChecklistMax:   cfg.Recall.ChecklistMax,
		ProjectSubject: cfg.Recall.ProjectSubject,
	}, nil, telemetry, logger)

	if cfg.Policy.SeedFile != "" {
		rules, err := engine.LoadSeedRules(cfg.Policy.SeedFile)
		if err != nil {
			return fmt.Errorf("loading policy seed: %w", err)
		}
		eng.WarmPolicyCache(rules)
		logger.Info("policy cache seeded", "rules", len(rules), "file", cfg.Policy.SeedFile)
	}

	srv, err := server.New(server.Config{ListenAddr: cfg.Networking.Listen})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.RegisterServices(&server.Services{Engine: eng, Memory: svc})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mnemo daemon starting",
		"listen", cfg.Networking.Listen,
		"backend", cfg.Storage.Backend,
		"embedding", cfg.Embedding.Provider,
		"dimensions", dims,
	)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	logger.Info("mnemo daemon stopped")
	return nil
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

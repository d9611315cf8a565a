// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mnemo-dev/mnemo/internal/engine"
	"github.com/mnemo-dev/mnemo/internal/recall"
	"github.com/mnemo-dev/mnemo/internal/server"
	"github.com/mnemo-dev/mnemo/internal/store"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec creates a server with all routes registered and extracts the
// OpenAPI spec that huma generates from the Go type annotations.
func generateSpec() ([]byte, error) {
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeCLISetupFailure, "creating server: %w", err)
	}

	// No-op service stubs so all routes are registered for schema discovery.
	// Handlers are never invoked during spec generation.
	eng := engine.New(&stubClient{}, engine.Config{}, nil, nil, nil)
	srv.RegisterServices(&server.Services{Engine: eng, Memory: &stubMemory{}})

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}

// No-op stubs for spec generation. Methods are never called.

type stubClient struct{}

func (s *stubClient) Recall(context.Context, recall.Query) (*recall.Result, error) {
	return &recall.Result{}, nil
}

func (s *stubClient) Remember(context.Context, recall.StoreRequest) (*recall.MemoryEntry, error) {
	return &recall.MemoryEntry{}, nil
}

func (s *stubClient) Forget(context.Context, string) (bool, error) { return false, nil }

type stubMemory struct{}

func (s *stubMemory) Recall(context.Context, recall.Query) (*recall.Result, error) {
	return &recall.Result{}, nil
}

func (s *stubMemory) List(context.Context, store.ListOpts) ([]recall.MemoryEntry, error) {
	return nil, nil
}

func (s *stubMemory) Count(context.Context) (int64, error) { return 0, nil }

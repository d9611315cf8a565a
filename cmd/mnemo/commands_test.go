// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-dev/mnemo/internal/secrets"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// execute runs the root command with args in an isolated environment and
// returns captured stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

// testDaemon starts an httptest server and returns its host:port address.
func testDaemon(t *testing.T, handler http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mnemo dev")
}

func TestStatusCmd_DaemonNotRunning(t *testing.T) {
	// Port 1 is never listening.
	out, err := execute(t, "status", "--address", "127.0.0.1:1")
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}

func TestStatusCmd(t *testing.T) {
	addr := testDaemon(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"memories": 7,
			"telemetry": map[string]any{
				"turns": 3, "recalls": 9, "preflights": 1, "injected": 4,
			},
		})
	}))

	out, err := execute(t, "status", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "memories:   7")
	assert.Contains(t, out, "recalls:    9")
}

func TestRememberCmd(t *testing.T) {
	var got map[string]any
	addr := testDaemon(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/memories", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "mem-1",
			"content": got["content"],
			"type":    got["type"],
			"tags":    got["tags"],
		})
	}))

	out, err := execute(t, "remember", "never", "deploy", "on", "fridays",
		"--address", addr, "--tag", "policy", "--type", "preference")
	require.NoError(t, err)

	assert.Equal(t, "never deploy on fridays", got["content"])
	assert.Equal(t, "preference", got["type"])
	assert.Contains(t, out, "mem-1")
	assert.Contains(t, out, "policy")
}

func TestRecallCmd(t *testing.T) {
	addr := testDaemon(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/memories/recall", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entries": []map[string]any{
				{"memory": map[string]any{"id": "m1", "content": "postgres is primary"}, "score": 0.91},
			},
			"method": "semantic",
		})
	}))

	out, err := execute(t, "recall", "database", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "postgres is primary")
	assert.Contains(t, out, "semantic")
}

func TestRecallCmd_NoResults(t *testing.T) {
	addr := testDaemon(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"entries": []any{}, "method": "semantic"})
	}))

	out, err := execute(t, "recall", "nothing", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "No memories found")
}

func TestForgetCmd(t *testing.T) {
	addr := testDaemon(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/v1/memories/mem-9", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"deleted": true})
	}))

	out, err := execute(t, "forget", "mem-9", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot mem-9")
}

func TestForgetCmd_NotFound(t *testing.T) {
	addr := testDaemon(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"title":"Not Found"}`, http.StatusNotFound)
	}))

	_, err := execute(t, "forget", "absent", "--address", addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestListCmd(t *testing.T) {
	addr := testDaemon(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/memories", r.URL.Path)
		assert.Equal(t, "policy", r.URL.Query().Get("tag"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"memories": []map[string]any{
				{"id": "m1", "content": "use staging first", "tags": []string{"policy"}},
			},
		})
	}))

	out, err := execute(t, "list", "--tag", "policy", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "use staging first")
}

// mapSecretStore is an in-memory secrets.Store for command tests.
type mapSecretStore struct {
	values map[string]string
}

func (m *mapSecretStore) Store(service, key, value string) error {
	m.values[service+"/"+key] = value
	return nil
}

func (m *mapSecretStore) Retrieve(service, key string) (string, error) {
	v, ok := m.values[service+"/"+key]
	if !ok {
		return "", mnemoerr.Errorf(mnemoerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
	}
	return v, nil
}

func (m *mapSecretStore) Delete(service, key string) error {
	if _, ok := m.values[service+"/"+key]; !ok {
		return mnemoerr.Errorf(mnemoerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
	}
	delete(m.values, service+"/"+key)
	return nil
}

func (m *mapSecretStore) List(service string) ([]string, error) {
	var keys []string
	prefix := service + "/"
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
	}
	return keys, nil
}

func withMapSecretStore(t *testing.T) *mapSecretStore {
	t.Helper()
	store := &mapSecretStore{values: make(map[string]string)}
	orig := secretStoreFactory
	secretStoreFactory = func() secrets.Store { return store }
	t.Cleanup(func() { secretStoreFactory = orig })
	return store
}

func TestSecretCommands(t *testing.T) {
	store := withMapSecretStore(t)

	out, err := execute(t, "secret", "set", "openai-api-key", "sk-test")
	require.NoError(t, err)
	assert.Contains(t, out, "keyring://mnemo/openai-api-key")
	assert.Equal(t, "sk-test", store.values["mnemo/openai-api-key"])

	out, err = execute(t, "secret", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "openai-api-key")

	out, err = execute(t, "secret", "delete", "openai-api-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted secret")

	_, err = execute(t, "secret", "delete", "openai-api-key")
	require.Error(t, err)
	assert.True(t, mnemoerr.HasCode(err, mnemoerr.CodeSecretNotFound))
}

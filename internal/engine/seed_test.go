// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mnemo-dev/mnemo/internal/engine"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeedRules(t *testing.T) {
	path := writeSeed(t, `
rules:
  - id: post-deploy-smoke
    content: Run the smoke suite after every deploy
    subject: project
    tags: [policy, deploy]
  - id: squash-commits
    content: Squash before merging
`)

	rules, err := engine.LoadSeedRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "post-deploy-smoke", rules[0].ID)
	assert.Equal(t, "project", rules[0].Subject)
	assert.InDelta(t, 1.0, rules[0].Score, 1e-9)
	assert.Equal(t, []string{"policy", "deploy"}, rules[0].Tags)

	// Untagged rules get "policy" so they qualify for checklists.
	assert.Equal(t, []string{"policy"}, rules[1].Tags)
}

func TestLoadSeedRules_MissingFile(t *testing.T) {
	_, err := engine.LoadSeedRules(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeEnginePolicySeedInvalid, mnemoerr.CodeOf(err))
}

func TestLoadSeedRules_RejectsIncompleteRule(t *testing.T) {
	path := writeSeed(t, `
rules:
  - content: no id here
`)
	_, err := engine.LoadSeedRules(path)
	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeEnginePolicySeedInvalid, mnemoerr.CodeOf(err))
}

func TestLoadSeedRules_RejectsMalformedYAML(t *testing.T) {
	path := writeSeed(t, "rules: [unclosed")
	_, err := engine.LoadSeedRules(path)
	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeEnginePolicySeedInvalid, mnemoerr.CodeOf(err))
}

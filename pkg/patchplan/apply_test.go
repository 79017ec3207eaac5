// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package patchplan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLocalPatch_GuardStrategyInsertsNullCheck(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	result, err := ApplyLocalPatch(repo, root, "app.py", "main", "validate the input", ApplyOptions{})
	require.NoError(t, err)

	assert.Equal(t, StrategyGuard, result.Strategy)
	assert.False(t, result.NoChange)
	assert.Contains(t, result.InsertedText, guardMarker)
	assert.Contains(t, result.Diff, "+")

	after, readErr := os.ReadFile(filepath.Join(root, "app.py"))
	require.NoError(t, readErr)
	assert.Contains(t, string(after), guardMarker)
}

func TestApplyLocalPatch_GuardStrategyIsIdempotent(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	_, err := ApplyLocalPatch(repo, root, "app.py", "main", "validate the input", ApplyOptions{})
	require.NoError(t, err)

	second, err := ApplyLocalPatch(repo, root, "app.py", "main", "validate again", ApplyOptions{})
	require.NoError(t, err)
	assert.True(t, second.NoChange)
}

func TestApplyLocalPatch_InjectStrategyWhenNoGuardableParam(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	result, err := ApplyLocalPatch(repo, root, "app.py", "helper", "implement this", ApplyOptions{})
	require.NoError(t, err)

	assert.Equal(t, StrategyInject, result.Strategy)
	assert.Contains(t, result.InsertedText, injectMarker)
}

func TestApplyLocalPatch_DryRunDoesNotWriteFile(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	before, err := os.ReadFile(filepath.Join(root, "app.py"))
	require.NoError(t, err)

	result, err := ApplyLocalPatch(repo, root, "app.py", "main", "validate input", ApplyOptions{DryRun: true})
	require.NoError(t, err)
	assert.False(t, result.NoChange)
	assert.NotEmpty(t, result.Diff)

	after, err := os.ReadFile(filepath.Join(root, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestApplyLocalPatch_UnknownFunctionErrors(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	_, err := ApplyLocalPatch(repo, root, "app.py", "does_not_exist", "fix", ApplyOptions{})
	assert.Error(t, err)
}

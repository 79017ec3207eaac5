// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package patchplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHistory_MissingFileReturnsEmpty(t *testing.T) {
	root := t.TempDir()
	h, err := LoadHistory(root)
	require.NoError(t, err)
	assert.Empty(t, h.Entries)
}

func TestAppend_PersistsAndAccumulates(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, Append(root, HistoryEntry{Timestamp: "2026-01-01T00:00:00Z", File: "app.py", TargetFunction: "app.main", Strategy: StrategyGuard}))
	require.NoError(t, Append(root, HistoryEntry{Timestamp: "2026-01-01T00:05:00Z", File: "app.py", TargetFunction: "app.helper", Strategy: StrategyInject}))

	h, err := LoadHistory(root)
	require.NoError(t, err)
	require.Len(t, h.Entries, 2)
	assert.Equal(t, "app.main", h.Entries[0].TargetFunction)
	assert.Equal(t, "app.helper", h.Entries[1].TargetFunction)
}

func TestRecordResult_AppendsFromApplyResult(t *testing.T) {
	root := t.TempDir()
	result := &Result{File: "app.py", TargetFunction: "app.main", Description: "validate input", Strategy: StrategyGuard}

	require.NoError(t, RecordResult(root, result, "2026-01-01T00:00:00Z"))

	h, err := LoadHistory(root)
	require.NoError(t, err)
	require.Len(t, h.Entries, 1)
	assert.Equal(t, "validate input", h.Entries[0].Description)
}

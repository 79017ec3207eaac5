// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package freshness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielekarra/neurocode/pkg/extract"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

func TestComputeStatus_Fresh(t *testing.T) {
	dir := t.TempDir()
	content := []byte("def f():\n    pass\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), content, 0o644))

	repo := &rir.Repository{Modules: []rir.ModuleIR{
		{Path: "a.py", ModuleName: "a", FileHash: extract.FileHash(content)},
	}}

	statuses, err := ComputeStatus(repo, dir)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, Fresh, statuses[0].State)
	assert.False(t, AnyStale(statuses))
}

func TestComputeStatus_Stale(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("def f():\n    return 2\n"), 0o644))

	repo := &rir.Repository{Modules: []rir.ModuleIR{
		{Path: "a.py", ModuleName: "a", FileHash: "deadbeef"},
	}}

	statuses, err := ComputeStatus(repo, dir)
	require.NoError(t, err)
	assert.Equal(t, Stale, statuses[0].State)
	assert.True(t, AnyStale(statuses))
}

func TestComputeStatus_Missing(t *testing.T) {
	dir := t.TempDir()
	repo := &rir.Repository{Modules: []rir.ModuleIR{
		{Path: "gone.py", ModuleName: "gone", FileHash: "deadbeef"},
	}}

	statuses, err := ComputeStatus(repo, dir)
	require.NoError(t, err)
	assert.Equal(t, Missing, statuses[0].State)
	assert.True(t, AnyStale(statuses))
}

func TestCounts(t *testing.T) {
	statuses := []ModuleStatus{{State: Fresh}, {State: Stale}, {State: Stale}, {State: Missing}}
	counts := Counts(statuses)
	assert.Equal(t, 1, counts[Fresh])
	assert.Equal(t, 2, counts[Stale])
	assert.Equal(t, 1, counts[Missing])
	assert.Equal(t, 0, counts[Unknown])
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielekarra/neurocode/pkg/query"
	"github.com/gabrielekarra/neurocode/pkg/search"
)

func writeRepoFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func sampleProjectRoot(t *testing.T) string {
	root := t.TempDir()
	writeRepoFile(t, root, "app.py", "def main():\n    helper()\n\n\ndef helper():\n    pass\n")
	writeRepoFile(t, root, ".venv/site-packages/skip_me.py", "def ignored():\n    pass\n")
	return root
}

func TestOpen_LoadsDefaultConfigWhenNoneExists(t *testing.T) {
	root := t.TempDir()
	p, err := Open(root, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Config.FanoutThreshold)
}

func TestDiscoverPythonFiles_SkipsVenv(t *testing.T) {
	root := sampleProjectRoot(t)
	files, err := DiscoverPythonFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, files)
}

func TestBuild_ExtractsFunctionsAndResolvesCalls(t *testing.T) {
	root := sampleProjectRoot(t)
	p, err := Open(root, nil)
	require.NoError(t, err)

	result, err := p.Build()
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesParsed)
	assert.Equal(t, 0, result.ParseErrors)
	assert.Equal(t, 3, result.Repository.NumFunctions())
}

func TestSaveAndLoadRepository_RoundTrips(t *testing.T) {
	root := sampleProjectRoot(t)
	p, err := Open(root, nil)
	require.NoError(t, err)

	result, err := p.Build()
	require.NoError(t, err)
	require.NoError(t, p.SaveRepository(result.Repository))

	loaded, err := p.LoadRepository()
	require.NoError(t, err)
	assert.Equal(t, result.Repository.NumFunctions(), loaded.NumFunctions())
}

func TestCheck_ReturnsDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "unused.py", "import os\n\n\ndef main():\n    pass\n")
	p, err := Open(root, nil)
	require.NoError(t, err)

	result, err := p.Build()
	require.NoError(t, err)

	diags := p.Check(result.Repository)
	assert.NotEmpty(t, diags)
}

func TestQuery_Callees(t *testing.T) {
	root := sampleProjectRoot(t)
	p, err := Open(root, nil)
	require.NoError(t, err)

	result, err := p.Build()
	require.NoError(t, err)

	qr, err := p.Query(result.Repository, query.Callees, "main", "")
	require.NoError(t, err)
	require.Len(t, qr.Edges, 1)
	assert.Equal(t, "app.helper", qr.Edges[0].QualifiedName)
}

func TestEmbedAndSearch_EndToEnd(t *testing.T) {
	root := sampleProjectRoot(t)
	p, err := Open(root, nil)
	require.NoError(t, err)

	result, err := p.Build()
	require.NoError(t, err)

	store, embedResult, err := p.Embed(context.Background(), result.Repository, "test", "2026-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.Zero(t, embedResult.ErrorCount)
	require.NoError(t, p.SaveEmbeddingStore(store))

	loaded, err := p.LoadEmbeddingStore()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	results, err := p.Search(context.Background(), loaded, "helper function", search.Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

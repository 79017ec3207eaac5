// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package explain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielekarra/neurocode/pkg/checks"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func sampleRepoAndRoot(t *testing.T) (*rir.Repository, string) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "def main():\n    helper()\n\n\ndef helper():\n    pass\n")

	calleeID := 1
	repo := &rir.Repository{
		Modules: []rir.ModuleIR{
			{
				ID: 0, Path: "app.py", ModuleName: "app",
				Functions: []rir.FunctionIR{
					{ID: 0, Name: "main", QualifiedName: "app.main", Module: "app", ModuleID: 0, SymbolID: "app:main", Kind: rir.FunctionKindFunction, Line: 1, EndLine: 2},
					{ID: 1, Name: "helper", QualifiedName: "app.helper", Module: "app", ModuleID: 0, SymbolID: "app:helper", Kind: rir.FunctionKindFunction, Line: 5, EndLine: 6},
				},
			},
		},
		CallEdges: []rir.CallEdge{
			{CallerFunctionID: 0, CalleeFunctionID: &calleeID, Target: "helper", Line: 2},
		},
	}
	return repo, root
}

func TestBuild_ModuleSummaryAndCallGraph(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	bundle, err := Build(context.Background(), repo, root, "app.py", Options{Symbol: "main", ChecksConfig: checks.DefaultConfig()})
	require.NoError(t, err)

	assert.Equal(t, "app", bundle.Module)
	assert.Equal(t, "app.main", bundle.Target.Symbol)
	require.Len(t, bundle.CallGraph.Callees, 1)
	assert.Equal(t, "app:helper", bundle.CallGraph.Callees[0].Symbol)
	assert.Len(t, bundle.IR.ModuleSummary.Functions, 2)
}

func TestBuild_NoSymbolIncludesWholeModuleSlices(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	bundle, err := Build(context.Background(), repo, root, "app.py", Options{ChecksConfig: checks.DefaultConfig()})
	require.NoError(t, err)

	assert.Nil(t, bundle.Target)
	assert.Len(t, bundle.SourceSlices, 2)
}

func TestBuild_UnknownSymbolErrors(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	_, err := Build(context.Background(), repo, root, "app.py", Options{Symbol: "does_not_exist", ChecksConfig: checks.DefaultConfig()})
	assert.Error(t, err)
}

func TestBuild_EmbeddingUnavailableDegradesGracefully(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	bundle, err := Build(context.Background(), repo, root, "app.py", Options{ChecksConfig: checks.DefaultConfig()})
	require.NoError(t, err)
	assert.False(t, bundle.EmbeddingMetadata.Available)
	assert.Empty(t, bundle.SemanticNeighbors)
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package patchplan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielekarra/neurocode/pkg/checks"
	"github.com/gabrielekarra/neurocode/pkg/explain"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

func sampleRepoAndRoot(t *testing.T) (*rir.Repository, string) {
	root := t.TempDir()
	content := "def main(value=None):\n    helper()\n\n\ndef helper():\n    pass\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte(content), 0o644))

	calleeID := 1
	repo := &rir.Repository{
		Modules: []rir.ModuleIR{
			{
				ID: 0, Path: "app.py", ModuleName: "app",
				Functions: []rir.FunctionIR{
					{
						ID: 0, Name: "main", QualifiedName: "app.main", Module: "app", ModuleID: 0,
						SymbolID: "app:main", Kind: rir.FunctionKindFunction, Line: 1, EndLine: 2,
						Params: []rir.ParamIR{{Name: "value", Line: 1}},
					},
					{
						ID: 1, Name: "helper", QualifiedName: "app.helper", Module: "app", ModuleID: 0,
						SymbolID: "app:helper", Kind: rir.FunctionKindFunction, Line: 5, EndLine: 6,
					},
				},
			},
		},
		CallEdges: []rir.CallEdge{
			{CallerFunctionID: 0, CalleeFunctionID: &calleeID, Target: "helper", Line: 2},
		},
	}
	return repo, root
}

func TestBuildBundle_WithSymbol(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	bundle, err := BuildBundle(context.Background(), repo, root, "app.py", "validate the input", Options{
		Symbol:        "main",
		EngineVersion: "test",
		ExplainOpts:   explain.Options{ChecksConfig: checks.DefaultConfig()},
	})
	require.NoError(t, err)

	assert.Equal(t, "app.main", bundle.Target.Symbol)
	assert.Equal(t, "validate the input", bundle.Fix)
	require.NotEmpty(t, bundle.Operations)
	assert.Equal(t, OpAppendToFunction, bundle.Operations[0].Op)
	assert.NotNil(t, bundle.Context)
}

func TestBuildBundle_NoSymbolPicksFirstModuleLevelFunction(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	bundle, err := BuildBundle(context.Background(), repo, root, "app.py", "add logging", Options{
		EngineVersion: "test",
		ExplainOpts:   explain.Options{ChecksConfig: checks.DefaultConfig()},
	})
	require.NoError(t, err)
	assert.Equal(t, "app.main", bundle.Target.Symbol)
}

func TestBuildBundle_UnknownSymbolErrors(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	_, err := BuildBundle(context.Background(), repo, root, "app.py", "fix it", Options{
		Symbol:        "does_not_exist",
		ExplainOpts:   explain.Options{ChecksConfig: checks.DefaultConfig()},
	})
	assert.Error(t, err)
}

func TestBuildBundle_EmptyFixErrors(t *testing.T) {
	repo, root := sampleRepoAndRoot(t)
	_, err := BuildBundle(context.Background(), repo, root, "app.py", "", Options{
		ExplainOpts: explain.Options{ChecksConfig: checks.DefaultConfig()},
	})
	assert.Error(t, err)
}

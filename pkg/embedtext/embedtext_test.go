// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package embedtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

func sampleRepo() *rir.Repository {
	calleeID := 2
	return &rir.Repository{
		Modules: []rir.ModuleIR{
			{
				ID: 0, ModuleName: "app", Path: "app.py",
				Functions: []rir.FunctionIR{
					{ID: 0, Name: "__module__", QualifiedName: "app.__module__", Module: "app", Kind: rir.FunctionKindModule, Line: 1},
					{ID: 1, Name: "main", QualifiedName: "app.main", Module: "app", SymbolID: "app:main", Kind: rir.FunctionKindFunction, Line: 3, Signature: "def main():", Docstring: "Entry point."},
				},
			},
			{
				ID: 1, ModuleName: "pkg.util", Path: "pkg/util.py",
				Functions: []rir.FunctionIR{
					{ID: 2, Name: "helper", QualifiedName: "pkg.util.helper", Module: "pkg.util", SymbolID: "pkg.util:helper", Kind: rir.FunctionKindFunction, Line: 1},
				},
			},
		},
		CallEdges: []rir.CallEdge{
			{CallerFunctionID: 1, CalleeFunctionID: &calleeID, Target: "helper", Line: 4},
		},
	}
}

func TestBuild_ExcludesModuleEntry(t *testing.T) {
	docs := Build(sampleRepo())
	for _, d := range docs {
		assert.NotEqual(t, "app.__module__", d.ID)
	}
}

func TestBuild_OrdersByModuleThenLine(t *testing.T) {
	docs := Build(sampleRepo())
	require.Len(t, docs, 2)
	assert.Equal(t, "app:main", docs[0].ID)
	assert.Equal(t, "pkg.util:helper", docs[1].ID)
}

func TestBuild_IncludesResolvedCallee(t *testing.T) {
	docs := Build(sampleRepo())
	var mainDoc Document
	for _, d := range docs {
		if d.Name == "main" {
			mainDoc = d
		}
	}
	require.NotEmpty(t, mainDoc.Text)
	assert.Contains(t, mainDoc.Text, "calls: pkg.util.helper")
	assert.Contains(t, mainDoc.Text, "docstring: Entry point.")
	assert.Contains(t, mainDoc.Text, "signature: def main():")
}

func TestBuild_IDFallsBackToQualifiedName(t *testing.T) {
	repo := sampleRepo()
	repo.Modules[1].Functions[0].SymbolID = ""
	docs := Build(repo)
	var helperDoc Document
	for _, d := range docs {
		if d.Name == "helper" {
			helperDoc = d
		}
	}
	assert.Equal(t, "pkg.util.helper", helperDoc.ID)
}

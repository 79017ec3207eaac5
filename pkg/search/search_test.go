// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielekarra/neurocode/pkg/embedding"
)

func sampleStore() *embedding.Store {
	return &embedding.Store{
		RepoRoot: "/repo",
		Items: []embedding.StoreItem{
			{Kind: embedding.KindFunction, ID: "app:main", Module: "app", Name: "main", Embedding: []float32{1, 0, 0}},
			{Kind: embedding.KindFunction, ID: "app:helper", Module: "app", Name: "helper", Embedding: []float32{0, 1, 0}},
			{Kind: embedding.KindFunction, ID: "pkg.util:run", Module: "pkg.util", Name: "run", Embedding: []float32{0.9, 0.1, 0}},
		},
	}
}

func TestRun_RanksByCosineSimilarity(t *testing.T) {
	results := Run(sampleStore(), []float32{1, 0, 0}, Options{})
	require.Len(t, results, 3)
	assert.Equal(t, "app:main", results[0].ID)
	assert.Equal(t, "pkg.util:run", results[1].ID)
	assert.Equal(t, "app:helper", results[2].ID)
}

func TestRun_ModuleFilterScoping(t *testing.T) {
	results := Run(sampleStore(), []float32{1, 0, 0}, Options{ModuleFilter: "app"})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "app", r.Module)
	}
}

func TestRun_TopKTruncates(t *testing.T) {
	results := Run(sampleStore(), []float32{1, 0, 0}, Options{K: 1})
	require.Len(t, results, 1)
	assert.Equal(t, "app:main", results[0].ID)
}

func TestQueryFromSymbol_NormalizesColon(t *testing.T) {
	vec, err := QueryFromSymbol(sampleStore(), "app:main")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, vec)
}

func TestQueryFromSymbol_UnknownSymbolErrors(t *testing.T) {
	_, err := QueryFromSymbol(sampleStore(), "does:not-exist")
	assert.Error(t, err)
}

func TestQueryFromText_UsesProvider(t *testing.T) {
	vec, err := QueryFromText(context.Background(), embedding.NewMockProvider(8, nil), "find the parser")
	require.NoError(t, err)
	assert.Len(t, vec, 8)
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package project

import (
	"context"
	"fmt"

	"github.com/gabrielekarra/neurocode/pkg/embedding"
	"github.com/gabrielekarra/neurocode/pkg/search"
)

// Search runs a semantic search against store, embedding queryText with a
// provider resolved from p.Config.EmbeddingProvider.
func (p *Project) Search(ctx context.Context, store *embedding.Store, queryText string, opts search.Options) ([]search.Result, error) {
	if store == nil {
		return nil, fmt.Errorf("no embedding store found; run 'neurocode embed' first")
	}
	if store.Model != "" && store.Model != p.Config.EmbeddingProvider {
		return nil, fmt.Errorf("embedding store was built with model %q but the configured provider is %q; run 'neurocode embed' again", store.Model, p.Config.EmbeddingProvider)
	}
	provider, err := embedding.NewProvider(p.Config.EmbeddingProvider, p.Logger)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider: %w", err)
	}
	queryVec, err := search.QueryFromText(ctx, provider, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return search.Run(store, queryVec, opts), nil
}

// SearchSymbol runs a semantic search using an existing function's
// embedding as the query vector, rather than embedding free text.
func (p *Project) SearchSymbol(store *embedding.Store, symbol string, opts search.Options) ([]search.Result, error) {
	if store == nil {
		return nil, fmt.Errorf("no embedding store found; run 'neurocode embed' first")
	}
	queryVec, err := search.QueryFromSymbol(store, symbol)
	if err != nil {
		return nil, err
	}
	return search.Run(store, queryVec, opts), nil
}

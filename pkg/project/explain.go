// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package project

import (
	"context"

	"github.com/gabrielekarra/neurocode/pkg/embedding"
	"github.com/gabrielekarra/neurocode/pkg/explain"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// Explain builds an explain bundle for relFilePath, optionally focused on
// symbol, using store/provider for the semantic-neighbors section if a
// store is available (nil degrades the bundle rather than failing).
func (p *Project) Explain(ctx context.Context, repo *rir.Repository, relFilePath, symbol string, kNeighbors int, engineVersion string, store *embedding.Store) (*explain.Bundle, error) {
	var provider embedding.Provider
	if store != nil {
		if prov, err := embedding.NewProvider(p.Config.EmbeddingProvider, p.Logger); err == nil {
			provider = prov
		}
	}

	return explain.Build(ctx, repo, p.Root, relFilePath, explain.Options{
		Symbol:        symbol,
		KNeighbors:    kNeighbors,
		EngineVersion: engineVersion,
		ChecksConfig:  p.Config.ChecksConfig(),
		Store:         store,
		Provider:      provider,
	})
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabrielekarra/neurocode/pkg/embedding"
	"github.com/gabrielekarra/neurocode/pkg/embedtext"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// LoadEmbeddingStore reads and parses the embedding store from
// p.EmbeddingStorePath(). It returns (nil, nil) if no store has been built
// yet, so callers can degrade gracefully instead of treating it as fatal.
func (p *Project) LoadEmbeddingStore() (*embedding.Store, error) {
	data, err := os.ReadFile(p.EmbeddingStorePath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read embedding store: %w", err)
	}
	store, err := embedding.ParseStore(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse embedding store: %w", err)
	}
	return store, nil
}

// SaveEmbeddingStore writes store to p.EmbeddingStorePath().
func (p *Project) SaveEmbeddingStore(store *embedding.Store) error {
	dir := filepath.Dir(p.EmbeddingStorePath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create embedding store dir: %w", err)
	}
	if err := os.WriteFile(p.EmbeddingStorePath(), []byte(store.ToToon()), 0o644); err != nil {
		return fmt.Errorf("write embedding store: %w", err)
	}
	return nil
}

// Embed builds the canonical embedding documents for every function in
// repo, embeds them with a provider resolved from p.Config.EmbeddingProvider,
// and returns the resulting store without persisting it.
func (p *Project) Embed(ctx context.Context, repo *rir.Repository, engineVersion, createdAt string) (*embedding.Store, *embedding.Result, error) {
	provider, err := embedding.NewProvider(p.Config.EmbeddingProvider, p.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create embedding provider: %w", err)
	}

	workers := p.Config.EmbedWorkers
	if workers <= 0 {
		workers = 4
	}
	gen := embedding.NewGenerator(provider, workers, p.Logger)

	docs := embedtext.Build(repo)
	result, err := gen.EmbedDocuments(ctx, docs)
	if err != nil {
		return nil, nil, fmt.Errorf("embed documents: %w", err)
	}

	store := embedding.NewStore(p.Root, engineVersion, p.Config.EmbeddingProvider, createdAt)
	store.FromResult(result)
	return store, result, nil
}

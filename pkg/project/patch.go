// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package project

import (
	"context"

	"github.com/gabrielekarra/neurocode/pkg/embedding"
	"github.com/gabrielekarra/neurocode/pkg/explain"
	"github.com/gabrielekarra/neurocode/pkg/patchplan"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// BuildPatchPlan assembles an LLM-roundtrippable patch plan bundle for
// relFilePath, anchored to symbol if given.
func (p *Project) BuildPatchPlan(ctx context.Context, repo *rir.Repository, relFilePath, symbol, fix string, kNeighbors int, engineVersion string, store *embedding.Store) (*patchplan.Bundle, error) {
	var provider embedding.Provider
	if store != nil {
		if prov, err := embedding.NewProvider(p.Config.EmbeddingProvider, p.Logger); err == nil {
			provider = prov
		}
	}

	return patchplan.BuildBundle(ctx, repo, p.Root, relFilePath, fix, patchplan.Options{
		Symbol:        symbol,
		KNeighbors:    kNeighbors,
		EngineVersion: engineVersion,
		ExplainOpts: explain.Options{
			ChecksConfig: p.Config.ChecksConfig(),
			Store:        store,
			Provider:     provider,
		},
	})
}

// ApplyLocalPatch applies a heuristic, LLM-free patch to relFilePath and
// records it in the project's patch history.
func (p *Project) ApplyLocalPatch(repo *rir.Repository, relFilePath, symbol, fix string, dryRun bool, timestamp string) (*patchplan.Result, error) {
	result, err := patchplan.ApplyLocalPatch(repo, p.Root, relFilePath, symbol, fix, patchplan.ApplyOptions{DryRun: dryRun})
	if err != nil {
		return nil, err
	}
	if !dryRun {
		if err := patchplan.RecordResult(p.Root, result, timestamp); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// PatchHistory returns the project's recorded patch application log.
func (p *Project) PatchHistory() (*patchplan.History, error) {
	return patchplan.LoadHistory(p.Root)
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resolver

import (
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// Resolve runs both resolution phases over a set of per-module IR
// fragments produced by pkg/extract, returning a fully cross-referenced
// Repository. modules is consumed by value; callers should not reuse the
// slice afterward since Phase A reorders and mutates its elements in
// place before copying them into the returned Repository.
func Resolve(root string, modules []rir.ModuleIR) *rir.Repository {
	repo := assignIDs(root, modules)
	idx := buildIndex(repo)
	resolveCalls(repo, idx)
	return repo
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package project

import (
	"github.com/gabrielekarra/neurocode/pkg/query"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// Query runs one graph query against repo.
func (p *Project) Query(repo *rir.Repository, kind query.Kind, symbol, moduleFilter string) (query.Result, error) {
	return query.Run(repo, kind, symbol, moduleFilter)
}

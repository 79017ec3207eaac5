// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package project

import (
	"github.com/gabrielekarra/neurocode/pkg/checks"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// Check runs every enabled structural check over repo using p.Config's
// thresholds and severity overrides.
func (p *Project) Check(repo *rir.Repository) []checks.Diagnostic {
	return checks.Run(repo, p.Config.ChecksConfig())
}

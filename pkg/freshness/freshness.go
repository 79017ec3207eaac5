// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package freshness

import (
	"os"
	"path/filepath"

	"github.com/gabrielekarra/neurocode/pkg/extract"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// State classifies one module's on-disk freshness relative to the last
// build recorded in the IR.
type State string

const (
	Fresh   State = "fresh"
	Stale   State = "stale"
	Missing State = "missing"
	Unknown State = "unknown"
)

// ModuleStatus reports one module's freshness.
type ModuleStatus struct {
	Path       string
	ModuleName string
	State      State
	// BuiltHash is the file hash recorded in the IR at the last build.
	BuiltHash string
	// CurrentHash is the file's current hash on disk, empty if Missing.
	CurrentHash string
}

// ComputeStatus stats and hashes each module's source file under root and
// compares it against the hash recorded in repo, returning one
// ModuleStatus per module in repo's module order.
func ComputeStatus(repo *rir.Repository, root string) ([]ModuleStatus, error) {
	statuses := make([]ModuleStatus, 0, len(repo.Modules))
	for _, mod := range repo.Modules {
		statuses = append(statuses, computeModuleStatus(root, mod))
	}
	return statuses, nil
}

func computeModuleStatus(root string, mod rir.ModuleIR) ModuleStatus {
	status := ModuleStatus{Path: mod.Path, ModuleName: mod.ModuleName, BuiltHash: mod.FileHash}

	fullPath := filepath.Join(root, mod.Path)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			status.State = Missing
			return status
		}
		status.State = Unknown
		return status
	}

	status.CurrentHash = extract.FileHash(content)
	if mod.FileHash == "" {
		status.State = Unknown
		return status
	}
	if status.CurrentHash == mod.FileHash {
		status.State = Fresh
	} else {
		status.State = Stale
	}
	return status
}

// AnyStale reports whether at least one module is Stale or Missing, the
// condition the `status` CLI command uses to pick its exit code.
func AnyStale(statuses []ModuleStatus) bool {
	for _, s := range statuses {
		if s.State == Stale || s.State == Missing {
			return true
		}
	}
	return false
}

// Counts tallies how many modules fall into each State, for summary
// rendering.
func Counts(statuses []ModuleStatus) map[State]int {
	counts := map[State]int{Fresh: 0, Stale: 0, Missing: 0, Unknown: 0}
	for _, s := range statuses {
		counts[s.State]++
	}
	return counts
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package freshness compares a built Repository's per-module file hashes
// against the current state of the files on disk, classifying each module
// as fresh, stale, missing, or unknown (no recorded hash) so that `status`
// can report whether a rebuild is needed without re-parsing every file.
package freshness

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package embedtext builds the deterministic canonical text fed to an
// embedding provider for each function in a resolved Repository. The same
// Repository always produces the same documents in the same order, so
// embedding runs are reproducible and diffable.
package embedtext

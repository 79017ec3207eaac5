// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package metrics exposes the Prometheus counters and histograms emitted by
// the build, check, query, search, embed, and patch operations.
package metrics

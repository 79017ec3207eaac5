// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package config loads and saves per-repository engine configuration:
// check thresholds, enabled checks, and severity overrides. Configuration
// lives at .neurocode/project.yaml, relative to a repository root.
package config

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package checks runs structural diagnostics over a resolved Repository:
// unused imports, functions with no callers, high fan-out, unused
// parameters, overlong functions, and call-graph cycles. Each check is
// independent and configurable (enabled/disabled, severity override,
// thresholds); Run dispatches only the enabled ones and returns every
// Diagnostic sorted for stable, diffable output.
package checks

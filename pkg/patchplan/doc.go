// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package patchplan builds LLM-roundtrippable patch plan bundles and
// validates them against a closed-world schema; it does not apply a
// bundle's operations to files. It also offers a local, heuristic
// single-symbol patch command (guard/inject/todo strategies) for callers
// that want a patch without an LLM in the loop. That path is the only one
// that changes files: it reports a unified diff, skips a patch whose
// marker is already present, and records each non-dry-run application in
// a crash-safe history log.
package patchplan

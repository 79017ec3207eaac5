// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package resolver turns the per-module, module-local IR produced by
// pkg/extract into a fully cross-referenced repository IR.
//
// Resolution runs in two phases. Phase A walks the modules in a stable
// order, assigns dense repository-wide function ids, derives each
// function's and class's symbol id ("<module>:<qualname>"), and remaps
// every module-local ParentClassID reference to the reassigned global id.
// Phase B then resolves each call site's textual target to a callee
// function id using the ordered strategy described by resolveCall.
package resolver

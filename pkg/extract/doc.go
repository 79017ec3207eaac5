// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package extract performs per-file AST traversal over Python source,
// producing an unresolved module IR: imports, classes (with base-expression
// text), functions, and their call sites. Call targets and class ids are
// module-local at this stage; pkg/resolver assigns repository-wide
// function ids and resolves call targets in a later pass.
//
// A single TreeSitterParser instance is not safe for concurrent use by
// multiple goroutines against the same file, but distinct files may be
// parsed concurrently with independently allocated parsers (see
// NewTreeSitterParser). pkg/project's Build does not do so: it parses the
// files sequentially with one parser.
package extract

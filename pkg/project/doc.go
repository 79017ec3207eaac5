// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package project is a thin facade binding a repository root and its
// configuration to the build, check, query, embed, search, explain, and
// patch operations, so callers (chiefly cmd/neurocode) don't have to wire
// pkg/extract, pkg/resolver, pkg/toon, pkg/checks, pkg/query, pkg/embedtext,
// pkg/embedding, pkg/search, pkg/explain, and pkg/patchplan together by
// hand. It carries no business logic of its own beyond file discovery and
// the .neurocode/ on-disk layout.
package project

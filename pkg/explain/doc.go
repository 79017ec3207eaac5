// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package explain assembles an LLM-ready JSON bundle for one file (and
// optionally one symbol within it): the module's structural summary, its
// call-graph neighborhood, structural-check diagnostics, semantically
// similar functions from the embedding store, and the relevant source
// text slices — everything an LLM needs to reason about a change without
// re-reading the whole repository.
package explain

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package search ranks a repository's embedded functions against a query
// vector by cosine similarity, optionally scoped to a module prefix, and
// supports deriving the query vector either from free text (via an
// embedding.Provider) or from an existing embedded symbol ("find things
// like this one").
package search

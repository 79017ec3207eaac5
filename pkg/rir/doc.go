// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package rir defines the Repository Intermediate Representation: the
// in-memory structural model of a single-language Python repository.
//
// All entities are arena-indexed by dense integer id and created during a
// single build pass (see pkg/extract and pkg/resolver); they are immutable
// thereafter and are replaced wholesale by the next build, never mutated
// in place. Cross-entity references are ids, not pointers, so the model
// can represent cyclic structures (class hierarchies, call graphs, module
// import graphs) without cross-owned references.
package rir

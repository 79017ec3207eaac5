// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package toon serializes and parses the on-disk columnar IR format: a
// "repo:" YAML-like header block followed by one or more
// "name[N]{field,field,...}:" table blocks, each row a comma-separated,
// backslash-escaped line indented by two spaces. Multi-valued cells (base
// class lists, entrypoint lists) are pipe-separated within their field.
//
// The format favors uniform arrays of rows over nested structure, trading
// self-description for a small, greppable, diff-friendly file; pkg/toon is
// the only reader and writer of it, so the encoding is free to evolve
// alongside the rir package without an external schema to track.
package toon

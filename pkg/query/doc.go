// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package query answers structural graph questions against a resolved
// Repository: who calls a symbol, what it calls, and repository-wide
// fan-in/fan-out rankings, optionally scoped to a module prefix.
package query

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package embedding generates embedding vectors for the canonical texts
// built by pkg/embedtext: a pluggable Provider (a local
// deterministic mock, or a remote Ollama/OpenAI-compatible server) and a
// Generator that drives a provider over a batch of documents with
// bounded concurrency, truncation, and classified retry with jittered
// backoff.
package embedding

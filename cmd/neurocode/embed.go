// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gabrielekarra/neurocode/internal/output"
	"github.com/gabrielekarra/neurocode/internal/ui"
	"github.com/gabrielekarra/neurocode/pkg/metrics"
)

// runEmbed executes the 'embed' CLI command, generating semantic embeddings
// for every function in the persisted IR and writing them to
// .neurocode/ir-embeddings.toon.
//
// Flags:
//   - --json: Output an embedding summary as JSON
func runEmbed(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: neurocode embed [options]

Generates embeddings for every function in the repository IR using the
configured embedding provider, and writes them to .neurocode/ir-embeddings.toon.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	p := openProject(globals)
	repo := mustLoadRepository(globals, p)

	progressCfg := NewProgressConfig(globals)
	bar := NewSpinner(progressCfg, "generating embeddings")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	store, result, err := p.Embed(ctx, repo, engineVersion, nowRFC3339())
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		fatal(globals, err)
	}
	if err := p.SaveEmbeddingStore(store); err != nil {
		fatal(globals, err)
	}
	elapsed := time.Since(start).Seconds()

	retries := 0
	metrics.RecordEmbedBatch(len(result.Items)-result.ErrorCount, 0, result.ErrorCount, retries, elapsed)

	if globals.JSON {
		_ = output.JSON(map[string]any{
			"embedded":         len(result.Items) - result.ErrorCount,
			"errors":           result.ErrorCount,
			"truncated":        result.TruncatedCount,
			"elapsed_s":        elapsed,
			"embedding_model":  store.Model,
			"embedding_engine": store.EngineVersion,
		})
		return
	}

	if !globals.Quiet {
		ui.Successf("embedded %d functions in %.2fs (%d errors, %d truncated)",
			len(result.Items)-result.ErrorCount, elapsed, result.ErrorCount, result.TruncatedCount)
	}
}

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
)

// runExplain executes the 'explain' CLI command, assembling a single JSON
// bundle describing a file or symbol: its IR summary, call graph neighbors,
// related files, source slices, structural diagnostics, and (if an
// embedding store exists) semantic neighbors.
//
// Usage: neurocode explain <file> [options]
func runExplain(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	symbol := fs.String("symbol", "", "Focus the bundle on this qualified symbol")
	k := fs.Int("k", 5, "Number of semantic neighbors to include")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: neurocode explain <file> [options]

Builds an explain bundle for a file, optionally focused on one symbol in it.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}
	relFile := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		os.Exit(1)
	}

	p := openProject(globals)
	repo := mustLoadRepository(globals, p)

	store, err := p.LoadEmbeddingStore()
	if err != nil {
		fatal(globals, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	bundle, err := p.Explain(ctx, repo, relFile, *symbol, *k, engineVersion, store)
	if err != nil {
		fatal(globals, err)
	}

	_ = output.JSON(bundle)
}

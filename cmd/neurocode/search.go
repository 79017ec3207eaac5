// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/gabrielekarra/neurocode/internal/output"
	"github.com/gabrielekarra/neurocode/pkg/metrics"
	"github.com/gabrielekarra/neurocode/pkg/search"
)

// runSearch executes the 'search' CLI command, ranking functions in the
// embedding store by semantic similarity to a natural-language query.
//
// Usage: neurocode search <text> [options]
func runSearch(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	moduleFilter := fs.StringP("module", "m", "", "Restrict to modules under this prefix")
	k := fs.IntP("top", "k", 10, "Number of results to return")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: neurocode search <text> [options]

Ranks functions by cosine similarity between their stored embedding and the
embedding of <text>.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		os.Exit(1)
	}
	queryText := rest[0]

	p := openProject(globals)

	store, err := p.LoadEmbeddingStore()
	if err != nil {
		fatal(globals, err)
	}
	if store == nil {
		fatal(globals, fmt.Errorf("no embedding store found; run 'neurocode embed' first"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	results, err := p.Search(ctx, store, queryText, search.Options{ModuleFilter: *moduleFilter, K: *k})
	metrics.RecordSearch(time.Since(start).Seconds())
	if err != nil {
		fatal(globals, err)
	}

	if globals.JSON {
		_ = output.JSON(results)
		return
	}
	printSearchResults(results)
}

func printSearchResults(results []search.Result) {
	if len(results) == 0 {
		fmt.Println("No results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tNAME\tMODULE\tFILE\tLINE")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\t%d\n", r.Score, r.Name, r.Module, r.File, r.Line)
	}
	w.Flush()
}

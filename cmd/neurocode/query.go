// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/gabrielekarra/neurocode/internal/output"
	"github.com/gabrielekarra/neurocode/pkg/metrics"
	"github.com/gabrielekarra/neurocode/pkg/query"
)

// runQuery executes the 'query' CLI command, answering one structural
// question about the call graph.
//
// Usage: neurocode query <callers|callees|fan-in|fan-out> [symbol] [options]
func runQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	moduleFilter := fs.StringP("module", "m", "", "Restrict to modules under this prefix")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: neurocode query <kind> [symbol] [options]

Kinds:
  callers   <symbol>   Functions that call symbol
  callees   <symbol>   Functions symbol calls
  fan-in               Functions ranked by incoming call count
  fan-out              Functions ranked by outgoing call count

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  neurocode query callers app.helper
  neurocode query callees app.main --module app
  neurocode --json query fan-in
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		os.Exit(1)
	}

	kind := query.Kind(rest[0])
	var symbol string
	if len(rest) > 1 {
		symbol = rest[1]
	}

	p := openProject(globals)
	repo := mustLoadRepository(globals, p)

	result, err := p.Query(repo, kind, symbol, *moduleFilter)
	metrics.RecordQuery()
	if err != nil {
		fatal(globals, err)
	}

	if globals.JSON {
		_ = output.JSON(result)
		return
	}
	printQueryResult(result)
}

func printQueryResult(result query.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	switch {
	case len(result.Edges) > 0 || result.Kind == query.Callers || result.Kind == query.Callees:
		fmt.Fprintln(w, "SYMBOL\tMODULE\tLINE")
		for _, e := range result.Edges {
			fmt.Fprintf(w, "%s\t%s\t%d\n", e.QualifiedName, e.Module, e.Line)
		}
		fmt.Fprintln(w)
		w.Flush()
		fmt.Printf("(%d results)\n", len(result.Edges))
	default:
		fmt.Fprintln(w, "SYMBOL\tMODULE\tCOUNT")
		for _, r := range result.Ranked {
			fmt.Fprintf(w, "%s\t%s\t%d\n", r.QualifiedName, r.Module, r.Count)
		}
		fmt.Fprintln(w)
		w.Flush()
		fmt.Printf("(%d results)\n", len(result.Ranked))
	}
}

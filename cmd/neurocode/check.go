// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/gabrielekarra/neurocode/internal/output"
	"github.com/gabrielekarra/neurocode/internal/ui"
	"github.com/gabrielekarra/neurocode/pkg/checks"
	"github.com/gabrielekarra/neurocode/pkg/metrics"
)

// runCheck executes the 'check' CLI command, running every enabled
// structural diagnostic over the persisted IR.
//
// Flags:
//   - --module: Restrict diagnostics to one module
//   - --json: Output diagnostics as JSON
func runCheck(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	module := fs.String("module", "", "Restrict to diagnostics in this module path")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: neurocode check [options]

Runs structural diagnostics (unused imports, unused functions, high fan-out,
unused parameters, long functions, call cycles) over the repository IR.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	p := openProject(globals)
	repo := mustLoadRepository(globals, p)

	start := time.Now()
	diags := p.Check(repo)
	if *module != "" {
		diags = checks.ForModule(diags, *module)
	}
	metrics.RecordCheck(len(diags), time.Since(start).Seconds())

	if globals.JSON {
		_ = output.JSON(diags)
	} else {
		printDiagnostics(diags)
	}

	os.Exit(checks.ExitCode(diags))
}

func printDiagnostics(diags []checks.Diagnostic) {
	if len(diags) == 0 {
		ui.Success("no structural issues found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEVERITY\tCODE\tFILE\tLINE\tMESSAGE")
	for _, d := range diags {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", d.Severity, d.Code, d.File, d.Line, d.Message)
	}
	w.Flush()
	fmt.Printf("\n(%d diagnostics)\n", len(diags))
}

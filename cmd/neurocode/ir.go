// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gabrielekarra/neurocode/internal/output"
	"github.com/gabrielekarra/neurocode/internal/ui"
	"github.com/gabrielekarra/neurocode/pkg/metrics"
)

// runIR executes the 'ir' CLI command, discovering Python files, extracting
// per-module structure with Tree-sitter, and resolving the call graph into a
// persisted repository IR.
//
// Flags:
//   - --json: Output a build summary as JSON
func runIR(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("ir", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: neurocode ir [options]

Discovers Python source files under --root, extracts their structure, and
writes the resolved repository IR to .neurocode/ir.toon.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	p := openProject(globals)

	progressCfg := NewProgressConfig(globals)
	bar := NewSpinner(progressCfg, "building repository IR")

	start := time.Now()
	result, err := p.Build()
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		fatal(globals, err)
	}

	if err := p.SaveRepository(result.Repository); err != nil {
		fatal(globals, err)
	}
	elapsed := time.Since(start).Seconds()

	resolved, unresolved := 0, 0
	for _, edge := range result.Repository.CallEdges {
		if edge.CalleeFunctionID != nil {
			resolved++
		} else {
			unresolved++
		}
	}
	metrics.RecordBuild(
		result.Repository.NumModules(),
		result.Repository.NumFunctions(),
		result.Repository.NumClasses(),
		result.ParseErrors,
		resolved,
		unresolved,
		elapsed,
	)

	if globals.JSON {
		_ = output.JSON(map[string]any{
			"files_scanned": result.FilesScanned,
			"files_parsed":  result.FilesParsed,
			"parse_errors":  result.ParseErrors,
			"modules":       result.Repository.NumModules(),
			"functions":     result.Repository.NumFunctions(),
			"classes":       result.Repository.NumClasses(),
			"calls":         result.Repository.NumCalls(),
			"elapsed_s":     elapsed,
		})
		return
	}

	if !globals.Quiet {
		ui.Successf("built IR for %d modules (%d functions, %d classes, %d calls) in %.2fs",
			result.Repository.NumModules(), result.Repository.NumFunctions(), result.Repository.NumClasses(), result.Repository.NumCalls(), elapsed)
		if result.ParseErrors > 0 {
			ui.Warningf("%d files failed to parse", result.ParseErrors)
		}
	}
}

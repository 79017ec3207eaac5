// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gabrielekarra/neurocode/internal/output"
	"github.com/gabrielekarra/neurocode/internal/ui"
	"github.com/gabrielekarra/neurocode/pkg/freshness"
)

// StatusResult is the status command's JSON output shape.
type StatusResult struct {
	Root          string             `json:"root"`
	HasIR         bool               `json:"has_ir"`
	Modules       int                `json:"modules"`
	Functions     int                `json:"functions"`
	Classes       int                `json:"classes"`
	Calls         int                `json:"calls"`
	Stale         bool               `json:"stale"`
	FreshnessByState map[string]int `json:"freshness_by_state,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// runStatus executes the 'status' CLI command, reporting whether an IR
// exists, its entity counts, and whether any module's on-disk source has
// drifted from what was last indexed.
//
// Flags:
//   - --json: Output as JSON
func runStatus(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: neurocode status [options]

Shows whether the repository IR exists, its entity counts, and whether any
indexed module has since changed on disk.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	p := openProject(globals)
	result := &StatusResult{Root: p.Root}

	repo, err := p.LoadRepository()
	if err != nil {
		result.HasIR = false
		result.Error = "no repository IR found; run 'neurocode ir' first"
		emitStatus(globals, result)
		return
	}

	result.HasIR = true
	result.Modules = repo.NumModules()
	result.Functions = repo.NumFunctions()
	result.Classes = repo.NumClasses()
	result.Calls = repo.NumCalls()

	statuses, err := freshness.ComputeStatus(repo, p.Root)
	if err != nil {
		result.Error = fmt.Sprintf("could not compute freshness: %v", err)
		emitStatus(globals, result)
		return
	}
	result.Stale = freshness.AnyStale(statuses)

	counts := freshness.Counts(statuses)
	result.FreshnessByState = make(map[string]int, len(counts))
	for state, n := range counts {
		result.FreshnessByState[string(state)] = n
	}

	emitStatus(globals, result)
}

func emitStatus(globals GlobalFlags, result *StatusResult) {
	if globals.JSON {
		_ = output.JSON(result)
		return
	}

	ui.Header("neurocode project status")
	fmt.Printf("%s %s\n", ui.Label("Root:"), result.Root)
	if !result.HasIR {
		fmt.Println()
		ui.Warning(result.Error)
		return
	}

	fmt.Println()
	ui.SubHeader("Entities:")
	fmt.Printf("  Modules:   %s\n", ui.CountText(result.Modules))
	fmt.Printf("  Functions: %s\n", ui.CountText(result.Functions))
	fmt.Printf("  Classes:   %s\n", ui.CountText(result.Classes))
	fmt.Printf("  Calls:     %s\n", ui.CountText(result.Calls))

	fmt.Println()
	if result.Stale {
		ui.Warning("one or more modules are stale; run 'neurocode ir' to refresh")
	} else {
		ui.Success("IR is fresh")
	}
	if result.Error != "" {
		fmt.Println()
		ui.Warning(result.Error)
	}
}

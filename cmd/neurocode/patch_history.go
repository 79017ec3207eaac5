// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gabrielekarra/neurocode/internal/output"
)

// runPatchHistory executes the 'patch-history' CLI command, printing every
// locally applied patch recorded in .neurocode/patch-history.json.
//
// Flags:
//   - --json: Output the full history as JSON
func runPatchHistory(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("patch-history", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: neurocode patch-history [options]

Shows every local patch recorded by 'neurocode patch --apply'.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	p := openProject(globals)
	history, err := p.PatchHistory()
	if err != nil {
		fatal(globals, err)
	}

	if globals.JSON {
		_ = output.JSON(history)
		return
	}

	if len(history.Entries) == 0 {
		fmt.Println("No patches recorded")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tFILE\tFUNCTION\tSTRATEGY\tNO-CHANGE")
	for _, e := range history.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", e.Timestamp, e.File, e.TargetFunction, e.Strategy, e.NoChange)
	}
	w.Flush()
}

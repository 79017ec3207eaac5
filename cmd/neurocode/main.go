// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package main implements the neurocode CLI: build and query a persistent
// structural representation of a Python repository.
//
// Usage:
//
//	neurocode [global options] <command> [options]
//
//	neurocode ir                               Build/refresh the on-disk IR
//	neurocode check [--module PATH]            Run structural diagnostics
//	neurocode query <kind> [symbol]            Run a graph query
//	neurocode embed                            Generate semantic embeddings
//	neurocode search <text>                    Semantic search over embeddings
//	neurocode explain <file> [--symbol NAME]   Build an explain bundle
//	neurocode status                           Show IR freshness and counts
//	neurocode patch <file> --fix TEXT          Build or apply a patch plan
//	neurocode patch-history                    Show recorded patch history
//
// Global options (--root, --json, --quiet, --no-color, --version) come
// before the command name.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gabrielekarra/neurocode/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags carries the flags common to every subcommand.
type GlobalFlags struct {
	Root    string
	JSON    bool
	Quiet   bool
	NoColor bool
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		root        = flag.String("root", ".", "Repository root")
		jsonOutput  = flag.Bool("json", false, "Output as JSON")
		quiet       = flag.Bool("quiet", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `neurocode - structural code intelligence CLI

Usage:
  neurocode <command> [options]

Commands:
  ir             Build or refresh the on-disk repository IR
  check          Run structural diagnostics over the IR
  query          Run a graph query (callers/callees/fan-in/fan-out)
  embed          Generate semantic embeddings for all functions
  search          Semantic search over generated embeddings
  explain        Build an explain bundle for a file or symbol
  status         Show IR freshness and repository counts
  patch          Build or apply a patch plan for one symbol
  patch-history  Show the recorded local patch history

Global Options:
  --root       Repository root (default: .)
  --json       Output as JSON
  --quiet      Suppress progress output
  --no-color   Disable colored output
  --version    Show version and exit

Examples:
  neurocode ir
  neurocode --json check
  neurocode query callers app.helper
  neurocode explain app.py --symbol main
  neurocode patch app.py --symbol main --fix "guard against empty input"

Data Storage:
  IR and embeddings are stored under <root>/.neurocode/
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("neurocode version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	globals := GlobalFlags{Root: *root, JSON: *jsonOutput, Quiet: *quiet, NoColor: *noColor}
	if globals.JSON {
		globals.Quiet = true
	}
	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "ir":
		runIR(cmdArgs, globals)
	case "check":
		runCheck(cmdArgs, globals)
	case "query":
		runQuery(cmdArgs, globals)
	case "embed":
		runEmbed(cmdArgs, globals)
	case "search":
		runSearch(cmdArgs, globals)
	case "explain":
		runExplain(cmdArgs, globals)
	case "status":
		runStatus(cmdArgs, globals)
	case "patch":
		runPatch(cmdArgs, globals)
	case "patch-history":
		runPatchHistory(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

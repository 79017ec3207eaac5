// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/gabrielekarra/neurocode/internal/output"
	"github.com/gabrielekarra/neurocode/internal/ui"
	"github.com/gabrielekarra/neurocode/pkg/metrics"
	"github.com/gabrielekarra/neurocode/pkg/patchplan"
)

// runPatch executes the 'patch' CLI command. By default it builds an
// LLM-roundtrippable patch plan bundle for a file/symbol and prints it as
// JSON; with --apply it instead applies a local heuristic patch (guard
// clause, stub injection, or TODO) directly to the file.
//
// Usage: neurocode patch <file> --fix TEXT [options]
func runPatch(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	symbol := fs.StringP("symbol", "s", "", "Symbol to anchor the patch to")
	fix := fs.StringP("fix", "f", "", "Natural-language description of the desired fix")
	k := fs.Int("k", 5, "Number of semantic neighbors to include in the bundle's context")
	apply := fs.Bool("apply", false, "Apply a local heuristic patch instead of building a bundle")
	dryRun := fs.Bool("dry-run", false, "With --apply, compute the diff without writing the file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: neurocode patch <file> --fix TEXT [options]

Without --apply, builds a patch plan bundle (IR/call-graph/diagnostics
context plus candidate operations) suitable for handing to an LLM.

With --apply, applies a local heuristic patch directly: a guard clause for
an optional parameter, a stub injection, or a TODO marker, whichever first
applies to the target function.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 || *fix == "" {
		fs.Usage()
		os.Exit(1)
	}
	relFile := fs.Arg(0)

	p := openProject(globals)
	repo := mustLoadRepository(globals, p)

	if *apply {
		start := time.Now()
		result, err := p.ApplyLocalPatch(repo, relFile, *symbol, *fix, *dryRun, nowRFC3339())
		metrics.RecordPatchApplied(time.Since(start).Seconds())
		if err != nil {
			fatal(globals, err)
		}
		if globals.JSON {
			_ = output.JSON(result)
			return
		}
		printApplyResult(result)
		return
	}

	store, err := p.LoadEmbeddingStore()
	if err != nil {
		fatal(globals, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	bundle, err := p.BuildPatchPlan(ctx, repo, relFile, *symbol, *fix, *k, engineVersion, store)
	metrics.RecordPatchPlanBuilt(time.Since(start).Seconds())
	if err != nil {
		fatal(globals, err)
	}

	if errs := patchplan.ValidateBundle(bundle); len(errs) > 0 {
		metrics.RecordPatchValidationErrors(len(errs))
		for _, e := range errs {
			ui.Warningf("%s", e.Error())
		}
	}

	_ = output.JSON(bundle)
}

func printApplyResult(result *patchplan.Result) {
	if result.NoChange {
		ui.Warningf("no change: %s", result.Summary)
		return
	}
	ui.Successf("%s (%s)", result.Summary, result.Strategy)
	if result.Diff != "" {
		fmt.Println(result.Diff)
	}
	for _, w := range result.Warnings {
		ui.Warning(w)
	}
}

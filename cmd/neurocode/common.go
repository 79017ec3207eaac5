// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gabrielekarra/neurocode/internal/errors"
	"github.com/gabrielekarra/neurocode/internal/output"
	"github.com/gabrielekarra/neurocode/pkg/project"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// engineVersion is embedded into every IR/embedding store/explain bundle so
// stale artifacts from an older build can be detected.
const engineVersion = "neurocode/0.1"

func newLogger(globals GlobalFlags) *slog.Logger {
	level := slog.LevelInfo
	if globals.Quiet {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openProject opens the project at globals.Root or exits the process with a
// formatted error on failure.
func openProject(globals GlobalFlags) *project.Project {
	p, err := project.Open(globals.Root, newLogger(globals))
	if err != nil {
		fatal(globals, errors.NewConfigError("could not open project", err.Error(), "check that --root points at a valid repository", err))
	}
	return p
}

// mustLoadRepository loads the persisted IR, or fails with guidance to run
// `neurocode ir` first.
func mustLoadRepository(globals GlobalFlags, p *project.Project) *rir.Repository {
	repo, err := p.LoadRepository()
	if err != nil {
		fatal(globals, errors.NewNotFoundError("no repository IR found", err.Error(), "run 'neurocode ir' first"))
	}
	return repo
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func fatal(globals GlobalFlags, err error) {
	if ue, ok := err.(*errors.UserError); ok {
		errors.FatalError(ue, globals.JSON)
		return
	}
	if globals.JSON {
		_ = output.JSONError(err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/gabrielekarra/neurocode/pkg/checks"
	"github.com/gabrielekarra/neurocode/pkg/query"
	"github.com/gabrielekarra/neurocode/pkg/search"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	_ = w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	return string(out)
}

func TestPrintDiagnostics_Empty(t *testing.T) {
	out := captureStdout(t, func() { printDiagnostics(nil) })
	if !strings.Contains(out, "no structural issues found") {
		t.Errorf("expected no-issues message, got %q", out)
	}
}

func TestPrintDiagnostics_Table(t *testing.T) {
	diags := []checks.Diagnostic{
		{Code: checks.UnusedImport, Severity: checks.Warning, Message: "os imported but unused", File: "app.py", Line: 1},
	}
	out := captureStdout(t, func() { printDiagnostics(diags) })
	if !strings.Contains(out, "UNUSED_IMPORT") || !strings.Contains(out, "app.py") {
		t.Errorf("expected diagnostic row in output, got %q", out)
	}
}

func TestPrintQueryResult_Edges(t *testing.T) {
	result := query.Result{
		Kind:  query.Callers,
		Edges: []query.Edge{{QualifiedName: "app.main", Module: "app", Line: 2}},
	}
	out := captureStdout(t, func() { printQueryResult(result) })
	if !strings.Contains(out, "app.main") || !strings.Contains(out, "(1 results)") {
		t.Errorf("expected one edge row, got %q", out)
	}
}

func TestPrintQueryResult_Ranked(t *testing.T) {
	result := query.Result{
		Kind:   query.FanIn,
		Ranked: []query.Ranked{{QualifiedName: "app.helper", Module: "app", Count: 3}},
	}
	out := captureStdout(t, func() { printQueryResult(result) })
	if !strings.Contains(out, "app.helper") || !strings.Contains(out, "3") {
		t.Errorf("expected ranked row, got %q", out)
	}
}

func TestPrintSearchResults_Empty(t *testing.T) {
	out := captureStdout(t, func() { printSearchResults(nil) })
	if !strings.Contains(out, "No results") {
		t.Errorf("expected no-results message, got %q", out)
	}
}

func TestPrintSearchResults_Table(t *testing.T) {
	results := []search.Result{
		{Name: "helper", Module: "app", File: "app.py", Line: 5, Score: 0.87},
	}
	out := captureStdout(t, func() { printSearchResults(results) })
	if !strings.Contains(out, "helper") || !strings.Contains(out, "0.8700") {
		t.Errorf("expected search result row, got %q", out)
	}
}

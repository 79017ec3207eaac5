// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package patchplan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// guardMarker is searched for verbatim to make guard insertion idempotent;
// re-running a patch whose guard is already present is a no-op rather than
// a duplicate insertion.
const guardMarker = "neurocode guard:"

// injectMarker plays the same role for stub injection.
const injectMarker = "neurocode inject:"

// Strategy names the heuristic used to produce a local, LLM-free patch.
type Strategy string

const (
	StrategyGuard  Strategy = "guard"
	StrategyInject Strategy = "inject"
	StrategyTodo   Strategy = "todo"
)

// Result is the outcome of applying one local patch to a function.
type Result struct {
	File           string   `json:"file"`
	Description    string   `json:"description"`
	TargetFunction string   `json:"target_function"`
	Strategy       Strategy `json:"strategy"`
	InsertedLine   int      `json:"inserted_line"`
	InsertedText   string   `json:"inserted_text"`
	Summary        string   `json:"summary"`
	Diff           string   `json:"diff"`
	Warnings       []string `json:"warnings"`
	NoChange       bool     `json:"no_change"`
}

// guardableParam returns the best parameter to null-guard: the first
// non-self/cls parameter, preferring one whose name suggests an optional
// value. The Go RIR does not carry type annotations, so this is a naming
// heuristic rather than the original's Optional/None/Any annotation check.
func guardableParam(fn *rir.FunctionIR) (rir.ParamIR, bool) {
	var candidates []rir.ParamIR
	for _, p := range fn.Params {
		if p.Name == "self" || p.Name == "cls" {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return rir.ParamIR{}, false
	}

	for _, p := range candidates {
		lower := strings.ToLower(p.Name)
		if strings.Contains(lower, "optional") || strings.HasPrefix(lower, "maybe_") {
			return p, true
		}
	}
	return candidates[0], true
}

func indentOf(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

// bodyInsertIndex returns the line index (0-based, within lines) of the
// first statement in fn's body, skipping the def line, the docstring (if
// any), and blank or comment-only lines — the Go analogue of the original's
// AST-driven body-start search, approximated from FunctionIR.Line/EndLine
// and FunctionIR.Docstring since Go has no re-parse of the function body.
func bodyInsertIndex(lines []string, fn *rir.FunctionIR) int {
	start := fn.Line
	if start >= len(lines) {
		return len(lines)
	}
	idx := start

	if fn.Docstring != "" {
		for idx < len(lines) && idx < fn.EndLine {
			trimmed := strings.TrimSpace(lines[idx])
			idx++
			if strings.Contains(trimmed, `"""`) || strings.Contains(trimmed, "'''") {
				if strings.Count(trimmed, `"""`) >= 2 || strings.Count(trimmed, "'''") >= 2 {
					break
				}
				for idx < len(lines) && idx < fn.EndLine {
					line := lines[idx]
					idx++
					if strings.Contains(line, `"""`) || strings.Contains(line, "'''") {
						break
					}
				}
				break
			}
		}
	}

	for idx < len(lines) && idx < fn.EndLine {
		trimmed := strings.TrimSpace(lines[idx])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			idx++
			continue
		}
		break
	}
	return idx
}

func hasMarker(lines []string, fn *rir.FunctionIR, marker string) bool {
	start := fn.Line - 1
	if start < 0 {
		start = 0
	}
	end := fn.EndLine
	if end > len(lines) {
		end = len(lines)
	}
	// A patch applied since the IR was built can push the body past
	// EndLine, so keep scanning while lines stay indented under the def.
	if start < len(lines) {
		defIndent := len(indentOf(lines[start]))
		for end < len(lines) {
			if l := lines[end]; strings.TrimSpace(l) != "" && len(indentOf(l)) <= defIndent {
				break
			}
			end++
		}
	}
	for i := start; i < end; i++ {
		if strings.Contains(lines[i], marker) {
			return true
		}
	}
	return false
}

func renderDiff(file, before, after string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: file,
		ToFile:   file,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}

// insertGuardClause inserts "if {param} is None: raise ValueError(...)" at
// the top of fn's body, guarding the best-candidate parameter.
func insertGuardClause(lines []string, fn *rir.FunctionIR, fix string) (newLines []string, insertedLine int, insertedText string, ok bool, warnings []string) {
	if hasMarker(lines, fn, guardMarker) {
		return lines, 0, "", false, nil
	}
	param, found := guardableParam(fn)
	if !found {
		return nil, 0, "", false, []string{"no guardable parameter found; falling back to a different strategy"}
	}

	idx := bodyInsertIndex(lines, fn)
	bodyIndent := "    "
	if idx < len(lines) {
		bodyIndent = indentOf(lines[idx])
	} else if idx > 0 {
		bodyIndent = indentOf(lines[idx-1]) + "    "
	}

	guardLine := fmt.Sprintf(`%sif %s is None:`, bodyIndent, param.Name)
	raiseLine := fmt.Sprintf(`%s    raise ValueError("%s %s")`, bodyIndent, guardMarker, fix)

	out := make([]string, 0, len(lines)+2)
	out = append(out, lines[:idx]...)
	out = append(out, guardLine, raiseLine)
	out = append(out, lines[idx:]...)

	return out, idx + 1, guardLine + "\n" + raiseLine, true, nil
}

// injectStub inserts a NotImplementedError stub at the top of fn's body.
func injectStub(lines []string, fn *rir.FunctionIR, fix string) (newLines []string, insertedLine int, insertedText string, ok bool) {
	if hasMarker(lines, fn, injectMarker) {
		return lines, 0, "", false
	}

	idx := bodyInsertIndex(lines, fn)
	bodyIndent := "    "
	if idx < len(lines) {
		bodyIndent = indentOf(lines[idx])
	} else if idx > 0 {
		bodyIndent = indentOf(lines[idx-1]) + "    "
	}

	stub := fmt.Sprintf(`%sraise NotImplementedError("%s %s")`, bodyIndent, injectMarker, fix)

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:idx]...)
	out = append(out, stub)
	out = append(out, lines[idx:]...)

	return out, idx + 1, stub, true
}

// ApplyOptions configures ApplyLocalPatch.
type ApplyOptions struct {
	DryRun bool
}

// ApplyLocalPatch applies a heuristic, LLM-free patch to the function in
// repo identified by symbol, for the given fix description. It tries the
// guard strategy first, falls back to inject, and falls back to todo if
// neither applies; each strategy is idempotent against a re-run.
func ApplyLocalPatch(repo *rir.Repository, repoRoot, relFilePath, symbol, fix string, opts ApplyOptions) (*Result, error) {
	mod := moduleByPath(repo, relFilePath)
	if mod == nil {
		return nil, fmt.Errorf("no module found in IR for file %s", relFilePath)
	}

	fn := findTargetFunction(repo, mod, symbol)
	if fn == nil {
		return nil, fmt.Errorf("no target function found in %s", relFilePath)
	}

	fullPath := filepath.Join(repoRoot, relFilePath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relFilePath, err)
	}
	before := string(content)
	lines := strings.Split(before, "\n")

	var (
		newLines     []string
		insertedLine int
		insertedText string
		strategy     Strategy
		warnings     []string
		noChange     bool
	)

	guardLines, guardLineNo, guardText, guardOK, guardWarnings := insertGuardClause(lines, fn, fix)
	warnings = append(warnings, guardWarnings...)
	switch {
	case guardOK:
		newLines, insertedLine, insertedText, strategy = guardLines, guardLineNo, guardText, StrategyGuard
	case hasMarker(lines, fn, guardMarker):
		newLines, strategy, noChange = lines, StrategyGuard, true
	default:
		injLines, injLineNo, injText, injOK := injectStub(lines, fn, fix)
		switch {
		case injOK:
			newLines, insertedLine, insertedText, strategy = injLines, injLineNo, injText, StrategyInject
		case hasMarker(lines, fn, injectMarker):
			newLines, strategy, noChange = lines, StrategyInject, true
		default:
			idx := bodyInsertIndex(lines, fn)
			indent := "    "
			if idx < len(lines) {
				indent = indentOf(lines[idx])
			}
			todo := fmt.Sprintf("%s# TODO(neurocode): %s", indent, fix)
			out := make([]string, 0, len(lines)+1)
			out = append(out, lines[:idx]...)
			out = append(out, todo)
			out = append(out, lines[idx:]...)
			newLines, insertedLine, insertedText, strategy = out, idx+1, todo, StrategyTodo
		}
	}

	after := strings.Join(newLines, "\n")
	diffText := ""
	if !noChange {
		diffText = renderDiff(relFilePath, before, after)
	}

	if !opts.DryRun && !noChange {
		if err := writeFileAtomic(fullPath, after); err != nil {
			return nil, err
		}
	}

	summary := fmt.Sprintf("applied %s strategy to %s", strategy, fn.QualifiedName)
	if noChange {
		summary = fmt.Sprintf("%s already patched (%s); no change", fn.QualifiedName, strategy)
	}

	return &Result{
		File:           relFilePath,
		Description:    fix,
		TargetFunction: fn.QualifiedName,
		Strategy:       strategy,
		InsertedLine:   insertedLine,
		InsertedText:   insertedText,
		Summary:        summary,
		Diff:           diffText,
		Warnings:       warnings,
		NoChange:       noChange,
	}, nil
}

func writeFileAtomic(path, content string) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

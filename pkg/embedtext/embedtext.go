// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package embedtext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// Document is one unit of embeddable text, one per non-module-entry
// function in the repository.
type Document struct {
	ID        string
	Module    string
	Name      string
	File      string
	Line      int
	Signature string
	Docstring string
	Text      string
}

// Build produces deterministic embedding documents from a resolved
// Repository: one per function (excluding the synthetic module-entry
// pseudo-function), ordered by module name then by line number.
func Build(repo *rir.Repository) []Document {
	functionByID := repo.FunctionByID()

	outgoing := map[int][]string{}
	for _, edge := range repo.CallEdges {
		if edge.CalleeFunctionID != nil {
			if callee, ok := functionByID[*edge.CalleeFunctionID]; ok {
				outgoing[edge.CallerFunctionID] = append(outgoing[edge.CallerFunctionID], callee.QualifiedName)
				continue
			}
		}
		outgoing[edge.CallerFunctionID] = append(outgoing[edge.CallerFunctionID], edge.Target)
	}

	modules := make([]rir.ModuleIR, len(repo.Modules))
	copy(modules, repo.Modules)
	sort.SliceStable(modules, func(i, j int) bool { return modules[i].ModuleName < modules[j].ModuleName })

	var docs []Document
	for _, mod := range modules {
		fns := make([]rir.FunctionIR, 0, len(mod.Functions))
		for _, fn := range mod.Functions {
			if fn.Kind == rir.FunctionKindModule {
				continue
			}
			fns = append(fns, fn)
		}
		sort.SliceStable(fns, func(i, j int) bool { return fns[i].Line < fns[j].Line })

		for _, fn := range fns {
			calls := uniqueSorted(outgoing[fn.ID])

			var lines []string
			lines = append(lines, fmt.Sprintf("module: %s", mod.ModuleName))
			lines = append(lines, fmt.Sprintf("function: %s", fn.QualifiedName))
			lines = append(lines, fmt.Sprintf("lineno: %d", fn.Line))
			if fn.Signature != "" {
				lines = append(lines, fmt.Sprintf("signature: %s", fn.Signature))
			} else {
				lines = append(lines, fmt.Sprintf("signature: def %s(...)", fn.QualifiedName))
			}
			if fn.Docstring != "" {
				lines = append(lines, fmt.Sprintf("docstring: %s", fn.Docstring))
			}
			if len(calls) > 0 {
				lines = append(lines, "calls: "+strings.Join(calls, ", "))
			}

			id := fn.SymbolID
			if id == "" {
				id = fn.QualifiedName
			}

			docs = append(docs, Document{
				ID:        id,
				Module:    mod.ModuleName,
				Name:      fn.Name,
				File:      mod.Path,
				Line:      fn.Line,
				Signature: fn.Signature,
				Docstring: fn.Docstring,
				Text:      strings.Join(lines, "\n"),
			})
		}
	}
	return docs
}

func uniqueSorted(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

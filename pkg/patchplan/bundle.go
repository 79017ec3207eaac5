// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package patchplan

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gabrielekarra/neurocode/pkg/explain"
	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// Op is one of the four operation kinds a patch plan operation may use.
type Op string

const (
	OpInsertBefore     Op = "insert_before"
	OpInsertAfter      Op = "insert_after"
	OpReplaceRange     Op = "replace_range"
	OpAppendToFunction Op = "append_to_function"
)

var validOps = map[Op]bool{
	OpInsertBefore:     true,
	OpInsertAfter:      true,
	OpReplaceRange:     true,
	OpAppendToFunction: true,
}

// Operation is one flat, file-anchored edit in a Bundle. The shape is
// intentionally flat (no nested "target" object) so it round-trips
// losslessly through an LLM without requiring the model to track a
// separate target struct per operation.
type Operation struct {
	ID          string `json:"id"`
	Op          Op     `json:"op"`
	Enabled     bool   `json:"enabled"`
	File        string `json:"file"`
	Symbol      string `json:"symbol"`
	Line        int    `json:"lineno"`
	EndLine     *int   `json:"end_lineno"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// Target identifies the symbol a Bundle is anchored to.
type Target struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
	Line   int    `json:"lineno"`
}

// Bundle is the complete LLM-roundtrippable patch plan payload: the
// explain context plus a flat list of candidate operations.
type Bundle struct {
	Version       int              `json:"version"`
	EngineVersion string           `json:"engine_version"`
	RepoRoot      string           `json:"repo_root"`
	File          string           `json:"file"`
	Module        string           `json:"module"`
	Fix           string           `json:"fix"`
	Target        *Target          `json:"target"`
	Context       *explain.Bundle  `json:"context"`
	Operations    []Operation      `json:"operations"`
}

// Options configures BuildBundle.
type Options struct {
	Symbol        string
	KNeighbors    int
	EngineVersion string
	ExplainOpts   explain.Options
}

func findTargetFunction(repo *rir.Repository, mod *rir.ModuleIR, symbol string) *rir.FunctionIR {
	if symbol != "" {
		norm := normalizeSymbol(symbol)
		for fi := range mod.Functions {
			fn := &mod.Functions[fi]
			if fn.QualifiedName == norm || hasSuffixDot(fn.QualifiedName, norm) {
				return fn
			}
		}
		return nil
	}

	var moduleLevel []*rir.FunctionIR
	for fi := range mod.Functions {
		fn := &mod.Functions[fi]
		if fn.ParentClassID == nil && fn.Kind != rir.FunctionKindModule {
			moduleLevel = append(moduleLevel, fn)
		}
	}
	candidates := moduleLevel
	if len(candidates) == 0 {
		for fi := range mod.Functions {
			fn := &mod.Functions[fi]
			if fn.Kind != rir.FunctionKindModule {
				candidates = append(candidates, fn)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Line < candidates[j].Line })
	return candidates[0]
}

func normalizeSymbol(symbol string) string {
	out := make([]byte, 0, len(symbol))
	for i := 0; i < len(symbol); i++ {
		if symbol[i] == ':' {
			out = append(out, '.')
		} else {
			out = append(out, symbol[i])
		}
	}
	return string(out)
}

func hasSuffixDot(qualified, name string) bool {
	suffix := "." + name
	return len(qualified) > len(suffix) && qualified[len(qualified)-len(suffix):] == suffix
}

func initialOperations(targetFn *rir.FunctionIR, fix, fileRel string) []Operation {
	var ops []Operation

	symbol := ""
	line := 1
	if targetFn != nil {
		symbol = targetFn.QualifiedName
		line = targetFn.Line
	}

	ops = append(ops, Operation{
		ID: "OP_1", Op: OpAppendToFunction, Enabled: true,
		File: fileRel, Symbol: symbol, Line: line,
		Description: fmt.Sprintf("Implement fix: %s", fix),
		Code:        "",
	})

	if targetFn != nil {
		ops = append(ops, Operation{
			ID: "OP_2", Op: OpInsertBefore, Enabled: true,
			File: fileRel, Symbol: symbol, Line: line,
			Description: fmt.Sprintf("Optional preamble for %s", symbol),
			Code:        "",
		})
	}
	return ops
}

// BuildBundle assembles a Bundle for relFilePath, anchored to opts.Symbol
// if given, describing fix.
func BuildBundle(ctx context.Context, repo *rir.Repository, repoRoot, relFilePath, fix string, opts Options) (*Bundle, error) {
	if fix == "" {
		return nil, fmt.Errorf("fix description must be provided")
	}

	mod := moduleByPath(repo, relFilePath)
	if mod == nil {
		return nil, fmt.Errorf("no module found in IR for file %s", relFilePath)
	}

	targetFn := findTargetFunction(repo, mod, opts.Symbol)
	if opts.Symbol != "" && targetFn == nil {
		return nil, fmt.Errorf("symbol not found in IR: %s", opts.Symbol)
	}

	explainOpts := opts.ExplainOpts
	explainOpts.KNeighbors = opts.KNeighbors
	explainOpts.EngineVersion = opts.EngineVersion
	if targetFn != nil {
		explainOpts.Symbol = targetFn.QualifiedName
	} else {
		explainOpts.Symbol = ""
	}

	explainBundle, err := explain.Build(ctx, repo, repoRoot, relFilePath, explainOpts)
	if err != nil {
		return nil, err
	}

	var target *Target
	if targetFn != nil {
		target = &Target{Symbol: targetFn.QualifiedName, Kind: "function", Line: targetFn.Line}
	}

	fileRel := filepath.ToSlash(relFilePath)
	return &Bundle{
		Version:       1,
		EngineVersion: opts.EngineVersion,
		RepoRoot:      repoRoot,
		File:          fileRel,
		Module:        mod.ModuleName,
		Fix:           fix,
		Target:        target,
		Context:       explainBundle,
		Operations:    initialOperations(targetFn, fix, fileRel),
	}, nil
}

func moduleByPath(repo *rir.Repository, relPath string) *rir.ModuleIR {
	relPath = filepath.ToSlash(relPath)
	for i := range repo.Modules {
		if repo.Modules[i].Path == relPath {
			return &repo.Modules[i]
		}
	}
	return nil
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// Kind selects which structural question Run answers.
type Kind string

const (
	Callers Kind = "callers"
	Callees Kind = "callees"
	FanIn   Kind = "fan-in"
	FanOut  Kind = "fan-out"
)

// Error reports a query that could not be answered, e.g. an unknown or
// ambiguous symbol.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Edge is one caller/callee relationship in a Result.
type Edge struct {
	QualifiedName string
	Module        string
	Line          int
}

// Ranked is one function's count in a fan-in/fan-out ranking.
type Ranked struct {
	QualifiedName string
	Module        string
	Count         int
}

// Result is the outcome of a single Run call; exactly one of Edges or
// Ranked is populated depending on Kind.
type Result struct {
	Kind   Kind
	Symbol string
	Edges  []Edge
	Ranked []Ranked
}

// Run answers one structural query. symbol is required for Callers and
// Callees; moduleFilter, if non-empty, restricts FanIn/FanOut (and the
// candidate search for Callers/Callees) to modules whose name has that
// prefix.
func Run(repo *rir.Repository, kind Kind, symbol, moduleFilter string) (Result, error) {
	switch kind {
	case Callers:
		return runCallers(repo, symbol, moduleFilter)
	case Callees:
		return runCallees(repo, symbol, moduleFilter)
	case FanIn:
		return runFanCounts(repo, moduleFilter, true), nil
	case FanOut:
		return runFanCounts(repo, moduleFilter, false), nil
	default:
		return Result{}, &Error{Message: fmt.Sprintf("unknown query kind %q", kind)}
	}
}

func modulesInScope(repo *rir.Repository, moduleFilter string) map[int]bool {
	scope := map[int]bool{}
	for _, mod := range repo.Modules {
		if moduleFilter == "" || mod.ModuleName == moduleFilter || strings.HasPrefix(mod.ModuleName, moduleFilter+".") {
			scope[mod.ID] = true
		}
	}
	return scope
}

// resolveFunction finds the function symbol refers to, first scoped to
// moduleFilter (if set) then across the whole repository, preferring an
// exact qualified-name or symbol-id match over a bare-name match; returns
// an *Error if no candidate matches or more than one does ambiguously.
func resolveFunction(repo *rir.Repository, symbol, moduleFilter string) (*rir.FunctionIR, error) {
	scope := modulesInScope(repo, moduleFilter)

	var exact []*rir.FunctionIR
	var loose []*rir.FunctionIR
	for mi := range repo.Modules {
		mod := &repo.Modules[mi]
		if !scope[mod.ID] {
			continue
		}
		for fi := range mod.Functions {
			fn := &mod.Functions[fi]
			if fn.SymbolID == symbol || fn.QualifiedName == symbol {
				exact = append(exact, fn)
				continue
			}
			if fn.Name == symbol || fn.Qualname == symbol {
				loose = append(loose, fn)
			}
		}
	}

	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		return nil, &Error{Message: fmt.Sprintf("symbol %q is ambiguous: %d exact matches", symbol, len(exact))}
	}
	if len(loose) == 1 {
		return loose[0], nil
	}
	if len(loose) > 1 {
		return nil, &Error{Message: fmt.Sprintf("symbol %q is ambiguous: %d candidates, qualify with a module prefix", symbol, len(loose))}
	}
	return nil, &Error{Message: fmt.Sprintf("no function found matching %q", symbol)}
}

func runCallers(repo *rir.Repository, symbol, moduleFilter string) (Result, error) {
	target, err := resolveFunction(repo, symbol, moduleFilter)
	if err != nil {
		return Result{}, err
	}
	functionByID := repo.FunctionByID()

	var edges []Edge
	for _, e := range repo.CallEdges {
		if e.CalleeFunctionID == nil || *e.CalleeFunctionID != target.ID {
			continue
		}
		if caller, ok := functionByID[e.CallerFunctionID]; ok {
			edges = append(edges, Edge{QualifiedName: caller.QualifiedName, Module: caller.Module, Line: e.Line})
		}
	}
	sortEdges(edges)
	return Result{Kind: Callers, Symbol: target.QualifiedName, Edges: edges}, nil
}

func runCallees(repo *rir.Repository, symbol, moduleFilter string) (Result, error) {
	caller, err := resolveFunction(repo, symbol, moduleFilter)
	if err != nil {
		return Result{}, err
	}
	functionByID := repo.FunctionByID()

	var edges []Edge
	for _, e := range repo.CallEdges {
		if e.CallerFunctionID != caller.ID {
			continue
		}
		if e.CalleeFunctionID == nil {
			continue
		}
		if callee, ok := functionByID[*e.CalleeFunctionID]; ok {
			edges = append(edges, Edge{QualifiedName: callee.QualifiedName, Module: callee.Module, Line: e.Line})
		}
	}
	sortEdges(edges)
	return Result{Kind: Callees, Symbol: caller.QualifiedName, Edges: edges}, nil
}

func sortEdges(edges []Edge) {
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Line != edges[j].Line {
			return edges[i].Line < edges[j].Line
		}
		return edges[i].QualifiedName < edges[j].QualifiedName
	})
}

// runFanCounts computes, for every function in scope, the number of
// distinct functions that call it (reverse=true, fan-in) or that it calls
// (reverse=false, fan-out), counting by resolved callee id where possible
// and falling back to the raw target text for unresolved calls so that
// distinct unresolved targets still contribute to fan-out.
func runFanCounts(repo *rir.Repository, moduleFilter string, reverse bool) Result {
	scope := modulesInScope(repo, moduleFilter)
	functionByID := repo.FunctionByID()

	distinct := map[int]map[string]bool{}
	for _, e := range repo.CallEdges {
		var subjectID int
		var inScope bool
		if reverse {
			if e.CalleeFunctionID == nil {
				continue
			}
			subjectID = *e.CalleeFunctionID
			if callee, ok := functionByID[subjectID]; ok {
				inScope = scope[callee.ModuleID]
			}
		} else {
			subjectID = e.CallerFunctionID
			if caller, ok := functionByID[subjectID]; ok {
				inScope = scope[caller.ModuleID]
			}
		}
		if !inScope {
			continue
		}

		key := "name:" + e.Target
		if reverse {
			key = fmt.Sprintf("id:%d", e.CallerFunctionID)
		} else if e.CalleeFunctionID != nil {
			key = fmt.Sprintf("id:%d", *e.CalleeFunctionID)
		}
		if distinct[subjectID] == nil {
			distinct[subjectID] = map[string]bool{}
		}
		distinct[subjectID][key] = true
	}

	var ranked []Ranked
	for mi := range repo.Modules {
		mod := &repo.Modules[mi]
		if !scope[mod.ID] {
			continue
		}
		for fi := range mod.Functions {
			fn := &mod.Functions[fi]
			count := len(distinct[fn.ID])
			if count == 0 {
				continue
			}
			ranked = append(ranked, Ranked{QualifiedName: fn.QualifiedName, Module: fn.Module, Count: count})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].QualifiedName < ranked[j].QualifiedName
	})

	kind := FanOut
	if reverse {
		kind = FanIn
	}
	return Result{Kind: kind, Ranked: ranked}
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// Severity is one of Info, Warning, or Error.
type Severity string

const (
	Info    Severity = "INFO"
	Warning Severity = "WARNING"
	Error   Severity = "ERROR"
)

// Code names a specific structural diagnostic.
type Code string

const (
	UnusedImport   Code = "UNUSED_IMPORT"
	UnusedFunction Code = "UNUSED_FUNCTION"
	HighFanout     Code = "HIGH_FANOUT"
	UnusedParam    Code = "UNUSED_PARAM"
	LongFunction   Code = "LONG_FUNCTION"
	CallCycle      Code = "CALL_CYCLE"
)

// defaultSeverity is consulted when Config.SeverityOverrides has no entry
// for a code.
var defaultSeverity = map[Code]Severity{
	UnusedImport:   Warning,
	UnusedFunction: Info,
	HighFanout:     Info,
	UnusedParam:    Info,
	LongFunction:   Info,
	CallCycle:      Warning,
}

// Config controls which checks run and at what thresholds/severities.
type Config struct {
	FanoutThreshold       int
	LongFunctionThreshold int
	EnabledChecks         map[Code]bool
	SeverityOverrides     map[Code]Severity
}

// DefaultConfig returns the checker's built-in defaults: all six checks
// enabled, fan-out threshold 10, long-function threshold 50 lines.
func DefaultConfig() Config {
	return Config{
		FanoutThreshold:       10,
		LongFunctionThreshold: 50,
		EnabledChecks: map[Code]bool{
			UnusedImport:   true,
			UnusedFunction: true,
			HighFanout:     true,
			UnusedParam:    true,
			LongFunction:   true,
			CallCycle:      true,
		},
		SeverityOverrides: map[Code]Severity{},
	}
}

func (c Config) enabled(code Code) bool {
	if c.EnabledChecks == nil {
		return true
	}
	v, ok := c.EnabledChecks[code]
	return !ok || v
}

func (c Config) severityFor(code Code) Severity {
	if sev, ok := c.SeverityOverrides[code]; ok {
		return sev
	}
	return defaultSeverity[code]
}

// Diagnostic is a single structural-check finding.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	File     string
	Module   string
	Function string
	Line     int
}

// Run dispatches every enabled check over the full repository and returns
// all diagnostics, sorted by (file, line, code, message).
func Run(repo *rir.Repository, cfg Config) []Diagnostic {
	var out []Diagnostic
	if cfg.enabled(UnusedImport) {
		out = append(out, checkUnusedImports(repo, cfg)...)
	}
	if cfg.enabled(UnusedFunction) {
		out = append(out, checkUnusedFunctions(repo, cfg)...)
	}
	if cfg.enabled(HighFanout) {
		out = append(out, checkHighFanout(repo, cfg)...)
	}
	if cfg.enabled(UnusedParam) {
		out = append(out, checkUnusedParams(repo, cfg)...)
	}
	if cfg.enabled(LongFunction) {
		out = append(out, checkLongFunctions(repo, cfg)...)
	}
	if cfg.enabled(CallCycle) {
		out = append(out, checkCallCycles(repo, cfg)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
	return out
}

// ForModule filters a Run result down to one module's path, used by the
// `check` CLI command's --module flag.
func ForModule(diagnostics []Diagnostic, path string) []Diagnostic {
	var out []Diagnostic
	for _, d := range diagnostics {
		if d.File == path {
			out = append(out, d)
		}
	}
	return out
}

// ExitCode returns 1 if any diagnostic is WARNING or ERROR severity,
// matching the CLI's automation-friendly exit convention.
func ExitCode(diagnostics []Diagnostic) int {
	for _, d := range diagnostics {
		if d.Severity == Warning || d.Severity == Error {
			return 1
		}
	}
	return 0
}

func checkUnusedImports(repo *rir.Repository, cfg Config) []Diagnostic {
	var out []Diagnostic
	for _, mod := range repo.Modules {
		if len(mod.Imports) == 0 {
			continue
		}
		used := usedSymbolPrefixes(mod)
		for _, imp := range mod.Imports {
			candidates := importCandidateSymbols(imp)
			if anyUsed(candidates, used) {
				continue
			}
			out = append(out, Diagnostic{
				Code:     UnusedImport,
				Severity: cfg.severityFor(UnusedImport),
				Message:  fmt.Sprintf("%s imported in %s but never used", importDisplayName(imp), mod.ModuleName),
				File:     mod.Path,
				Module:   mod.ModuleName,
			})
		}
	}
	return out
}

func usedSymbolPrefixes(mod rir.ModuleIR) map[string]bool {
	used := map[string]bool{}
	for _, fn := range mod.Functions {
		for _, call := range fn.Calls {
			if call.Target == "" {
				continue
			}
			parts := strings.Split(call.Target, ".")
			for i := 1; i <= len(parts); i++ {
				used[strings.Join(parts[:i], ".")] = true
			}
		}
	}
	return used
}

func importCandidateSymbols(imp rir.ImportEntry) []string {
	var candidates []string
	if imp.Alias != "" {
		candidates = append(candidates, imp.Alias)
	}
	switch imp.Kind {
	case rir.ImportPlain:
		candidates = append(candidates, lastDotSegment(imp.Name), imp.Name)
	case rir.ImportFrom:
		candidates = append(candidates, imp.Name)
		if imp.Module != "" {
			candidates = append(candidates, imp.Module+"."+imp.Name)
		}
	}
	return dedupeNonEmpty(candidates)
}

func dedupeNonEmpty(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func anyUsed(candidates []string, used map[string]bool) bool {
	for _, c := range candidates {
		if used[c] {
			return true
		}
	}
	return false
}

func importDisplayName(imp rir.ImportEntry) string {
	if imp.Kind == rir.ImportPlain {
		return imp.Name
	}
	if imp.Module != "" {
		return imp.Module + "." + imp.Name
	}
	return imp.Name
}

func lastDotSegment(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func checkUnusedFunctions(repo *rir.Repository, cfg Config) []Diagnostic {
	calledIDs := map[int]bool{}
	for _, edge := range repo.CallEdges {
		if edge.CalleeFunctionID != nil {
			calledIDs[*edge.CalleeFunctionID] = true
		}
	}

	var out []Diagnostic
	for _, mod := range repo.Modules {
		for _, fn := range mod.Functions {
			if shouldIgnoreForUnused(fn.Name) {
				continue
			}
			if calledIDs[fn.ID] {
				continue
			}
			out = append(out, Diagnostic{
				Code:     UnusedFunction,
				Severity: cfg.severityFor(UnusedFunction),
				Message:  fmt.Sprintf("%s is never called from any other function", fn.QualifiedName),
				File:     mod.Path,
				Module:   mod.ModuleName,
				Function: fn.Name,
				Line:     fn.Line,
			})
		}
	}
	return out
}

func shouldIgnoreForUnused(name string) bool {
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}
	if strings.HasPrefix(name, "_") {
		return true
	}
	if strings.HasPrefix(name, "test_") {
		return true
	}
	return name == "__module__"
}

func checkHighFanout(repo *rir.Repository, cfg Config) []Diagnostic {
	targetsByCaller := map[int]map[string]bool{}
	for _, edge := range repo.CallEdges {
		key := "name:" + edge.Target
		if edge.CalleeFunctionID != nil {
			key = fmt.Sprintf("id:%d", *edge.CalleeFunctionID)
		}
		if targetsByCaller[edge.CallerFunctionID] == nil {
			targetsByCaller[edge.CallerFunctionID] = map[string]bool{}
		}
		targetsByCaller[edge.CallerFunctionID][key] = true
	}

	var out []Diagnostic
	for _, mod := range repo.Modules {
		for _, fn := range mod.Functions {
			count := len(targetsByCaller[fn.ID])
			if count < cfg.FanoutThreshold {
				continue
			}
			out = append(out, Diagnostic{
				Code:     HighFanout,
				Severity: cfg.severityFor(HighFanout),
				Message:  fmt.Sprintf("%s calls %d distinct functions", fn.QualifiedName, count),
				File:     mod.Path,
				Module:   mod.ModuleName,
				Function: fn.Name,
				Line:     fn.Line,
			})
		}
	}
	return out
}

// checkUnusedParams flags declared parameters that are never read as a
// value anywhere in the function body. "Read" is pkg/extract's
// FunctionIR.ReferencedNames, collected at extraction time from every
// identifier in a load position (the tree-sitter equivalent of an
// ast.Name with ast.Load context) — covering a parameter used in a
// return, a condition, an arithmetic expression, or passed through as a
// plain call argument, not just one that is itself a call target.
func checkUnusedParams(repo *rir.Repository, cfg Config) []Diagnostic {
	var out []Diagnostic
	for _, mod := range repo.Modules {
		for _, fn := range mod.Functions {
			if len(fn.Params) == 0 {
				continue
			}
			referenced := referencedNames(fn)
			for _, param := range fn.Params {
				if param.Name == "self" || param.Name == "cls" {
					continue
				}
				if strings.HasPrefix(param.Name, "_") {
					continue
				}
				if referenced[param.Name] {
					continue
				}
				out = append(out, Diagnostic{
					Code:     UnusedParam,
					Severity: cfg.severityFor(UnusedParam),
					Message:  fmt.Sprintf("Parameter '%s' in %s.%s is never used", param.Name, mod.ModuleName, fn.Name),
					File:     mod.Path,
					Module:   mod.ModuleName,
					Function: fn.Name,
					Line:     param.Line,
				})
			}
		}
	}
	return out
}

func referencedNames(fn rir.FunctionIR) map[string]bool {
	referenced := make(map[string]bool, len(fn.ReferencedNames))
	for _, name := range fn.ReferencedNames {
		referenced[name] = true
	}
	return referenced
}

func checkLongFunctions(repo *rir.Repository, cfg Config) []Diagnostic {
	var out []Diagnostic
	for _, mod := range repo.Modules {
		for _, fn := range mod.Functions {
			if fn.EndLine == 0 || fn.Kind == rir.FunctionKindModule {
				continue
			}
			length := fn.EndLine - fn.Line + 1
			if length < cfg.LongFunctionThreshold {
				continue
			}
			out = append(out, Diagnostic{
				Code:     LongFunction,
				Severity: cfg.severityFor(LongFunction),
				Message:  fmt.Sprintf("%s.%s is %d lines long (threshold %d)", mod.ModuleName, fn.Name, length, cfg.LongFunctionThreshold),
				File:     mod.Path,
				Module:   mod.ModuleName,
				Function: fn.Name,
				Line:     fn.Line,
			})
		}
	}
	return out
}

func checkCallCycles(repo *rir.Repository, cfg Config) []Diagnostic {
	var out []Diagnostic
	for _, mod := range repo.Modules {
		localIDs := map[int]bool{}
		fnByID := map[int]rir.FunctionIR{}
		for _, fn := range mod.Functions {
			localIDs[fn.ID] = true
			fnByID[fn.ID] = fn
		}

		adjacency := map[int]map[int]bool{}
		for _, edge := range repo.CallEdges {
			if !localIDs[edge.CallerFunctionID] || edge.CalleeFunctionID == nil {
				continue
			}
			if !localIDs[*edge.CalleeFunctionID] {
				continue
			}
			if adjacency[edge.CallerFunctionID] == nil {
				adjacency[edge.CallerFunctionID] = map[int]bool{}
			}
			adjacency[edge.CallerFunctionID][*edge.CalleeFunctionID] = true
		}

		var cycles [][]int
		visited := map[int]bool{}
		onStack := map[int]bool{}

		var dfs func(node int, path []int)
		dfs = func(node int, path []int) {
			if onStack[node] {
				idx := indexOf(path, node)
				cycle := append(append([]int{}, path[idx:]...), node)
				cycles = append(cycles, cycle)
				return
			}
			if visited[node] {
				return
			}
			visited[node] = true
			onStack[node] = true
			nexts := make([]int, 0, len(adjacency[node]))
			for next := range adjacency[node] {
				nexts = append(nexts, next)
			}
			sort.Ints(nexts)
			for _, next := range nexts {
				dfs(next, append(path, next))
			}
			onStack[node] = false
		}

		for _, fn := range mod.Functions {
			if !visited[fn.ID] {
				dfs(fn.ID, []int{fn.ID})
			}
		}

		for _, cycle := range cycles {
			var names []string
			for _, id := range cycle {
				if fn, ok := fnByID[id]; ok {
					names = append(names, fn.QualifiedName)
				}
			}
			first := fnByID[cycle[0]]
			out = append(out, Diagnostic{
				Code:     CallCycle,
				Severity: cfg.severityFor(CallCycle),
				Message:  "Call cycle detected: " + strings.Join(names, " -> "),
				File:     mod.Path,
				Module:   mod.ModuleName,
				Function: first.Name,
				Line:     first.Line,
			})
		}
	}
	return out
}

func indexOf(path []int, node int) int {
	for i, v := range path {
		if v == node {
			return i
		}
	}
	return 0
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package explain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabrielekarra/neurocode/pkg/checks"
	"github.com/gabrielekarra/neurocode/pkg/embedding"
	"github.com/gabrielekarra/neurocode/pkg/rir"
	"github.com/gabrielekarra/neurocode/pkg/search"
)

const (
	functionSourceLimit = 40000
	fileSourceLimit     = 20000
)

// FunctionSummary is one function entry in a ModuleSummary.
type FunctionSummary struct {
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name"`
	Line          int    `json:"lineno"`
	NumCalls      int    `json:"num_calls"`
}

// ClassSummary is one class entry in a ModuleSummary.
type ClassSummary struct {
	Name          string   `json:"name"`
	QualifiedName string   `json:"qualified_name"`
	Line          int      `json:"lineno"`
	Methods       []string `json:"methods"`
}

// ModuleSummary is a structural digest of one module.
type ModuleSummary struct {
	Module    string            `json:"module"`
	Imports   []string          `json:"imports"`
	Functions []FunctionSummary `json:"functions"`
	Classes   []ClassSummary    `json:"classes"`
}

// Neighbor is one caller or callee in a CallGraph.
type Neighbor struct {
	Symbol string `json:"symbol"`
	Module string `json:"module"`
	File   string `json:"file"`
	Line   int    `json:"lineno"`
}

// CallGraph is the target function's direct callers and callees.
type CallGraph struct {
	Callers []Neighbor `json:"callers"`
	Callees []Neighbor `json:"callees"`
}

// CallGraphNeighbors repeats CallGraph tagged with the target symbol, for
// consumers that want the neighborhood without re-deriving the target.
type CallGraphNeighbors struct {
	Target  string     `json:"target"`
	Callers []Neighbor `json:"callers"`
	Callees []Neighbor `json:"callees"`
}

// RelatedFile is one file referenced by the bundle besides the primary one.
type RelatedFile struct {
	Path string `json:"path"`
}

// SourceSlice is the source text of one function, keyed by symbol id in
// Bundle.SourceSlices.
type SourceSlice struct {
	File      string `json:"file"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}

// Truncation reports whether any SourceSlice was cut short.
type Truncation struct {
	Applied           bool   `json:"applied"`
	Reason            string `json:"reason"`
	FunctionsIncluded int    `json:"functions_included"`
}

// CheckEntry is one structural-check diagnostic for the explained file.
type CheckEntry struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Module   string `json:"module"`
	Function string `json:"function"`
	Line     int    `json:"lineno"`
}

// SemanticNeighbor is one semantically similar function found via the
// embedding store.
type SemanticNeighbor struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Module    string  `json:"module"`
	Name      string  `json:"name"`
	File      string  `json:"file"`
	Line      int     `json:"lineno"`
	Signature string  `json:"signature"`
	Score     float64 `json:"score"`
}

// EmbeddingMetadata describes the embedding store backing SemanticNeighbors,
// or reports why it was unavailable.
type EmbeddingMetadata struct {
	Model     string `json:"model"`
	Provider  string `json:"provider"`
	StorePath string `json:"store_path"`
	Available bool   `json:"available"`
}

// Target identifies the symbol the bundle is focused on, if any.
type Target struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
	Line   int    `json:"lineno"`
}

// SourceText is the (possibly truncated) raw text of the explained file.
type SourceText struct {
	Text      string `json:"text"`
	Language  string `json:"language"`
	Truncated bool   `json:"truncated"`
}

// Bundle is the complete LLM-facing explain payload for one file.
type Bundle struct {
	Version       int    `json:"version"`
	EngineVersion string `json:"engine_version"`
	RepoRoot      string `json:"repo_root"`
	File          string `json:"file"`
	Module        string `json:"module"`
	Target        *Target `json:"target"`
	IR            struct {
		ModuleSummary ModuleSummary `json:"module_summary"`
	} `json:"ir"`
	CallGraph          CallGraph            `json:"call_graph"`
	CallGraphNeighbors CallGraphNeighbors   `json:"call_graph_neighbors"`
	RelatedFiles       []RelatedFile        `json:"related_files"`
	SourceSlices       map[string]SourceSlice `json:"source_slices"`
	Truncation         Truncation           `json:"truncation"`
	Checks             []CheckEntry         `json:"checks"`
	SemanticNeighbors  []SemanticNeighbor   `json:"semantic_neighbors"`
	Source             SourceText           `json:"source"`
	EmbeddingMetadata  EmbeddingMetadata    `json:"embedding_metadata"`
}

// Options configures Build. Store and Provider may be nil, in which case
// the bundle degrades to EmbeddingMetadata.Available=false and an empty
// SemanticNeighbors list rather than failing the whole build.
type Options struct {
	Symbol        string
	KNeighbors    int
	EngineVersion string
	ChecksConfig  checks.Config
	Store         *embedding.Store
	Provider      embedding.Provider
}

func moduleByPath(repo *rir.Repository, relPath string) *rir.ModuleIR {
	for i := range repo.Modules {
		if repo.Modules[i].Path == relPath {
			return &repo.Modules[i]
		}
	}
	return nil
}

func functionByQualifiedName(repo *rir.Repository, name string) *rir.FunctionIR {
	for mi := range repo.Modules {
		for fi := range repo.Modules[mi].Functions {
			fn := &repo.Modules[mi].Functions[fi]
			if fn.QualifiedName == name || strings.HasSuffix(fn.QualifiedName, "."+name) {
				return fn
			}
		}
	}
	return nil
}

func buildModuleSummary(repo *rir.Repository, mod *rir.ModuleIR) ModuleSummary {
	var imports []string
	for _, edge := range repo.ModuleImportEdges {
		if edge.ImporterModuleID == mod.ID {
			imports = append(imports, edge.ImportedModule)
		}
	}
	imports = uniqueSorted(imports)

	fns := make([]rir.FunctionIR, 0, len(mod.Functions))
	for _, fn := range mod.Functions {
		if fn.Kind != rir.FunctionKindModule {
			fns = append(fns, fn)
		}
	}
	sort.SliceStable(fns, func(i, j int) bool { return fns[i].Line < fns[j].Line })

	functionByID := repo.FunctionByID()

	var functions []FunctionSummary
	for _, fn := range fns {
		functions = append(functions, FunctionSummary{
			Name:          fn.Name,
			QualifiedName: fn.QualifiedName,
			Line:          fn.Line,
			NumCalls:      len(fn.Calls),
		})
	}

	classes := make([]rir.ClassIR, len(mod.Classes))
	copy(classes, mod.Classes)
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].Line < classes[j].Line })

	var classSummaries []ClassSummary
	for _, cls := range classes {
		var methods []string
		for _, id := range cls.MethodIDs {
			if fn, ok := functionByID[id]; ok {
				methods = append(methods, fn.QualifiedName)
			}
		}
		classSummaries = append(classSummaries, ClassSummary{
			Name:          cls.Name,
			QualifiedName: cls.QualifiedName,
			Line:          cls.Line,
			Methods:       methods,
		})
	}

	return ModuleSummary{Module: mod.ModuleName, Imports: imports, Functions: functions, Classes: classSummaries}
}

func uniqueSorted(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	sort.Strings(out)
	return out
}

func buildCallGraph(repo *rir.Repository, target *rir.FunctionIR) CallGraph {
	functionByID := repo.FunctionByID()
	moduleByID := repo.ModuleByID()

	var callers, callees []Neighbor
	for _, edge := range repo.CallEdges {
		if edge.CalleeFunctionID != nil && *edge.CalleeFunctionID == target.ID {
			if caller, ok := functionByID[edge.CallerFunctionID]; ok {
				file := ""
				if mod, ok := moduleByID[caller.ModuleID]; ok {
					file = mod.Path
				}
				callers = append(callers, Neighbor{Symbol: caller.SymbolID, Module: caller.Module, File: file, Line: edge.Line})
			}
		}
		if edge.CallerFunctionID == target.ID && edge.CalleeFunctionID != nil {
			if callee, ok := functionByID[*edge.CalleeFunctionID]; ok {
				file := ""
				if mod, ok := moduleByID[callee.ModuleID]; ok {
					file = mod.Path
				}
				callees = append(callees, Neighbor{Symbol: callee.SymbolID, Module: callee.Module, File: file, Line: edge.Line})
			}
		}
	}
	return CallGraph{Callers: callers, Callees: callees}
}

func checkEntries(repo *rir.Repository, cfg checks.Config, relPath string) []CheckEntry {
	diags := checks.ForModule(checks.Run(repo, cfg), relPath)
	out := make([]CheckEntry, 0, len(diags))
	for _, d := range diags {
		out = append(out, CheckEntry{
			Code: string(d.Code), Severity: string(d.Severity), Message: d.Message,
			File: d.File, Module: d.Module, Function: d.Function, Line: d.Line,
		})
	}
	return out
}

func functionSourceSlice(repoRoot string, fn *rir.FunctionIR, modulePaths map[int]string) (string, bool) {
	relPath, ok := modulePaths[fn.ModuleID]
	if !ok {
		relPath = strings.ReplaceAll(fn.Module, ".", "/") + ".py"
	}
	content, err := os.ReadFile(filepath.Join(repoRoot, relPath))
	if err != nil {
		return "", false
	}
	lines := strings.Split(string(content), "\n")

	start := fn.Line - 1
	if start < 0 {
		start = 0
	}
	end := fn.EndLine
	if end <= 0 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		start = end
	}
	text := strings.Join(lines[start:end], "\n")

	truncated := false
	if len(text) > functionSourceLimit {
		text = text[:functionSourceLimit]
		truncated = true
	}
	return text, truncated
}

func collectSourceSlices(repoRoot string, symbols []*rir.FunctionIR, modulePaths map[int]string) (map[string]SourceSlice, Truncation) {
	slices := map[string]SourceSlice{}
	trunc := Truncation{}
	for _, fn := range symbols {
		text, truncated := functionSourceSlice(repoRoot, fn, modulePaths)
		if text == "" {
			continue
		}
		id := fn.SymbolID
		if id == "" {
			id = fn.QualifiedName
		}
		slices[id] = SourceSlice{
			File:      strings.ReplaceAll(fn.Module, ".", "/") + ".py",
			Text:      text,
			Truncated: truncated,
		}
		if truncated {
			trunc.Applied = true
			trunc.Reason = "slice_truncated"
		}
		trunc.FunctionsIncluded++
	}
	return slices, trunc
}

// Build assembles an explain Bundle for relFilePath (repoRoot-relative),
// optionally focused on one symbol within it.
func Build(ctx context.Context, repo *rir.Repository, repoRoot, relFilePath string, opts Options) (*Bundle, error) {
	relFilePath = filepath.ToSlash(relFilePath)
	mod := moduleByPath(repo, relFilePath)
	if mod == nil {
		return nil, fmt.Errorf("no module found in IR for file %s", relFilePath)
	}

	var targetFn *rir.FunctionIR
	if opts.Symbol != "" {
		targetFn = functionByQualifiedName(repo, strings.ReplaceAll(opts.Symbol, ":", "."))
		if targetFn == nil {
			return nil, fmt.Errorf("symbol not found in IR: %s", opts.Symbol)
		}
	}

	callGraph := CallGraph{}
	var neighborFns []*rir.FunctionIR
	if targetFn != nil {
		callGraph = buildCallGraph(repo, targetFn)
		functionBySymbol := map[string]*rir.FunctionIR{}
		for mi := range repo.Modules {
			for fi := range repo.Modules[mi].Functions {
				fn := &repo.Modules[mi].Functions[fi]
				functionBySymbol[fn.SymbolID] = fn
			}
		}
		seen := map[string]bool{}
		for _, n := range append(append([]Neighbor{}, callGraph.Callers...), callGraph.Callees...) {
			if n.Symbol == "" || seen[n.Symbol] {
				continue
			}
			seen[n.Symbol] = true
			if fn, ok := functionBySymbol[n.Symbol]; ok {
				neighborFns = append(neighborFns, fn)
			}
		}
	}

	checkList := checkEntries(repo, opts.ChecksConfig, relFilePath)

	kNeighbors := opts.KNeighbors
	if kNeighbors <= 0 {
		kNeighbors = 10
	}

	var semanticNeighbors []SemanticNeighbor
	embeddingMeta := EmbeddingMetadata{Available: false}
	if opts.Store != nil {
		var queryVec []float32
		var err error
		if targetFn != nil {
			queryVec, err = search.QueryFromSymbol(opts.Store, targetFn.SymbolID)
		} else if opts.Provider != nil {
			content, readErr := os.ReadFile(filepath.Join(repoRoot, relFilePath))
			if readErr != nil {
				err = readErr
			} else {
				queryVec, err = search.QueryFromText(ctx, opts.Provider, string(content))
			}
		} else {
			err = fmt.Errorf("no embedding provider available for text query")
		}

		if err == nil {
			embeddingMeta = EmbeddingMetadata{
				Model:     opts.Store.Model,
				Provider:  "",
				StorePath: filepath.Join(repoRoot, ".neurocode", "ir-embeddings.toon"),
				Available: true,
			}
			results := search.Run(opts.Store, queryVec, search.Options{ModuleFilter: mod.ModuleName, K: kNeighbors})
			for _, r := range results {
				semanticNeighbors = append(semanticNeighbors, SemanticNeighbor{
					ID: r.ID, Kind: r.Kind, Module: r.Module, Name: r.Name, File: r.File, Line: r.Line,
					Signature: r.Signature, Score: r.Score,
				})
			}
		}
	}

	moduleSummary := buildModuleSummary(repo, mod)

	sourceText := ""
	sourceTruncated := false
	if content, err := os.ReadFile(filepath.Join(repoRoot, relFilePath)); err == nil {
		sourceText = string(content)
		if len(sourceText) > fileSourceLimit {
			sourceText = sourceText[:fileSourceLimit]
			sourceTruncated = true
		}
	}

	var target *Target
	if targetFn != nil {
		target = &Target{Symbol: targetFn.QualifiedName, Kind: "function", Line: targetFn.Line}
	}

	modulePaths := map[int]string{}
	for mi := range repo.Modules {
		modulePaths[repo.Modules[mi].ID] = repo.Modules[mi].Path
	}

	relatedFiles := map[string]bool{relFilePath: true}
	for _, fn := range neighborFns {
		if p, ok := modulePaths[fn.ModuleID]; ok {
			relatedFiles[p] = true
		}
	}

	var sliceSymbols []*rir.FunctionIR
	if targetFn != nil {
		sliceSymbols = append(sliceSymbols, targetFn)
		sliceSymbols = append(sliceSymbols, neighborFns...)
	} else {
		for fi := range mod.Functions {
			fn := &mod.Functions[fi]
			if fn.Kind != rir.FunctionKindModule {
				sliceSymbols = append(sliceSymbols, fn)
			}
		}
	}
	sourceSlices, truncInfo := collectSourceSlices(repoRoot, sliceSymbols, modulePaths)

	bundle := &Bundle{
		Version:       1,
		EngineVersion: opts.EngineVersion,
		RepoRoot:      repoRoot,
		File:          relFilePath,
		Module:        mod.ModuleName,
		Target:        target,
		CallGraph:     callGraph,
		CallGraphNeighbors: CallGraphNeighbors{
			Target:  targetSymbol(targetFn),
			Callers: callGraph.Callers,
			Callees: callGraph.Callees,
		},
		RelatedFiles:      sortedRelatedFiles(relatedFiles),
		SourceSlices:      sourceSlices,
		Truncation:        truncInfo,
		Checks:            checkList,
		SemanticNeighbors: semanticNeighbors,
		Source:            SourceText{Text: sourceText, Language: "python", Truncated: sourceTruncated},
		EmbeddingMetadata: embeddingMeta,
	}
	bundle.IR.ModuleSummary = moduleSummary
	return bundle, nil
}

func targetSymbol(fn *rir.FunctionIR) string {
	if fn == nil {
		return ""
	}
	return fn.SymbolID
}

func sortedRelatedFiles(set map[string]bool) []RelatedFile {
	var paths []string
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]RelatedFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, RelatedFile{Path: p})
	}
	return out
}

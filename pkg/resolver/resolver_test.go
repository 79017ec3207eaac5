// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resolver

import (
	"testing"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

func intPtr(v int) *int { return &v }

func TestResolve_SameModuleSimpleName(t *testing.T) {
	modules := []rir.ModuleIR{
		{
			Path:       "app.py",
			ModuleName: "app",
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "main", Qualname: "main", Calls: []rir.CallSite{{Line: 2, Target: "helper"}}},
				{ID: 1, Name: "helper", Qualname: "helper"},
			},
		},
	}

	repo := Resolve("/repo", modules)

	if len(repo.CallEdges) != 1 {
		t.Fatalf("expected 1 call edge, got %d", len(repo.CallEdges))
	}
	edge := repo.CallEdges[0]
	if edge.CalleeFunctionID == nil {
		t.Fatalf("expected resolved callee, got unresolved")
	}
	helperID := repo.Modules[0].Functions[1].ID
	if *edge.CalleeFunctionID != helperID {
		t.Errorf("expected callee id %d, got %d", helperID, *edge.CalleeFunctionID)
	}
}

func TestResolve_ExactQualifiedMatch(t *testing.T) {
	modules := []rir.ModuleIR{
		{
			Path:       "app.py",
			ModuleName: "app",
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "main", Qualname: "main", Calls: []rir.CallSite{{Line: 2, Target: "pkg.util:format"}}},
			},
		},
		{
			Path:       "pkg/util.py",
			ModuleName: "pkg.util",
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "format", Qualname: "format"},
			},
		},
	}

	repo := Resolve("/repo", modules)
	edge := findEdgeByLine(t, repo, 2)
	if edge.CalleeFunctionID == nil {
		t.Fatalf("expected resolved callee via exact symbol id match")
	}
	if edge.CalleeSymbolID != "pkg.util:format" {
		t.Errorf("expected callee symbol id pkg.util:format, got %s", edge.CalleeSymbolID)
	}
}

func TestResolve_ModuleAliasAttribute(t *testing.T) {
	modules := []rir.ModuleIR{
		{
			Path:       "app.py",
			ModuleName: "app",
			Imports:    []rir.ImportEntry{{Kind: rir.ImportPlain, Name: "pkg.util", Alias: "u"}},
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "main", Qualname: "main", Calls: []rir.CallSite{{Line: 3, Target: "u.format"}}},
			},
		},
		{
			Path:       "pkg/util.py",
			ModuleName: "pkg.util",
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "format", Qualname: "format"},
			},
		},
	}

	repo := Resolve("/repo", modules)
	edge := findEdgeByLine(t, repo, 3)
	if edge.CalleeFunctionID == nil {
		t.Fatalf("expected resolved callee via module alias attribute")
	}
}

func TestResolve_FromImportBinding(t *testing.T) {
	modules := []rir.ModuleIR{
		{
			Path:       "app.py",
			ModuleName: "app",
			Imports:    []rir.ImportEntry{{Kind: rir.ImportFrom, Module: "pkg.util", Name: "format"}},
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "main", Qualname: "main", Calls: []rir.CallSite{{Line: 2, Target: "format"}}},
			},
		},
		{
			Path:       "pkg/util.py",
			ModuleName: "pkg.util",
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "format", Qualname: "format"},
			},
		},
	}

	repo := Resolve("/repo", modules)
	edge := findEdgeByLine(t, repo, 2)
	if edge.CalleeFunctionID == nil {
		t.Fatalf("expected resolved callee via from-import local binding")
	}
}

func TestResolve_SelfWalksBaseClass(t *testing.T) {
	modules := []rir.ModuleIR{
		{
			Path:       "models.py",
			ModuleName: "models",
			Classes: []rir.ClassIR{
				{ID: 0, Name: "Base", QualifiedName: "Base", MethodIDs: []int{0}},
				{ID: 1, Name: "Derived", QualifiedName: "Derived", BaseNames: []string{"Base"}, MethodIDs: []int{1}},
			},
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "save", Qualname: "Base.save", ParentClassID: intPtr(0)},
				{
					ID: 1, Name: "commit", Qualname: "Derived.commit", ParentClassID: intPtr(1),
					Calls: []rir.CallSite{{Line: 5, Target: "self.save"}},
				},
			},
		},
	}

	repo := Resolve("/repo", modules)
	edge := findEdgeByLine(t, repo, 5)
	if edge.CalleeFunctionID == nil {
		t.Fatalf("expected self.save to resolve through the base class")
	}
	baseSave := repo.Modules[0].Functions[0].ID
	if *edge.CalleeFunctionID != baseSave {
		t.Errorf("expected callee id %d (Base.save), got %d", baseSave, *edge.CalleeFunctionID)
	}
}

func TestResolve_ClassNameMethod(t *testing.T) {
	modules := []rir.ModuleIR{
		{
			Path:       "models.py",
			ModuleName: "models",
			Classes: []rir.ClassIR{
				{ID: 0, Name: "Registry", QualifiedName: "Registry", MethodIDs: []int{0}},
			},
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "instance", Qualname: "Registry.instance", ParentClassID: intPtr(0)},
				{
					ID: 1, Name: "bootstrap", Qualname: "bootstrap",
					Calls: []rir.CallSite{{Line: 9, Target: "Registry.instance"}},
				},
			},
		},
	}

	repo := Resolve("/repo", modules)
	edge := findEdgeByLine(t, repo, 9)
	if edge.CalleeFunctionID == nil {
		t.Fatalf("expected Registry.instance to resolve as a ClassName.method call")
	}
}

func TestResolve_UnresolvableCallLeavesCalleeNil(t *testing.T) {
	modules := []rir.ModuleIR{
		{
			Path:       "app.py",
			ModuleName: "app",
			Functions: []rir.FunctionIR{
				{ID: 0, Name: "main", Qualname: "main", Calls: []rir.CallSite{{Line: 2, Target: "unknown_thing"}}},
			},
		},
	}

	repo := Resolve("/repo", modules)
	edge := findEdgeByLine(t, repo, 2)
	if edge.CalleeFunctionID != nil {
		t.Errorf("expected unresolved call to leave CalleeFunctionID nil, got %v", *edge.CalleeFunctionID)
	}
}

func findEdgeByLine(t *testing.T, repo *rir.Repository, line int) rir.CallEdge {
	t.Helper()
	for _, e := range repo.CallEdges {
		if e.Line == line {
			return e
		}
	}
	t.Fatalf("no call edge found at line %d", line)
	return rir.CallEdge{}
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rir

// ImportKind distinguishes a plain `import x` from a `from x import y`.
type ImportKind string

const (
	ImportPlain ImportKind = "import"
	ImportFrom  ImportKind = "from"
)

// FunctionKind distinguishes an ordinary function, a method, and the
// synthetic module-entry pseudo-function representing top-level statements.
type FunctionKind string

const (
	FunctionKindFunction FunctionKind = "function"
	FunctionKindMethod   FunctionKind = "method"
	FunctionKindModule   FunctionKind = "module"
)

// ImportEntry records one import statement as it appeared in source.
type ImportEntry struct {
	Kind  ImportKind
	// Module is the "from" source module text; empty for plain imports.
	Module string
	// Name is the imported symbol, or the imported module for plain imports.
	Name string
	// Alias is the local `as` binding, if any.
	Alias string
}

// CallSite is one syntactic call expression, owned by exactly one function.
type CallSite struct {
	Line int
	// Target is the raw textual call target, per the extractor's
	// textualization policy (bare name, dotted attribute chain, or an
	// opaque best-effort rendering).
	Target string
	// FromModuleEntry marks a call site that occurred directly in the
	// module-entry pseudo-function (file-scope code).
	FromModuleEntry bool
}

// ClassIR describes one class definition.
type ClassIR struct {
	ID             int
	ModuleID       int
	Name           string
	QualifiedName  string
	Module         string
	SymbolID       string
	Line           int
	BaseNames      []string
	MethodIDs      []int
}

// FunctionIR describes one function or method definition, or the
// module-entry pseudo-function.
type FunctionIR struct {
	ID            int
	ModuleID      int
	Name          string
	QualifiedName string
	Module        string
	// Qualname is QualifiedName with the module prefix stripped.
	Qualname      string
	SymbolID      string
	Kind          FunctionKind
	IsEntrypoint  bool
	Line          int
	EndLine       int
	ParentClassID *int
	// ParentClassQualifiedName caches the owning class's qualified name,
	// avoiding a lookup through ParentClassID in rendering paths.
	ParentClassQualifiedName string
	Signature                string
	Docstring                string
	Params                    []ParamIR
	Calls                     []CallSite
	// ReferencedNames lists every identifier read as a value anywhere in the
	// function body (including nested closures), used by the UNUSED_PARAM
	// check in place of scanning Calls targets.
	ReferencedNames []string
}

// ParamIR is a single formal parameter, used by the UNUSED_PARAM check.
type ParamIR struct {
	Name string
	Line int
}

// ModuleIR is one source file's structural model.
type ModuleIR struct {
	ID            int
	Path          string
	ModuleName    string
	FileHash      string
	HasMainGuard  bool
	EntrySymbolID string
	Entrypoints   []string
	Imports       []ImportEntry
	Classes       []ClassIR
	Functions     []FunctionIR
}

// ModuleImportEdge records that ImporterModuleID imports a module by name;
// the imported module may be external (no guarantee it exists as a Module).
type ModuleImportEdge struct {
	ImporterModuleID int
	ImportedModule    string
}

// CallEdge is the resolved (or partially resolved) relationship derived
// from one call site.
type CallEdge struct {
	CallerFunctionID int
	// CalleeFunctionID is nil when the call target could not be resolved.
	CalleeFunctionID *int
	CallerSymbolID   string
	// CalleeSymbolID is empty when unresolved.
	CalleeSymbolID string
	Line           int
	Target         string
}

// ConsoleScript is a `name => module:function` entry point declaration.
type ConsoleScript struct {
	Name   string
	Target string
}

// Repository is the top-level RIR container for one repository build.
type Repository struct {
	Root             string
	BuildTimestamp   string
	Modules          []ModuleIR
	ModuleImportEdges []ModuleImportEdge
	CallEdges        []CallEdge
	ConfigPaths      []string
	ConsoleScripts   []ConsoleScript
}

// NumModules, NumClasses, NumFunctions, NumCalls report repository-wide
// counts, used by the `repo:` header block written by pkg/toon.
func (r *Repository) NumModules() int { return len(r.Modules) }

func (r *Repository) NumClasses() int {
	n := 0
	for _, m := range r.Modules {
		n += len(m.Classes)
	}
	return n
}

func (r *Repository) NumFunctions() int {
	n := 0
	for _, m := range r.Modules {
		n += len(m.Functions)
	}
	return n
}

func (r *Repository) NumCalls() int {
	n := 0
	for _, m := range r.Modules {
		for _, f := range m.Functions {
			n += len(f.Calls)
		}
	}
	return n
}

// FunctionByID returns a map from function id to *FunctionIR. Callers that
// need this repeatedly should build their own index once; this helper is
// for one-off lookups.
func (r *Repository) FunctionByID() map[int]*FunctionIR {
	idx := make(map[int]*FunctionIR, r.NumFunctions())
	for mi := range r.Modules {
		m := &r.Modules[mi]
		for fi := range m.Functions {
			idx[m.Functions[fi].ID] = &m.Functions[fi]
		}
	}
	return idx
}

// ModuleByID returns a map from module id to *ModuleIR.
func (r *Repository) ModuleByID() map[int]*ModuleIR {
	idx := make(map[int]*ModuleIR, len(r.Modules))
	for mi := range r.Modules {
		idx[r.Modules[mi].ID] = &r.Modules[mi]
	}
	return idx
}

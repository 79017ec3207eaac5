// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resolver

import (
	"strings"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// index holds the cross-module lookup tables Phase B needs; built once
// from the repository Phase A produced, then reused for every call site.
type index struct {
	functionBySymbol map[string]*rir.FunctionIR
	// functionsByModuleAndName maps module name -> simple function/method
	// name -> candidate functions, for unqualified-name lookups.
	functionsByModuleAndName map[string]map[string][]*rir.FunctionIR
	classByModuleAndName     map[string]map[string]*rir.ClassIR
	// classByID supports `self`/`cls` resolution when a method's
	// owning class is known but only its id, not its name, is in hand.
	classByID    map[int]*rir.ClassIR
	functionByID map[int]*rir.FunctionIR
	moduleByName map[string]*rir.ModuleIR
	// importAliasModule maps (moduleName, alias) -> imported module path,
	// covering both `import pkg.sub as alias` and the implicit last-segment
	// alias of a bare `import pkg.sub`.
	importAliasModule map[string]map[string]string
	// fromImportBinding maps (moduleName, localName) -> source module path
	// for `from X import Y [as localName]`.
	fromImportBinding map[string]map[string]string
}

func buildIndex(repo *rir.Repository) *index {
	idx := &index{
		functionBySymbol:         make(map[string]*rir.FunctionIR),
		functionsByModuleAndName: make(map[string]map[string][]*rir.FunctionIR),
		classByModuleAndName:     make(map[string]map[string]*rir.ClassIR),
		classByID:                make(map[int]*rir.ClassIR),
		functionByID:             make(map[int]*rir.FunctionIR),
		moduleByName:             make(map[string]*rir.ModuleIR),
		importAliasModule:        make(map[string]map[string]string),
		fromImportBinding:        make(map[string]map[string]string),
	}

	for mi := range repo.Modules {
		mod := &repo.Modules[mi]
		idx.moduleByName[mod.ModuleName] = mod

		for ci := range mod.Classes {
			cls := &mod.Classes[ci]
			idx.classByID[cls.ID] = cls
			if idx.classByModuleAndName[mod.ModuleName] == nil {
				idx.classByModuleAndName[mod.ModuleName] = make(map[string]*rir.ClassIR)
			}
			idx.classByModuleAndName[mod.ModuleName][cls.Name] = cls
			idx.classByModuleAndName[mod.ModuleName][cls.QualifiedName] = cls
		}

		for fi := range mod.Functions {
			fn := &mod.Functions[fi]
			idx.functionBySymbol[fn.SymbolID] = fn
			idx.functionByID[fn.ID] = fn

			if idx.functionsByModuleAndName[mod.ModuleName] == nil {
				idx.functionsByModuleAndName[mod.ModuleName] = make(map[string][]*rir.FunctionIR)
			}
			byName := idx.functionsByModuleAndName[mod.ModuleName]
			byName[fn.Name] = append(byName[fn.Name], fn)
			if fn.Qualname != fn.Name {
				byName[fn.Qualname] = append(byName[fn.Qualname], fn)
			}
		}

		aliasMap := make(map[string]string)
		fromMap := make(map[string]string)
		for _, imp := range mod.Imports {
			switch imp.Kind {
			case rir.ImportPlain:
				alias := imp.Alias
				if alias == "" {
					alias = lastSegment(imp.Name)
				}
				aliasMap[alias] = imp.Name
			case rir.ImportFrom:
				if imp.Name == "*" {
					continue
				}
				local := imp.Alias
				if local == "" {
					local = imp.Name
				}
				fromMap[local] = imp.Module
			}
		}
		idx.importAliasModule[mod.ModuleName] = aliasMap
		idx.fromImportBinding[mod.ModuleName] = fromMap
	}

	return idx
}

func lastSegment(dotted string) string {
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}

// resolveCalls is Phase B. It walks every function's call sites and
// produces a CallEdge per site, resolved where possible by the six
// strategies documented on resolveCall.
func resolveCalls(repo *rir.Repository, idx *index) {
	for mi := range repo.Modules {
		mod := &repo.Modules[mi]
		for fi := range mod.Functions {
			caller := &mod.Functions[fi]
			for _, site := range caller.Calls {
				edge := rir.CallEdge{
					CallerFunctionID: caller.ID,
					CallerSymbolID:   caller.SymbolID,
					Line:             site.Line,
					Target:           site.Target,
				}
				if callee := resolveCall(idx, mod, caller, site.Target); callee != nil {
					id := callee.ID
					edge.CalleeFunctionID = &id
					edge.CalleeSymbolID = callee.SymbolID
				}
				repo.CallEdges = append(repo.CallEdges, edge)
			}
		}
	}
}

// resolveCall applies six ordered strategies to a call site's textual
// target, returning the first function they agree on:
//
//  1. Exact qualified match: the target, read as "<module>.<qualname>" or
//     directly as a symbol id, names a function verbatim.
//  2. Same-module simple name: an unqualified bare name matches exactly
//     one function defined in the caller's own module.
//  3. self/cls/super walk: a `self.`, `cls.`, or `super().` prefixed call
//     resolves against the caller's own class, then its base classes,
//     depth-first, in declaration order.
//  4. From-import local binding: the target's leading segment is a name
//     bound by `from X import Y` in the caller's module, and the
//     remaining segment names a function in module X.
//  5. Module-alias attribute: the target's leading segment is a module
//     import alias, and the remaining segment names a function in that
//     module.
//  6. ClassName.method: the target is `SomeClass.method`, where SomeClass
//     is a class known to the caller's module (imported or local),
//     covering classmethod/staticmethod call styles that skip `self`.
func resolveCall(idx *index, mod *rir.ModuleIR, caller *rir.FunctionIR, target string) *rir.FunctionIR {
	if target == "" {
		return nil
	}

	if fn, ok := idx.functionBySymbol[target]; ok {
		return fn
	}
	if strings.Contains(target, ".") {
		if fn, ok := idx.functionBySymbol[mod.ModuleName+":"+target]; ok {
			return fn
		}
		for i := strings.LastIndexByte(target, '.'); i > 0; i = strings.LastIndexByte(target[:i], '.') {
			if fn, ok := idx.functionBySymbol[target[:i]+":"+target[i+1:]]; ok {
				return fn
			}
		}
	}

	if !strings.Contains(target, ".") {
		if candidates := idx.functionsByModuleAndName[mod.ModuleName][target]; len(candidates) == 1 {
			return candidates[0]
		}
	}

	if fn := resolveSelfClsSuper(idx, caller, target); fn != nil {
		return fn
	}

	if fn := resolveFromImport(idx, mod, target); fn != nil {
		return fn
	}

	if fn := resolveModuleAlias(idx, mod, target); fn != nil {
		return fn
	}

	if fn := resolveClassNameMethod(idx, mod, target); fn != nil {
		return fn
	}

	return nil
}

func resolveSelfClsSuper(idx *index, caller *rir.FunctionIR, target string) *rir.FunctionIR {
	var rest string
	switch {
	case strings.HasPrefix(target, "self."):
		rest = strings.TrimPrefix(target, "self.")
	case strings.HasPrefix(target, "cls."):
		rest = strings.TrimPrefix(target, "cls.")
	case strings.HasPrefix(target, "super()."):
		rest = strings.TrimPrefix(target, "super().")
	default:
		return nil
	}
	if strings.Contains(rest, ".") || caller.ParentClassID == nil {
		return nil
	}

	startClass := idx.classByID[*caller.ParentClassID]
	if strings.HasPrefix(target, "super().") && startClass != nil {
		// super() begins the walk at the parent, skipping the caller's
		// own class even if it redefines the method.
		return walkBaseClasses(idx, startClass, rest, make(map[int]bool))
	}
	return walkClassHierarchy(idx, startClass, rest, make(map[int]bool))
}

// walkClassHierarchy looks for methodName on cls itself before walking
// its bases, matching normal attribute lookup (MRO-approximation via
// depth-first, left-to-right base order, with a visited set guarding
// against cyclic or repeated base declarations).
func walkClassHierarchy(idx *index, cls *rir.ClassIR, methodName string, visited map[int]bool) *rir.FunctionIR {
	if cls == nil || visited[cls.ID] {
		return nil
	}
	visited[cls.ID] = true
	for _, methodID := range cls.MethodIDs {
		if fn, ok := idx.functionByID[methodID]; ok && fn.Name == methodName {
			return fn
		}
	}
	return walkBaseClasses(idx, cls, methodName, visited)
}

func walkBaseClasses(idx *index, cls *rir.ClassIR, methodName string, visited map[int]bool) *rir.FunctionIR {
	if cls == nil {
		return nil
	}
	mod, ok := idx.moduleByName[cls.Module]
	if !ok {
		return nil
	}
	for _, baseName := range cls.BaseNames {
		base := resolveBaseClass(idx, mod, baseName)
		if found := walkClassHierarchy(idx, base, methodName, visited); found != nil {
			return found
		}
	}
	return nil
}

// resolveBaseClass resolves a base-class expression (possibly "alias.Name"
// for an imported base) to a ClassIR, reusing the same import-alias and
// from-import lookups that call-target resolution uses.
func resolveBaseClass(idx *index, mod *rir.ModuleIR, baseName string) *rir.ClassIR {
	if cls, ok := idx.classByModuleAndName[mod.ModuleName][baseName]; ok {
		return cls
	}
	if !strings.Contains(baseName, ".") {
		if target := idx.fromImportBinding[mod.ModuleName][baseName]; target != "" {
			if cls, ok := idx.classByModuleAndName[target][baseName]; ok {
				return cls
			}
		}
		return nil
	}
	parts := strings.SplitN(baseName, ".", 2)
	if targetModule := idx.importAliasModule[mod.ModuleName][parts[0]]; targetModule != "" {
		return idx.classByModuleAndName[targetModule][parts[1]]
	}
	return nil
}

func resolveFromImport(idx *index, mod *rir.ModuleIR, target string) *rir.FunctionIR {
	head := target
	rest := ""
	if i := strings.IndexByte(target, '.'); i >= 0 {
		head = target[:i]
		rest = target[i+1:]
	}
	sourceModule := idx.fromImportBinding[mod.ModuleName][head]
	if sourceModule == "" {
		return nil
	}
	name := head
	if rest != "" {
		name = rest
	}
	if candidates := idx.functionsByModuleAndName[sourceModule][name]; len(candidates) >= 1 {
		return candidates[0]
	}
	return nil
}

func resolveModuleAlias(idx *index, mod *rir.ModuleIR, target string) *rir.FunctionIR {
	if !strings.Contains(target, ".") {
		return nil
	}
	parts := strings.SplitN(target, ".", 2)
	targetModule := idx.importAliasModule[mod.ModuleName][parts[0]]
	if targetModule == "" {
		return nil
	}
	if candidates := idx.functionsByModuleAndName[targetModule][parts[1]]; len(candidates) >= 1 {
		return candidates[0]
	}
	return nil
}

func resolveClassNameMethod(idx *index, mod *rir.ModuleIR, target string) *rir.FunctionIR {
	if !strings.Contains(target, ".") {
		return nil
	}
	parts := strings.SplitN(target, ".", 2)
	className, methodName := parts[0], parts[1]

	cls := resolveBaseClass(idx, mod, className)
	if cls == nil {
		return nil
	}
	return walkClassHierarchy(idx, cls, methodName, make(map[int]bool))
}

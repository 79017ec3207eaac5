// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resolver

import (
	"fmt"
	"sort"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// assignIDs is Phase A. It takes modules in the order pkg/extract produced
// them (module-local ids only), sorts them by path for a stable build, and
// returns a Repository with dense repository-wide function ids, derived
// symbol ids, and class-id references remapped from module-local to global.
func assignIDs(root string, modules []rir.ModuleIR) *rir.Repository {
	sort.SliceStable(modules, func(i, j int) bool { return modules[i].Path < modules[j].Path })

	repo := &rir.Repository{Root: root}

	nextFunctionID := 0
	nextClassID := 0
	nextModuleID := 0

	for mi := range modules {
		mod := modules[mi]
		mod.ID = nextModuleID
		nextModuleID++

		// localClassID -> global class id, scoped to this module since
		// pkg/extract's class ids are only unique within one file.
		classIDRemap := make(map[int]int, len(mod.Classes))
		for ci := range mod.Classes {
			classIDRemap[mod.Classes[ci].ID] = nextClassID
			mod.Classes[ci].ID = nextClassID
			mod.Classes[ci].ModuleID = mod.ID
			mod.Classes[ci].Module = mod.ModuleName
			mod.Classes[ci].SymbolID = fmt.Sprintf("%s:%s", mod.ModuleName, mod.Classes[ci].QualifiedName)
			nextClassID++
		}

		for fi := range mod.Functions {
			fn := &mod.Functions[fi]
			fn.ID = nextFunctionID
			nextFunctionID++
			fn.ModuleID = mod.ID
			fn.SymbolID = fmt.Sprintf("%s:%s", mod.ModuleName, fn.Qualname)
			if fn.ParentClassID != nil {
				if globalID, ok := classIDRemap[*fn.ParentClassID]; ok {
					remapped := globalID
					fn.ParentClassID = &remapped
				}
			}
		}
		for ci := range mod.Classes {
			cls := &mod.Classes[ci]
			cls.MethodIDs = methodIDsOwnedBy(cls.ID, mod.Functions)
		}

		for _, imp := range mod.Imports {
			target := imp.Module
			if imp.Kind == rir.ImportPlain {
				target = imp.Name
			}
			if target != "" {
				repo.ModuleImportEdges = append(repo.ModuleImportEdges, rir.ModuleImportEdge{
					ImporterModuleID: mod.ID,
					ImportedModule:   target,
				})
			}
		}

		if len(mod.Classes) == 0 {
			mod.Classes = nil
		}
		repo.Modules = append(repo.Modules, mod)
	}

	return repo
}

// methodIDsOwnedBy collects the global function ids whose ParentClassID,
// already remapped to the class's final global id, equals classID.
func methodIDsOwnedBy(classID int, functions []rir.FunctionIR) []int {
	var ids []int
	for i := range functions {
		if functions[i].ParentClassID != nil && *functions[i].ParentClassID == classID {
			ids = append(ids, functions[i].ID)
		}
	}
	return ids
}

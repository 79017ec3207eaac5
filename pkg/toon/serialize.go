// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package toon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

func escapeValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\n", "\\n")
	value = strings.ReplaceAll(value, ",", "\\,")
	return value
}

func boolCell(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func intCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func joinPipe(values []string) string {
	return escapeValue(strings.Join(values, "|"))
}

// Serialize renders a Repository into the TOON text format. Output is
// deterministic: modules, classes, and functions are emitted in the order
// they appear on the Repository, which pkg/resolver has already sorted by
// path.
func Serialize(repo *rir.Repository) string {
	var b strings.Builder

	b.WriteString("repo:\n")
	fmt.Fprintf(&b, "  root: %s\n", repo.Root)
	if repo.BuildTimestamp != "" {
		fmt.Fprintf(&b, "  build_timestamp: %s\n", repo.BuildTimestamp)
	}
	fmt.Fprintf(&b, "  num_modules: %d\n", repo.NumModules())
	fmt.Fprintf(&b, "  num_classes: %d\n", repo.NumClasses())
	fmt.Fprintf(&b, "  num_functions: %d\n", repo.NumFunctions())
	fmt.Fprintf(&b, "  num_calls: %d\n", repo.NumCalls())
	b.WriteString("\n")

	writeModules(&b, repo)
	writeClasses(&b, repo)
	writeImports(&b, repo)
	writeFunctions(&b, repo)
	writeCalls(&b, repo)
	writeParams(&b, repo)
	writeModuleImports(&b, repo)
	writeCallGraph(&b, repo)
	writeConfig(&b, repo)

	return b.String()
}

func writeModules(b *strings.Builder, repo *rir.Repository) {
	fmt.Fprintf(b, "modules[%d]{module_id,module_name,path,file_hash,has_main_guard,entry_symbol_id,entrypoints,num_functions,num_imports}:\n", len(repo.Modules))
	for _, m := range repo.Modules {
		row := []string{
			strconv.Itoa(m.ID),
			escapeValue(m.ModuleName),
			escapeValue(m.Path),
			escapeValue(m.FileHash),
			boolCell(m.HasMainGuard),
			escapeValue(m.EntrySymbolID),
			joinPipe(m.Entrypoints),
			strconv.Itoa(len(m.Functions)),
			strconv.Itoa(len(m.Imports)),
		}
		fmt.Fprintf(b, "  %s\n", strings.Join(row, ","))
	}
	b.WriteString("\n")
}

func writeClasses(b *strings.Builder, repo *rir.Repository) {
	var all []rir.ClassIR
	for _, m := range repo.Modules {
		all = append(all, m.Classes...)
	}
	fmt.Fprintf(b, "classes[%d]{class_id,module_id,name,qualified_name,module,symbol_id,lineno,base_names,num_methods}:\n", len(all))
	for _, c := range all {
		row := []string{
			strconv.Itoa(c.ID),
			strconv.Itoa(c.ModuleID),
			escapeValue(c.Name),
			escapeValue(c.QualifiedName),
			escapeValue(c.Module),
			escapeValue(c.SymbolID),
			strconv.Itoa(c.Line),
			joinPipe(c.BaseNames),
			strconv.Itoa(len(c.MethodIDs)),
		}
		fmt.Fprintf(b, "  %s\n", strings.Join(row, ","))
	}
	b.WriteString("\n")
}

func writeImports(b *strings.Builder, repo *rir.Repository) {
	type importRow struct {
		moduleID int
		imp      rir.ImportEntry
	}
	var all []importRow
	for _, m := range repo.Modules {
		for _, imp := range m.Imports {
			all = append(all, importRow{m.ID, imp})
		}
	}
	fmt.Fprintf(b, "imports[%d]{module_id,kind,module,name,alias}:\n", len(all))
	for _, r := range all {
		row := []string{
			strconv.Itoa(r.moduleID),
			escapeValue(string(r.imp.Kind)),
			escapeValue(r.imp.Module),
			escapeValue(r.imp.Name),
			escapeValue(r.imp.Alias),
		}
		fmt.Fprintf(b, "  %s\n", strings.Join(row, ","))
	}
	b.WriteString("\n")
}

func writeFunctions(b *strings.Builder, repo *rir.Repository) {
	var all []rir.FunctionIR
	for _, m := range repo.Modules {
		all = append(all, m.Functions...)
	}
	fmt.Fprintf(b, "functions[%d]{function_id,module_id,name,qualified_name,module,qualname,symbol_id,kind,is_entrypoint,lineno,end_lineno,parent_class_id,parent_class_qualified_name,signature,docstring,num_calls,referenced_names}:\n", len(all))
	for _, fn := range all {
		row := []string{
			strconv.Itoa(fn.ID),
			strconv.Itoa(fn.ModuleID),
			escapeValue(fn.Name),
			escapeValue(fn.QualifiedName),
			escapeValue(fn.Module),
			escapeValue(fn.Qualname),
			escapeValue(fn.SymbolID),
			escapeValue(string(fn.Kind)),
			boolCell(fn.IsEntrypoint),
			strconv.Itoa(fn.Line),
			strconv.Itoa(fn.EndLine),
			intCell(fn.ParentClassID),
			escapeValue(fn.ParentClassQualifiedName),
			escapeValue(fn.Signature),
			escapeValue(fn.Docstring),
			strconv.Itoa(len(fn.Calls)),
			joinPipe(fn.ReferencedNames),
		}
		fmt.Fprintf(b, "  %s\n", strings.Join(row, ","))
	}
	b.WriteString("\n")
}

func writeCalls(b *strings.Builder, repo *rir.Repository) {
	type callRow struct {
		functionID int
		site       rir.CallSite
	}
	var all []callRow
	for _, m := range repo.Modules {
		for _, fn := range m.Functions {
			for _, site := range fn.Calls {
				all = append(all, callRow{fn.ID, site})
			}
		}
	}
	fmt.Fprintf(b, "calls[%d]{function_id,lineno,target}:\n", len(all))
	for _, r := range all {
		row := []string{
			strconv.Itoa(r.functionID),
			strconv.Itoa(r.site.Line),
			escapeValue(r.site.Target),
		}
		fmt.Fprintf(b, "  %s\n", strings.Join(row, ","))
	}
	b.WriteString("\n")
}

func writeParams(b *strings.Builder, repo *rir.Repository) {
	type paramRow struct {
		functionID int
		param      rir.ParamIR
	}
	var all []paramRow
	for _, m := range repo.Modules {
		for _, fn := range m.Functions {
			for _, p := range fn.Params {
				all = append(all, paramRow{fn.ID, p})
			}
		}
	}
	fmt.Fprintf(b, "params[%d]{function_id,name,lineno}:\n", len(all))
	for _, r := range all {
		row := []string{
			strconv.Itoa(r.functionID),
			escapeValue(r.param.Name),
			strconv.Itoa(r.param.Line),
		}
		fmt.Fprintf(b, "  %s\n", strings.Join(row, ","))
	}
	b.WriteString("\n")
}

func writeModuleImports(b *strings.Builder, repo *rir.Repository) {
	fmt.Fprintf(b, "module_imports[%d]{module_id,imported_module}:\n", len(repo.ModuleImportEdges))
	for _, e := range repo.ModuleImportEdges {
		row := []string{strconv.Itoa(e.ImporterModuleID), escapeValue(e.ImportedModule)}
		fmt.Fprintf(b, "  %s\n", strings.Join(row, ","))
	}
	b.WriteString("\n")
}

func writeCallGraph(b *strings.Builder, repo *rir.Repository) {
	fmt.Fprintf(b, "call_graph[%d]{caller_function_id,callee_function_id,lineno,target,caller_symbol_id,callee_symbol_id}:\n", len(repo.CallEdges))
	for _, e := range repo.CallEdges {
		calleeID := ""
		if e.CalleeFunctionID != nil {
			calleeID = strconv.Itoa(*e.CalleeFunctionID)
		}
		row := []string{
			strconv.Itoa(e.CallerFunctionID),
			calleeID,
			strconv.Itoa(e.Line),
			escapeValue(e.Target),
			escapeValue(e.CallerSymbolID),
			escapeValue(e.CalleeSymbolID),
		}
		fmt.Fprintf(b, "  %s\n", strings.Join(row, ","))
	}
	b.WriteString("\n")
}

func writeConfig(b *strings.Builder, repo *rir.Repository) {
	total := len(repo.ConfigPaths) + len(repo.ConsoleScripts)
	fmt.Fprintf(b, "config[%d]{kind,value}:\n", total)
	for _, p := range repo.ConfigPaths {
		fmt.Fprintf(b, "  path,%s\n", escapeValue(p))
	}
	for _, cs := range repo.ConsoleScripts {
		fmt.Fprintf(b, "  console_script,%s\n", escapeValue(cs.Name+"=>"+cs.Target))
	}
}

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

func unescapeValue(value string) string {
	var b strings.Builder
	escaped := false
	for _, ch := range value {
		if escaped {
			b.WriteRune(ch)
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// parseRow splits one row into fields on unescaped commas; escaping is
// resolved per-field afterward by unescapeValue, matching the writer's
// "escape first, then comma-join" construction.
func parseRow(line string) []string {
	var fields []string
	var current strings.Builder
	escaped := false
	for _, ch := range line {
		switch {
		case escaped:
			current.WriteRune(ch)
			escaped = false
		case ch == '\\':
			escaped = true
			current.WriteRune(ch)
		case ch == ',':
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, current.String())
	for i, f := range fields {
		fields[i] = unescapeValue(f)
	}
	return fields
}

// parseTableHeader parses a line like "functions[12]{a,b,c}:" and returns
// the table name and its ordered field names. The row count inside the
// brackets is informational only; the parser trusts the rows that follow.
func parseTableHeader(line string) (name string, fields []string, err error) {
	line = strings.TrimSpace(line)
	bracketIdx := strings.IndexByte(line, '[')
	if bracketIdx < 0 {
		return "", nil, fmt.Errorf("toon: malformed table header %q", line)
	}
	name = strings.TrimSpace(line[:bracketIdx])

	braceStart := strings.IndexByte(line, '{')
	braceEnd := strings.IndexByte(line, '}')
	if braceStart < 0 || braceEnd < 0 || braceEnd < braceStart {
		return "", nil, fmt.Errorf("toon: malformed table header %q", line)
	}
	for _, f := range strings.Split(line[braceStart+1:braceEnd], ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	return name, fields, nil
}

func splitPipe(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, "|")
}

// Parse reads a TOON document back into a Repository. It understands only
// the tables Serialize writes: repo, modules, classes, imports, functions,
// calls, params, module_imports, call_graph, config.
func Parse(text string) (*rir.Repository, error) {
	tables, root, buildTimestamp, err := scanTables(text)
	if err != nil {
		return nil, err
	}
	if root == "" {
		return nil, fmt.Errorf("toon: missing repo.root header")
	}

	repo := &rir.Repository{Root: root, BuildTimestamp: buildTimestamp}

	modulesByID := map[int]*rir.ModuleIR{}
	for _, row := range tables["modules"] {
		mod, err := parseModuleRow(row)
		if err != nil {
			return nil, err
		}
		repo.Modules = append(repo.Modules, mod)
		modulesByID[mod.ID] = &repo.Modules[len(repo.Modules)-1]
	}

	classesByID := map[int]*rir.ClassIR{}
	for _, row := range tables["classes"] {
		cls, moduleID, err := parseClassRow(row)
		if err != nil {
			return nil, err
		}
		mod, ok := modulesByID[moduleID]
		if !ok {
			return nil, fmt.Errorf("toon: class %d references unknown module %d", cls.ID, moduleID)
		}
		mod.Classes = append(mod.Classes, cls)
		classesByID[cls.ID] = &mod.Classes[len(mod.Classes)-1]
	}

	for _, row := range tables["imports"] {
		imp, moduleID, err := parseImportRow(row)
		if err != nil {
			return nil, err
		}
		mod, ok := modulesByID[moduleID]
		if !ok {
			return nil, fmt.Errorf("toon: import references unknown module %d", moduleID)
		}
		mod.Imports = append(mod.Imports, imp)
	}

	functionsByID := map[int]*rir.FunctionIR{}
	for _, row := range tables["functions"] {
		fn, moduleID, err := parseFunctionRow(row)
		if err != nil {
			return nil, err
		}
		mod, ok := modulesByID[moduleID]
		if !ok {
			return nil, fmt.Errorf("toon: function %d references unknown module %d", fn.ID, moduleID)
		}
		mod.Functions = append(mod.Functions, fn)
		stored := &mod.Functions[len(mod.Functions)-1]
		functionsByID[fn.ID] = stored
		if stored.ParentClassID != nil {
			if cls, ok := classesByID[*stored.ParentClassID]; ok {
				cls.MethodIDs = append(cls.MethodIDs, stored.ID)
			}
		}
	}

	for _, row := range tables["calls"] {
		functionID, err := intField(row, "function_id")
		if err != nil {
			return nil, err
		}
		lineno, err := intField(row, "lineno")
		if err != nil {
			return nil, err
		}
		fn, ok := functionsByID[functionID]
		if !ok {
			continue
		}
		fn.Calls = append(fn.Calls, rir.CallSite{Line: lineno, Target: row["target"]})
	}

	for _, row := range tables["params"] {
		functionID, err := intField(row, "function_id")
		if err != nil {
			return nil, err
		}
		lineno, err := intField(row, "lineno")
		if err != nil {
			return nil, err
		}
		fn, ok := functionsByID[functionID]
		if !ok {
			continue
		}
		fn.Params = append(fn.Params, rir.ParamIR{Name: row["name"], Line: lineno})
	}

	for _, row := range tables["module_imports"] {
		moduleID, err := intField(row, "module_id")
		if err != nil {
			return nil, err
		}
		repo.ModuleImportEdges = append(repo.ModuleImportEdges, rir.ModuleImportEdge{
			ImporterModuleID: moduleID,
			ImportedModule:   row["imported_module"],
		})
	}

	for _, row := range tables["call_graph"] {
		edge, err := parseCallGraphRow(row, functionsByID)
		if err != nil {
			return nil, err
		}
		repo.CallEdges = append(repo.CallEdges, edge)
	}

	for _, row := range tables["config"] {
		switch row["kind"] {
		case "path":
			repo.ConfigPaths = append(repo.ConfigPaths, row["value"])
		case "console_script":
			if name, target, ok := strings.Cut(row["value"], "=>"); ok {
				repo.ConsoleScripts = append(repo.ConsoleScripts, rir.ConsoleScript{Name: name, Target: target})
			}
		}
	}

	return repo, nil
}

func scanTables(text string) (tables map[string][]map[string]string, root, buildTimestamp string, err error) {
	tables = map[string][]map[string]string{}
	var currentTable string
	var currentFields []string
	inRepoHeader := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			inRepoHeader = false
			continue
		}

		if trimmed == "repo:" {
			inRepoHeader = true
			currentTable = ""
			continue
		}
		if inRepoHeader && strings.HasPrefix(trimmed, "root:") {
			root = strings.TrimSpace(strings.TrimPrefix(trimmed, "root:"))
			continue
		}
		if inRepoHeader && strings.HasPrefix(trimmed, "build_timestamp:") {
			buildTimestamp = strings.TrimSpace(strings.TrimPrefix(trimmed, "build_timestamp:"))
			continue
		}
		if inRepoHeader {
			continue
		}

		if !strings.HasPrefix(line, " ") && strings.Contains(line, "[") && strings.Contains(line, "{") && strings.HasSuffix(trimmed, ":") {
			name, fields, perr := parseTableHeader(trimmed)
			if perr != nil {
				return nil, "", "", perr
			}
			currentTable = name
			currentFields = fields
			if _, ok := tables[currentTable]; !ok {
				tables[currentTable] = nil
			}
			continue
		}

		if currentTable != "" && strings.HasPrefix(line, " ") {
			values := parseRow(trimmed)
			row := make(map[string]string, len(currentFields))
			for i, f := range currentFields {
				if i < len(values) {
					row[f] = values[i]
				} else {
					row[f] = ""
				}
			}
			tables[currentTable] = append(tables[currentTable], row)
		}
	}

	return tables, root, buildTimestamp, nil
}

func intField(row map[string]string, name string) (int, error) {
	v, ok := row[name]
	if !ok || v == "" {
		return 0, fmt.Errorf("toon: missing required field %q", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("toon: field %q is not an integer: %w", name, err)
	}
	return n, nil
}

func optionalIntField(row map[string]string, name string) *int {
	v, ok := row[name]
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func parseModuleRow(row map[string]string) (rir.ModuleIR, error) {
	id, err := intField(row, "module_id")
	if err != nil {
		return rir.ModuleIR{}, err
	}
	return rir.ModuleIR{
		ID:            id,
		ModuleName:    row["module_name"],
		Path:          row["path"],
		FileHash:      row["file_hash"],
		HasMainGuard:  row["has_main_guard"] == "1",
		EntrySymbolID: row["entry_symbol_id"],
		Entrypoints:   splitPipe(row["entrypoints"]),
	}, nil
}

func parseClassRow(row map[string]string) (rir.ClassIR, int, error) {
	id, err := intField(row, "class_id")
	if err != nil {
		return rir.ClassIR{}, 0, err
	}
	moduleID, err := intField(row, "module_id")
	if err != nil {
		return rir.ClassIR{}, 0, err
	}
	lineno, err := intField(row, "lineno")
	if err != nil {
		return rir.ClassIR{}, 0, err
	}

	cls := rir.ClassIR{
		ID:            id,
		ModuleID:      moduleID,
		Name:          row["name"],
		QualifiedName: row["qualified_name"],
		Module:        row["module"],
		SymbolID:      row["symbol_id"],
		Line:          lineno,
		BaseNames:     splitPipe(row["base_names"]),
	}
	if cls.SymbolID == "" {
		cls.SymbolID = fmt.Sprintf("%s:%s", cls.Module, lastQualifiedSegment(cls.QualifiedName))
	}
	return cls, moduleID, nil
}

func lastQualifiedSegment(qualified string) string {
	if i := strings.IndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func parseImportRow(row map[string]string) (rir.ImportEntry, int, error) {
	moduleID, err := intField(row, "module_id")
	if err != nil {
		return rir.ImportEntry{}, 0, err
	}
	return rir.ImportEntry{
		Kind:   rir.ImportKind(row["kind"]),
		Module: row["module"],
		Name:   row["name"],
		Alias:  row["alias"],
	}, moduleID, nil
}

func parseFunctionRow(row map[string]string) (rir.FunctionIR, int, error) {
	id, err := intField(row, "function_id")
	if err != nil {
		return rir.FunctionIR{}, 0, err
	}
	moduleID, err := intField(row, "module_id")
	if err != nil {
		return rir.FunctionIR{}, 0, err
	}
	lineno, err := intField(row, "lineno")
	if err != nil {
		return rir.FunctionIR{}, 0, err
	}
	endLineno, _ := intField(row, "end_lineno")

	qualifiedName := row["qualified_name"]
	module := row["module"]
	qualname := row["qualname"]
	if qualname == "" {
		if strings.HasPrefix(qualifiedName, module+".") {
			qualname = strings.TrimPrefix(qualifiedName, module+".")
		} else {
			qualname = qualifiedName
		}
	}

	kind := rir.FunctionKind(row["kind"])
	if kind == "" {
		kind = rir.FunctionKindFunction
	}

	fn := rir.FunctionIR{
		ID:                       id,
		ModuleID:                 moduleID,
		Name:                     row["name"],
		QualifiedName:            qualifiedName,
		Module:                   module,
		Qualname:                 qualname,
		SymbolID:                 row["symbol_id"],
		Kind:                     kind,
		IsEntrypoint:             row["is_entrypoint"] == "1",
		Line:                     lineno,
		EndLine:                  endLineno,
		ParentClassID:            optionalIntField(row, "parent_class_id"),
		ParentClassQualifiedName: row["parent_class_qualified_name"],
		Signature:                row["signature"],
		Docstring:                row["docstring"],
		ReferencedNames:          splitPipe(row["referenced_names"]),
	}
	if fn.SymbolID == "" {
		fn.SymbolID = fmt.Sprintf("%s:%s", fn.Module, fn.Qualname)
	}
	return fn, moduleID, nil
}

func parseCallGraphRow(row map[string]string, functionsByID map[int]*rir.FunctionIR) (rir.CallEdge, error) {
	callerID, err := intField(row, "caller_function_id")
	if err != nil {
		return rir.CallEdge{}, err
	}
	lineno, err := intField(row, "lineno")
	if err != nil {
		return rir.CallEdge{}, err
	}

	calleeID := optionalIntField(row, "callee_function_id")

	callerSymbol := row["caller_symbol_id"]
	if callerSymbol == "" {
		if fn, ok := functionsByID[callerID]; ok {
			callerSymbol = fn.SymbolID
		}
	}
	calleeSymbol := row["callee_symbol_id"]
	if calleeSymbol == "" && calleeID != nil {
		if fn, ok := functionsByID[*calleeID]; ok {
			calleeSymbol = fn.SymbolID
		}
	}

	return rir.CallEdge{
		CallerFunctionID: callerID,
		CalleeFunctionID: calleeID,
		CallerSymbolID:   callerSymbol,
		CalleeSymbolID:   calleeSymbol,
		Line:             lineno,
		Target:           row["target"],
	}, nil
}

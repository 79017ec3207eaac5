// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// idAllocator hands out module-local temporary ids; pkg/resolver's Phase A
// reassigns dense repository-wide ids and remaps cross-references.
type idAllocator struct{ next int }

func (a *idAllocator) alloc() int {
	id := a.next
	a.next++
	return id
}

// pyWalkContext carries per-file state across the recursive class/function
// walk, mirroring the teacher's goFunctionContext shape.
type pyWalkContext struct {
	content     []byte
	filePath    string
	moduleName  string
	classIDs    *idAllocator
	funcIDs     *idAllocator
	anonCounter int
	nestedCls   []rir.ClassIR
}

// ModuleName derives the dotted module name for a repository-relative path,
// stripping a leading "src/" segment and the .py suffix, per the
// textualization policy shared with pkg/toon.
func ModuleName(relPath string) string {
	p := strings.TrimSuffix(relPath, ".py")
	p = strings.TrimPrefix(p, "src/")
	p = strings.TrimPrefix(p, "./")
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if part == "__init__" && i == len(parts)-1 {
			parts = parts[:i]
		}
	}
	if len(parts) == 0 {
		return "__init__"
	}
	return strings.Join(parts, ".")
}

// FileHash returns the hex sha256 digest used by pkg/freshness to detect
// changed source files between builds.
func FileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ExtractFile parses one Python source file and returns its unresolved
// module IR. Class and function ids are module-local; call targets are
// raw text, not yet resolved to callee ids.
func (p *TreeSitterParser) ExtractFile(relPath string, content []byte) (*rir.ModuleIR, error) {
	tree, err := p.parseTree(content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if n := countErrors(root); n > 0 {
		p.logger.Warn("extract.parse_errors", "file", relPath, "error_nodes", n)
	}

	moduleName := ModuleName(relPath)
	ctx := &pyWalkContext{
		content:    content,
		filePath:   relPath,
		moduleName: moduleName,
		classIDs:   &idAllocator{},
		funcIDs:    &idAllocator{},
	}

	mod := &rir.ModuleIR{
		Path:       relPath,
		ModuleName: moduleName,
		FileHash:   FileHash(content),
	}

	var moduleEntryCalls []rir.CallSite
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement", "import_from_statement":
			mod.Imports = append(mod.Imports, extractPythonImport(child, content)...)
		case "class_definition":
			cls, methods := p.extractPythonClass(ctx, child, "")
			mod.Classes = append(mod.Classes, cls)
			mod.Functions = append(mod.Functions, methods...)
		case "function_definition":
			mod.Functions = append(mod.Functions, p.extractPythonFunction(ctx, child, "", nil)...)
		case "if_statement":
			if isMainGuard(child, content) {
				mod.HasMainGuard = true
			}
			calls, nested := p.extractTopLevelCalls(ctx, child)
			moduleEntryCalls = append(moduleEntryCalls, calls...)
			mod.Functions = append(mod.Functions, nested...)
		default:
			calls, nested := p.extractTopLevelCalls(ctx, child)
			moduleEntryCalls = append(moduleEntryCalls, calls...)
			mod.Functions = append(mod.Functions, nested...)
		}
	}
	mod.Classes = append(mod.Classes, ctx.nestedCls...)

	if docstring := leadingDocstring(root, content); docstring != "" {
		_ = docstring // module docstrings are not currently modeled as a field; reserved for future use
	}

	entryID := ctx.funcIDs.alloc()
	entrySymbolID := fmt.Sprintf("%s:__module__", moduleName)
	for i := range moduleEntryCalls {
		moduleEntryCalls[i].FromModuleEntry = true
	}
	mod.Functions = append(mod.Functions, rir.FunctionIR{
		ID:            entryID,
		Name:          "__module__",
		QualifiedName: moduleName + ".__module__",
		Module:        moduleName,
		Qualname:      "__module__",
		SymbolID:      entrySymbolID,
		Kind:          rir.FunctionKindModule,
		Line:          1,
		EndLine:       endLineOf(root),
		Calls:         moduleEntryCalls,
	})
	mod.EntrySymbolID = entrySymbolID

	return mod, nil
}

func isMainGuard(node *sitter.Node, content []byte) bool {
	cond := node.ChildByFieldName("condition")
	if cond == nil {
		return false
	}
	text := nodeText(cond, content)
	text = strings.Join(strings.Fields(text), " ")
	return text == `__name__ == "__main__"` || text == `__name__ == '__main__'`
}

func extractPythonImport(node *sitter.Node, content []byte) []rir.ImportEntry {
	var entries []rir.ImportEntry
	switch node.Type() {
	case "import_statement":
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "dotted_name":
				entries = append(entries, rir.ImportEntry{Kind: rir.ImportPlain, Name: nodeText(child, content)})
			case "aliased_import":
				name := child.ChildByFieldName("name")
				alias := child.ChildByFieldName("alias")
				entries = append(entries, rir.ImportEntry{
					Kind:  rir.ImportPlain,
					Name:  nodeText(name, content),
					Alias: nodeText(alias, content),
				})
			}
		}
	case "import_from_statement":
		moduleNode := node.ChildByFieldName("module_name")
		module := nodeText(moduleNode, content)
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "dotted_name":
				if child == moduleNode {
					continue
				}
				entries = append(entries, rir.ImportEntry{Kind: rir.ImportFrom, Module: module, Name: nodeText(child, content)})
			case "aliased_import":
				name := child.ChildByFieldName("name")
				alias := child.ChildByFieldName("alias")
				entries = append(entries, rir.ImportEntry{
					Kind:   rir.ImportFrom,
					Module: module,
					Name:   nodeText(name, content),
					Alias:  nodeText(alias, content),
				})
			case "wildcard_import":
				entries = append(entries, rir.ImportEntry{Kind: rir.ImportFrom, Module: module, Name: "*"})
			}
		}
	}
	return entries
}

// extractPythonClass walks a class_definition, synthesizing module-local
// ClassIR and its methods. classPrefix nests through enclosing classes so
// a nested class's methods get a dotted qualified name, matching the
// teacher's classPrefix recursion for function_definition nodes.
func (p *TreeSitterParser) extractPythonClass(ctx *pyWalkContext, node *sitter.Node, classPrefix string) (rir.ClassIR, []rir.FunctionIR) {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, ctx.content)
	qualified := name
	if classPrefix != "" {
		qualified = classPrefix + "." + name
	}

	cls := rir.ClassIR{
		ID:            ctx.classIDs.alloc(),
		Name:          name,
		QualifiedName: qualified,
		Module:        ctx.moduleName,
		SymbolID:      fmt.Sprintf("%s:%s", ctx.moduleName, qualified),
		Line:          lineOf(node),
		BaseNames:     extractBaseNames(node, ctx.content),
	}

	var methods []rir.FunctionIR
	body := node.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			stmt := body.Child(i)
			switch stmt.Type() {
			case "function_definition":
				fns := p.extractPythonFunction(ctx, stmt, qualified, &cls.ID)
				cls.MethodIDs = append(cls.MethodIDs, fns[0].ID)
				methods = append(methods, fns...)
			case "class_definition":
				nested, nestedMethods := p.extractPythonClass(ctx, stmt, qualified)
				methods = append(methods, nestedMethods...)
				ctx.nestedCls = append(ctx.nestedCls, nested) // flattened into the module's class list by ExtractFile
			}
		}
	}
	return cls, methods
}

// extractBaseNames renders each superclass expression as text, stripping
// any generic subscript (Base[int]) at the first "[", and dropping keyword
// arguments such as metaclass=... which are not base classes.
func extractBaseNames(node *sitter.Node, content []byte) []string {
	argList := node.ChildByFieldName("superclasses")
	if argList == nil {
		return nil
	}
	var bases []string
	for i := 0; i < int(argList.ChildCount()); i++ {
		arg := argList.Child(i)
		switch arg.Type() {
		case "(", ")", ",":
			continue
		case "keyword_argument":
			continue
		default:
			text := nodeText(arg, content)
			if idx := strings.IndexByte(text, '['); idx >= 0 {
				text = text[:idx]
			}
			if text != "" {
				bases = append(bases, text)
			}
		}
	}
	return bases
}

// extractPythonFunction walks a function_definition into a FunctionIR, plus
// any function_definition nodes nested in its body. classPrefix and
// parentClassID are inherited unchanged by nested functions: a `def`
// nested inside another function is an independent FunctionIR whose
// ParentClassID comes from the innermost enclosing *class*, not the
// enclosing function, matching the teacher's classPrefix recursion for
// function_definition nodes. The returned slice always has the walked
// function itself as element 0, followed by its nested functions
// (transitively flattened).
func (p *TreeSitterParser) extractPythonFunction(ctx *pyWalkContext, node *sitter.Node, classPrefix string, parentClassID *int) []rir.FunctionIR {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, ctx.content)

	qualified := name
	if classPrefix != "" {
		qualified = classPrefix + "." + name
	}

	params := extractPythonParams(node, ctx.content)
	signature := buildSignature(node, ctx.content, name, params)

	kind := rir.FunctionKindFunction
	if parentClassID != nil {
		kind = rir.FunctionKindMethod
	}

	fn := rir.FunctionIR{
		ID:                       ctx.funcIDs.alloc(),
		Name:                     name,
		QualifiedName:            qualified,
		Module:                   ctx.moduleName,
		Qualname:                 qualified,
		SymbolID:                 fmt.Sprintf("%s:%s", ctx.moduleName, qualified),
		Kind:                     kind,
		IsEntrypoint:             classPrefix == "" && name == "main",
		Line:                     lineOf(node),
		EndLine:                  endLineOf(node),
		ParentClassID:            parentClassID,
		ParentClassQualifiedName: classPrefix,
		Signature:                signature,
		Docstring:                functionDocstring(node, ctx.content),
		Params:                   params,
	}

	var nested []rir.FunctionIR
	body := node.ChildByFieldName("body")
	if body != nil {
		fn.Calls, nested = p.extractPythonCalls(ctx, body, classPrefix, parentClassID)
		fn.ReferencedNames = collectReferencedNames(body, ctx.content)
	}
	return append([]rir.FunctionIR{fn}, nested...)
}

// collectReferencedNames walks a function body for every identifier read as
// a value, the tree-sitter equivalent of CPython's `ast.Name` nodes in
// `ast.Load` context. It descends into nested defs/classes/lambdas (a name
// read only inside a closure still counts as a use of the enclosing
// function's parameter), but excludes pure definition positions: a def or
// class's own name, parameter names, the member-name half of an attribute
// access, the keyword half of a keyword argument, and the plain identifier
// target of a simple assignment.
func collectReferencedNames(node *sitter.Node, content []byte) []string {
	seen := map[string]bool{}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "identifier":
			seen[nodeText(n, content)] = true
			return
		case "attribute":
			walk(n.ChildByFieldName("object"))
			return
		case "keyword_argument":
			walk(n.ChildByFieldName("value"))
			return
		case "assignment":
			if left := n.ChildByFieldName("left"); left != nil && left.Type() != "identifier" {
				walk(left)
			}
			walk(n.ChildByFieldName("type"))
			walk(n.ChildByFieldName("right"))
			return
		case "function_definition", "class_definition":
			walk(n.ChildByFieldName("parameters"))
			walk(n.ChildByFieldName("return_type"))
			walk(n.ChildByFieldName("body"))
			return
		case "parameters", "lambda_parameters":
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				switch child.Type() {
				case "typed_parameter", "default_parameter", "typed_default_parameter":
					for j := 1; j < int(child.ChildCount()); j++ {
						walk(child.Child(j))
					}
				}
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func extractPythonParams(node *sitter.Node, content []byte) []rir.ParamIR {
	paramsNode := node.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var params []rir.ParamIR
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		p := paramsNode.Child(i)
		var nameNode *sitter.Node
		switch p.Type() {
		case "identifier":
			nameNode = p
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			nameNode = p.Child(0)
		case "list_splat_pattern", "dictionary_splat_pattern":
			nameNode = p.Child(1)
		default:
			continue
		}
		if nameNode == nil {
			continue
		}
		text := nodeText(nameNode, content)
		if text == "" || text == "," || text == "(" || text == ")" {
			continue
		}
		params = append(params, rir.ParamIR{Name: text, Line: lineOf(p)})
	}
	return params
}

func buildSignature(node *sitter.Node, content []byte, name string, params []rir.ParamIR) string {
	paramsNode := node.ChildByFieldName("parameters")
	paramText := "()"
	if paramsNode != nil {
		paramText = nodeText(paramsNode, content)
	}
	sig := fmt.Sprintf("def %s%s", name, paramText)
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig += " -> " + nodeText(ret, content)
	}
	return sig
}

// functionDocstring returns the first statement's string literal text, if
// the function body opens with a bare string expression.
func functionDocstring(node *sitter.Node, content []byte) string {
	body := node.ChildByFieldName("body")
	return leadingDocstring(body, content)
}

func leadingDocstring(body *sitter.Node, content []byte) string {
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	strNode := first.Child(0)
	if strNode.Type() != "string" {
		return ""
	}
	return unquotePythonString(nodeText(strNode, content))
}

func unquotePythonString(raw string) string {
	s := strings.TrimSpace(raw)
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2 {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// extractTopLevelCalls walks a top-level statement for call sites that
// belong to the synthetic module-entry function. A nested function_definition
// (e.g. a helper defined under an `if __name__ == "__main__":` guard) is
// extracted as its own FunctionIR with no enclosing class, and its calls are
// excluded from the module-entry call list.
func (p *TreeSitterParser) extractTopLevelCalls(ctx *pyWalkContext, node *sitter.Node) ([]rir.CallSite, []rir.FunctionIR) {
	var sites []rir.CallSite
	var nested []rir.FunctionIR
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "function_definition" {
			nested = append(nested, p.extractPythonFunction(ctx, n, "", nil)...)
			return
		}
		if n.Type() == "class_definition" {
			return
		}
		if n.Type() == "call" {
			sites = append(sites, p.callSiteFromNode(ctx, n))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return sites, nested
}

// extractPythonCalls walks a function body for call expressions, rendering
// each target's full dotted chain rather than only the final attribute
// segment, so `self.repo.save()` textualizes as "self.repo.save" and
// `pkg.mod.fn()` as "pkg.mod.fn". A nested function_definition is extracted
// as an independent FunctionIR (classPrefix/parentClassID carried through
// unchanged, matching the teacher's classPrefix recursion), and its calls
// are excluded from this body's own call list.
func (p *TreeSitterParser) extractPythonCalls(ctx *pyWalkContext, body *sitter.Node, classPrefix string, parentClassID *int) ([]rir.CallSite, []rir.FunctionIR) {
	var sites []rir.CallSite
	var nested []rir.FunctionIR
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "function_definition" {
			nested = append(nested, p.extractPythonFunction(ctx, n, classPrefix, parentClassID)...)
			return
		}
		if n.Type() == "class_definition" || n.Type() == "lambda" {
			return
		}
		if n.Type() == "call" {
			sites = append(sites, p.callSiteFromNode(ctx, n))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return sites, nested
}

func (p *TreeSitterParser) callSiteFromNode(ctx *pyWalkContext, call *sitter.Node) rir.CallSite {
	fnNode := call.ChildByFieldName("function")
	target := renderCallTarget(fnNode, ctx.content)
	return rir.CallSite{Line: lineOf(call), Target: target}
}

// renderCallTarget renders a call's function expression as the full
// dotted-attribute chain (e.g. "self.db.query", "pkg.mod.fn"), falling
// back to the raw source text for call targets shaped like subscripts or
// parenthesized expressions that are not a plain name or attribute chain.
func renderCallTarget(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier":
		return nodeText(node, content)
	case "attribute":
		object := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		objText := renderCallTarget(object, content)
		attrText := nodeText(attr, content)
		if objText == "" {
			return attrText
		}
		return objText + "." + attrText
	default:
		return nodeText(node, content)
	}
}

// JoinQualified joins a module name and a qualname into a symbol id,
// matching the "<module>:<qualname>" convention shared with pkg/resolver.
func JoinQualified(module, qualname string) string {
	return path.Join(module) + ":" + qualname
}

// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielekarra/neurocode/pkg/rir"
)

// extractSource is a helper that parses an inline Python source string as
// if it lived at relPath within a repository.
func extractSource(t *testing.T, relPath, source string) *rir.ModuleIR {
	t.Helper()
	parser := NewTreeSitterParser(nil)
	mod, err := parser.ExtractFile(relPath, []byte(source))
	require.NoError(t, err, "ExtractFile should not error on valid Python source")
	return mod
}

func functionNames(mod *rir.ModuleIR) map[string]bool {
	names := make(map[string]bool, len(mod.Functions))
	for _, fn := range mod.Functions {
		if fn.Kind == rir.FunctionKindModule {
			continue
		}
		names[fn.Name] = true
	}
	return names
}

func TestExtractFile_Functions(t *testing.T) {
	mod := extractSource(t, "src/pkg/math_ops.py", `
def add(a: int, b: int) -> int:
    return a + b


def subtract(a: int, b: int) -> int:
    return a - b
`)

	names := functionNames(mod)
	assert.True(t, names["add"])
	assert.True(t, names["subtract"])
	assert.False(t, names["__module__"], "module-entry should be excluded from normal name lookups in this fixture")

	var add *rir.FunctionIR
	for i := range mod.Functions {
		if mod.Functions[i].Name == "add" {
			add = &mod.Functions[i]
		}
	}
	require.NotNil(t, add)
	assert.Contains(t, add.Signature, "def add(a: int, b: int) -> int")
	assert.Equal(t, "pkg.math_ops:add", add.SymbolID)
}

func TestExtractFile_ModuleNameStripsSrcPrefix(t *testing.T) {
	mod := extractSource(t, "src/pkg/math_ops.py", "def f():\n    pass\n")
	assert.Equal(t, "pkg.math_ops", mod.ModuleName)
}

func TestExtractFile_ClassesAndMethods(t *testing.T) {
	mod := extractSource(t, "services/users.py", `
class UserService:
    def __init__(self, db):
        self.db = db

    def find(self, user_id):
        return self.db.query(user_id)
`)

	require.Len(t, mod.Classes, 1)
	cls := mod.Classes[0]
	assert.Equal(t, "UserService", cls.Name)
	assert.Equal(t, "services.users:UserService", cls.SymbolID)

	names := functionNames(mod)
	assert.True(t, names["__init__"])
	assert.True(t, names["find"])

	var find *rir.FunctionIR
	for i := range mod.Functions {
		if mod.Functions[i].Name == "find" {
			find = &mod.Functions[i]
		}
	}
	require.NotNil(t, find)
	assert.Equal(t, rir.FunctionKindMethod, find.Kind)
	require.NotNil(t, find.ParentClassID)
	assert.Equal(t, cls.ID, *find.ParentClassID)
	assert.Equal(t, "UserService.find", find.QualifiedName)
}

func TestExtractFile_Inheritance(t *testing.T) {
	mod := extractSource(t, "zoo.py", `
class Animal:
    def speak(self):
        pass


class Dog(Animal):
    def speak(self):
        return "woof"


class Cat(Animal, Named):
    def speak(self):
        return "meow"
`)

	require.Len(t, mod.Classes, 3)
	byName := map[string]rir.ClassIR{}
	for _, c := range mod.Classes {
		byName[c.Name] = c
	}
	assert.Empty(t, byName["Animal"].BaseNames)
	assert.Equal(t, []string{"Animal"}, byName["Dog"].BaseNames)
	assert.Equal(t, []string{"Animal", "Named"}, byName["Cat"].BaseNames)
}

func TestExtractFile_CallTargetsRenderFullDottedChain(t *testing.T) {
	mod := extractSource(t, "app.py", `
def handler(self):
    self.repo.users.save(self)
    helper()
    pkg.mod.fn()
`)

	var handler *rir.FunctionIR
	for i := range mod.Functions {
		if mod.Functions[i].Name == "handler" {
			handler = &mod.Functions[i]
		}
	}
	require.NotNil(t, handler)

	var targets []string
	for _, c := range handler.Calls {
		targets = append(targets, c.Target)
	}
	assert.Contains(t, targets, "self.repo.users.save")
	assert.Contains(t, targets, "helper")
	assert.Contains(t, targets, "pkg.mod.fn")
}

func TestExtractFile_Imports(t *testing.T) {
	mod := extractSource(t, "app.py", `
import os
import numpy as np
from collections import OrderedDict
from . import config as cfg
`)

	require.Len(t, mod.Imports, 4)
	assert.Equal(t, rir.ImportPlain, mod.Imports[0].Kind)
	assert.Equal(t, "os", mod.Imports[0].Name)

	assert.Equal(t, "numpy", mod.Imports[1].Name)
	assert.Equal(t, "np", mod.Imports[1].Alias)

	assert.Equal(t, rir.ImportFrom, mod.Imports[2].Kind)
	assert.Equal(t, "collections", mod.Imports[2].Module)
	assert.Equal(t, "OrderedDict", mod.Imports[2].Name)

	assert.Equal(t, "cfg", mod.Imports[3].Alias)
}

func TestExtractFile_MainGuardDetection(t *testing.T) {
	withGuard := extractSource(t, "app.py", `
def main():
    pass


if __name__ == "__main__":
    main()
`)
	assert.True(t, withGuard.HasMainGuard)

	withoutGuard := extractSource(t, "lib.py", "def helper():\n    pass\n")
	assert.False(t, withoutGuard.HasMainGuard)
}

func TestExtractFile_ModuleEntryCollectsTopLevelCalls(t *testing.T) {
	mod := extractSource(t, "script.py", `
configure()

if True:
    bootstrap()
`)

	var moduleFn *rir.FunctionIR
	for i := range mod.Functions {
		if mod.Functions[i].Kind == rir.FunctionKindModule {
			moduleFn = &mod.Functions[i]
		}
	}
	require.NotNil(t, moduleFn)

	var targets []string
	for _, c := range moduleFn.Calls {
		targets = append(targets, c.Target)
		assert.True(t, c.FromModuleEntry)
	}
	assert.Contains(t, targets, "configure")
	assert.Contains(t, targets, "bootstrap")
}

func TestExtractFile_DocstringCapture(t *testing.T) {
	mod := extractSource(t, "app.py", `
def greet(name):
    """Return a friendly greeting for name."""
    return f"hello {name}"
`)

	var greet *rir.FunctionIR
	for i := range mod.Functions {
		if mod.Functions[i].Name == "greet" {
			greet = &mod.Functions[i]
		}
	}
	require.NotNil(t, greet)
	assert.Equal(t, "Return a friendly greeting for name.", greet.Docstring)
}

func TestExtractFile_ParamsExcludeSelfIsStillCaptured(t *testing.T) {
	mod := extractSource(t, "app.py", `
class Widget:
    def resize(self, width, height=10, *args, **kwargs):
        pass
`)

	var resize *rir.FunctionIR
	for i := range mod.Functions {
		if mod.Functions[i].Name == "resize" {
			resize = &mod.Functions[i]
		}
	}
	require.NotNil(t, resize)

	var names []string
	for _, p := range resize.Params {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"self", "width", "height", "args", "kwargs"}, names)
}

func TestExtractFile_NestedFunctionInPlainFunction(t *testing.T) {
	mod := extractSource(t, "app.py", `
def outer(a):
    def inner(b):
        return helper(b)
    return inner(a)
`)

	names := functionNames(mod)
	assert.True(t, names["outer"])
	assert.True(t, names["inner"], "nested def should produce its own FunctionIR")

	var outer, inner *rir.FunctionIR
	for i := range mod.Functions {
		switch mod.Functions[i].Name {
		case "outer":
			outer = &mod.Functions[i]
		case "inner":
			inner = &mod.Functions[i]
		}
	}
	require.NotNil(t, outer)
	require.NotNil(t, inner)

	assert.Nil(t, inner.ParentClassID, "inner has no enclosing class")
	assert.Equal(t, "inner", inner.QualifiedName)

	var innerTargets, outerTargets []string
	for _, c := range inner.Calls {
		innerTargets = append(innerTargets, c.Target)
	}
	for _, c := range outer.Calls {
		outerTargets = append(outerTargets, c.Target)
	}
	assert.Contains(t, innerTargets, "helper")
	assert.Contains(t, outerTargets, "inner")
	assert.NotContains(t, outerTargets, "helper", "inner's calls must not leak into outer's call list")
}

func TestExtractFile_NestedFunctionInMethodInheritsEnclosingClass(t *testing.T) {
	mod := extractSource(t, "app.py", `
class Worker:
    def run(self, items):
        def process(item):
            return transform(item)
        return [process(i) for i in items]
`)

	require.Len(t, mod.Classes, 1)
	cls := mod.Classes[0]

	var run, process *rir.FunctionIR
	for i := range mod.Functions {
		switch mod.Functions[i].Name {
		case "run":
			run = &mod.Functions[i]
		case "process":
			process = &mod.Functions[i]
		}
	}
	require.NotNil(t, run)
	require.NotNil(t, process)

	require.NotNil(t, run.ParentClassID)
	assert.Equal(t, cls.ID, *run.ParentClassID)

	require.NotNil(t, process.ParentClassID, "nested function inherits the innermost enclosing class, not the enclosing function")
	assert.Equal(t, cls.ID, *process.ParentClassID)
	assert.Equal(t, rir.FunctionKindMethod, process.Kind, "kind follows ParentClassID, inherited from the enclosing class like any other nested function")
	assert.Equal(t, "Worker.process", process.QualifiedName)

	var runTargets []string
	for _, c := range run.Calls {
		runTargets = append(runTargets, c.Target)
	}
	assert.Contains(t, runTargets, "process")
	assert.NotContains(t, runTargets, "transform", "process's calls must not leak into run's call list")
}

func TestExtractFile_ReferencedNamesCoversNonCallUses(t *testing.T) {
	mod := extractSource(t, "app.py", `
def returned(x):
    return x


def branched(y):
    if y:
        pass


def computed(z):
    w = z + 1
    return w


def forwarded(a):
    log(a)


def reassignedOnly(b):
    b = 5
`)

	byName := map[string]*rir.FunctionIR{}
	for i := range mod.Functions {
		byName[mod.Functions[i].Name] = &mod.Functions[i]
	}

	refs := func(name string) map[string]bool {
		fn := byName[name]
		require.NotNil(t, fn)
		set := map[string]bool{}
		for _, n := range fn.ReferencedNames {
			set[n] = true
		}
		return set
	}

	assert.True(t, refs("returned")["x"], "parameter used in a return statement")
	assert.True(t, refs("branched")["y"], "parameter used as an if-condition")
	assert.True(t, refs("computed")["z"], "parameter used in an arithmetic expression")
	assert.True(t, refs("forwarded")["a"], "parameter passed as a plain call argument")
	assert.False(t, refs("reassignedOnly")["b"], "a bare assignment target alone is a store, not a use")
}

func TestExtractFile_ReferencedNamesExcludesAttributeAndKeywordNames(t *testing.T) {
	mod := extractSource(t, "app.py", `
def handler(self, timeout):
    self.db.save(retries=timeout)
`)

	var handler *rir.FunctionIR
	for i := range mod.Functions {
		if mod.Functions[i].Name == "handler" {
			handler = &mod.Functions[i]
		}
	}
	require.NotNil(t, handler)

	set := map[string]bool{}
	for _, n := range handler.ReferencedNames {
		set[n] = true
	}
	assert.True(t, set["self"])
	assert.True(t, set["timeout"], "keyword argument value is a use of the parameter")
	assert.False(t, set["db"], "attribute member names are not separate variable references")
	assert.False(t, set["save"])
	assert.False(t, set["retries"], "keyword argument name is a label, not a reference")
}

func TestFileHash_StableForIdenticalContent(t *testing.T) {
	a := FileHash([]byte("def f():\n    pass\n"))
	b := FileHash([]byte("def f():\n    pass\n"))
	c := FileHash([]byte("def g():\n    pass\n"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestModuleName(t *testing.T) {
	cases := map[string]string{
		"src/pkg/math_ops.py": "pkg.math_ops",
		"pkg/math_ops.py":     "pkg.math_ops",
		"src/pkg/__init__.py": "pkg",
		"top.py":              "top",
	}
	for input, want := range cases {
		assert.Equal(t, want, ModuleName(input), "input=%s", input)
	}
}

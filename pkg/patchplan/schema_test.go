// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package patchplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateOperations_ValidBundlePasses(t *testing.T) {
	end := 5
	ops := []Operation{
		{ID: "OP_1", Op: OpInsertBefore, Enabled: true, File: "app.py", Line: 1, Description: "add guard"},
		{ID: "OP_2", Op: OpReplaceRange, Enabled: true, File: "app.py", Line: 3, EndLine: &end, Description: "rewrite body"},
	}
	assert.Empty(t, ValidateOperations(ops))
}

func TestValidateOperations_MissingRequiredFields(t *testing.T) {
	ops := []Operation{
		{Op: OpInsertBefore, Enabled: true, Line: 1},
	}
	errs := ValidateOperations(ops)
	var fields []string
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "id")
	assert.Contains(t, fields, "file")
	assert.Contains(t, fields, "description")
}

func TestValidateOperations_UnknownOp(t *testing.T) {
	ops := []Operation{
		{ID: "OP_1", Op: "delete_everything", File: "app.py", Line: 1, Description: "nope"},
	}
	errs := ValidateOperations(ops)
	found := false
	for _, e := range errs {
		if e.Field == "op" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateOperations_ReplaceRangeRequiresEndLine(t *testing.T) {
	ops := []Operation{
		{ID: "OP_1", Op: OpReplaceRange, File: "app.py", Line: 5, Description: "swap"},
	}
	errs := ValidateOperations(ops)
	found := false
	for _, e := range errs {
		if e.Field == "end_lineno" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateOperations_DuplicateID(t *testing.T) {
	ops := []Operation{
		{ID: "OP_1", Op: OpInsertBefore, File: "app.py", Line: 1, Description: "a"},
		{ID: "OP_1", Op: OpInsertAfter, File: "app.py", Line: 2, Description: "b"},
	}
	errs := ValidateOperations(ops)
	found := false
	for _, e := range errs {
		if e.Field == "id" && e.Message == "duplicate operation id" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateBundle_NilBundle(t *testing.T) {
	errs := ValidateBundle(nil)
	assert.Len(t, errs, 1)
}

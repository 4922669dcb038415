package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/source"
)

func readImports(t *testing.T, path, text string) []string {
	t.Helper()
	e := New()
	defer e.Close()
	rec := ir.FileRecord{Path: path, Language: ir.DetectLanguage(path)}
	return e.ReadImports(context.Background(), source.MapSource{path: []byte(text)}, rec)
}

func TestReadImportsPython(t *testing.T) {
	src := `import os
import os.path
import numpy as np, collections.abc
from pkg.sub import thing
from . import sibling
from .models import User
from ..core.db import session

def f():
    import json
`
	got := readImports(t, "app/main.py", src)
	assert.Equal(t, []string{"collections", "core", "json", "models", "numpy", "os", "pkg"}, got)
}

func TestReadImportsJavaScript(t *testing.T) {
	src := `import React from 'react';
import { a, b } from "./utils/helpers";
import * as d3 from 'd3/dist/d3.js';
import './side-effect.js';
import '../lib';
export { x } from "@scope/pkg/deep";
export const y = 1;
`
	got := readImports(t, "src/app.js", src)
	assert.Equal(t, []string{"@scope", "d3", "lib", "react", "side-effect", "utils"}, got)
}

func TestReadImportsFailures(t *testing.T) {
	e := New()
	defer e.Close()

	missing := e.ReadImports(context.Background(), source.MapSource{}, ir.FileRecord{Path: "a.py", Language: ir.LangPython})
	assert.NotNil(t, missing)
	assert.Empty(t, missing)

	unknown := e.ReadImports(context.Background(), source.MapSource{"a.txt": []byte("import x")}, ir.FileRecord{Path: "a.txt", Language: ir.LangUnknown})
	assert.Empty(t, unknown)
}

func TestModuleKey(t *testing.T) {
	assert.Equal(t, "helpers", ModuleKey("src/utils/helpers.ts"))
	assert.Equal(t, "main", ModuleKey("main.py"))
}

func TestSpecifierKey(t *testing.T) {
	tests := map[string]string{
		"./a/b":      "a",
		"../../x.js": "x",
		"./":         "",
		"lodash":     "lodash",
		"@org/pkg":   "@org",
		"":           "",
	}
	for in, want := range tests {
		if got := specifierKey(in); got != want {
			t.Errorf("specifierKey(%q) = %q, want %q", in, got, want)
		}
	}
}

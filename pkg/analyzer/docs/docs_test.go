package docs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
	"github.com/AmanS2501/Syntax-Guardian/pkg/source"
)

func detect(t *testing.T, path, text string) []models.DocumentationFinding {
	t.Helper()
	in := analyzer.Input{
		Modules: []ir.ModuleUnit{{Path: path, Language: ir.DetectLanguage(path)}},
		Source:  source.MapSource{path: []byte(text)},
	}
	res, err := New().Detect(context.Background(), in)
	require.NoError(t, err)
	out := make([]models.DocumentationFinding, len(res.Findings))
	for i, f := range res.Findings {
		out[i] = f.(models.DocumentationFinding)
	}
	return out
}

func TestMissingDocstrings(t *testing.T) {
	src := `import os

class Store:
    def get(self, key):
        """Return the value."""
        return key

    def put(self, key):
        return None

async def fetch():
    pass
`
	fs := detect(t, "pkg/store.py", src)
	require.Len(t, fs, 4)

	assert.Equal(t, models.DocModule, fs[0].Kind)
	assert.Equal(t, "pkg/store.py::doc:module", fs[0].ID)
	assert.Equal(t, 1, fs[0].Span.StartLine)

	assert.Equal(t, models.DocClass, fs[1].Kind)
	assert.Equal(t, "pkg/store.py::doc:class:Store:3", fs[1].ID)
	assert.Equal(t, "Missing class docstring: Store", fs[1].Message)

	assert.Equal(t, "pkg/store.py::doc:function:put:8", fs[2].ID)
	assert.Equal(t, "Missing function/method docstring: put", fs[2].Message)
	assert.Equal(t, "put", fs[2].Name)

	assert.Equal(t, "pkg/store.py::doc:function:fetch:11", fs[3].ID)
}

func TestBlankDocstringsAreMissing(t *testing.T) {
	src := "\"\"\"\"\"\"\n\ndef f():\n    \"\"\"   \"\"\"\n    return 1\n"
	fs := detect(t, "blank.py", src)
	require.Len(t, fs, 2)
	assert.Equal(t, models.DocModule, fs[0].Kind)
	assert.Equal(t, "blank.py::doc:function:f:3", fs[1].ID)
}

func TestFullyDocumented(t *testing.T) {
	src := `"""Helpers."""

class A:
    """An A."""

    def m(self):
        '''Does m.'''
`
	assert.Empty(t, detect(t, "a.py", src))
}

func TestScriptModulesIgnored(t *testing.T) {
	assert.Empty(t, detect(t, "a.js", "function f() {}\n"))
}

package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
)

func extract(t *testing.T, path, src string) ir.ModuleUnit {
	t.Helper()
	e := New()
	defer e.Close()
	mod, err := e.Extract(context.Background(), path, []byte(src), ir.DetectLanguage(path))
	require.NoError(t, err)
	return mod
}

func TestExtractPythonFunctions(t *testing.T) {
	src := `"""Module doc."""

def top(a):
    """Adds one."""
    return a + 1

class Greeter:
    def greet(self, name):
        if name:
            return "hi " + name
        return "hi"

async def fetch():
    pass
`
	mod := extract(t, "pkg/app.py", src)

	assert.Equal(t, "pkg/app.py", mod.Path)
	assert.Equal(t, ir.LangPython, mod.Language)
	assert.False(t, mod.Partial)
	require.Len(t, mod.Functions, 3)

	top := mod.Functions[0]
	assert.Equal(t, "top", top.Name)
	assert.Equal(t, "pkg/app.py::top:3", top.ID)
	assert.Equal(t, ir.NewSpan("pkg/app.py", 3, 5), top.Span)
	assert.Equal(t, "Adds one.", top.Doc)
	assert.True(t, strings.HasPrefix(top.Text, "def top(a):"))
	assert.Equal(t, 0, top.BranchCount())

	greet := mod.Functions[1]
	assert.Equal(t, "greet", greet.Name)
	assert.False(t, greet.HasDoc())
	assert.Equal(t, 1, greet.BranchCount())

	assert.Equal(t, "fetch", mod.Functions[2].Name)
}

func TestCountBranchesPython(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"straight line", "    return 1\n", 0},
		{"if elif else", "    if a:\n        pass\n    elif b:\n        pass\n    else:\n        pass\n", 2},
		{"loops", "    for i in x:\n        pass\n    while y:\n        pass\n", 2},
		{"try with two handlers", "    try:\n        pass\n    except ValueError:\n        pass\n    except KeyError:\n        pass\n", 3},
		{"with", "    with open(p) as f:\n        pass\n", 1},
		{"bool chain counts once", "    return a and b and c\n", 1},
		{"mixed bool ops", "    return a or b and c\n", 2},
		{"conditional expression", "    return a if b else c\n", 1},
		{"comprehension is not a loop", "    return [i for i in x if i]\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := extract(t, "m.py", "def f(a, b, c, x, y, p):\n"+tt.body)
			require.Len(t, mod.Functions, 1)
			if got := mod.Functions[0].BranchCount(); got != tt.want {
				t.Errorf("BranchCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExtractTwelveIfs(t *testing.T) {
	var b strings.Builder
	b.WriteString("def busy(x):\n")
	for i := range 12 {
		fmt.Fprintf(&b, "    if x == %d:\n        x += 1\n", i)
	}
	b.WriteString("    return x\n")

	mod := extract(t, "busy.py", b.String())
	require.Len(t, mod.Functions, 1)
	assert.Equal(t, 12, mod.Functions[0].BranchCount())
}

func TestExtractJavaScript(t *testing.T) {
	src := `/** Sums values. */
export function sum(xs) {
  let t = 0;
  for (const x of xs) {
    if (x > 0 && x < 10) { t += x; }
  }
  return t;
}

const double = (n) => n ? n * 2 : 0;

class Box {
  open() { return this.ready || this.force; }
}

function* ids() { yield 1; }
`
	mod := extract(t, "src/util.js", src)
	require.Len(t, mod.Functions, 4)

	names := make([]string, 0, len(mod.Functions))
	for _, fn := range mod.Functions {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"sum", "double", "open", "ids"}, names)

	sum := mod.Functions[0]
	assert.Equal(t, "Sums values.", sum.Doc)
	assert.Equal(t, 3, sum.BranchCount())
	assert.Equal(t, 1, mod.Functions[1].BranchCount())
	assert.Equal(t, 1, mod.Functions[2].BranchCount())
	assert.Empty(t, mod.Functions[3].Doc)
}

func TestExtractTypeScriptAndTSX(t *testing.T) {
	ts := extract(t, "a.ts", "function id<T>(x: T): T { return x; }\n")
	require.Len(t, ts.Functions, 1)
	assert.Equal(t, ir.LangTypeScript, ts.Language)

	tsx := extract(t, "App.tsx", "export function App() { return <div>hi</div>; }\n")
	require.Len(t, tsx.Functions, 1)
	assert.Equal(t, "App", tsx.Functions[0].Name)
}

func TestExtractUnsupportedLanguage(t *testing.T) {
	e := New()
	defer e.Close()

	mod, err := e.Extract(context.Background(), "notes.txt", []byte("hello"), ir.LangUnknown)
	assert.ErrorIs(t, err, parser.ErrUnsupportedLanguage)
	assert.Equal(t, "notes.txt", mod.Path)
	assert.NotNil(t, mod.Functions)
	assert.Empty(t, mod.Functions)
}

func TestExtractSyntaxErrorIsPartial(t *testing.T) {
	mod := extract(t, "bad.py", "def ok():\n    return 1\n\ndef broken(:\n")
	assert.True(t, mod.Partial)
}

func TestPythonDocstringVariants(t *testing.T) {
	tests := []struct {
		src  string
		want string
		ok   bool
	}{
		{"def f():\n    '''Single quotes.'''\n", "Single quotes.", true},
		{"def f():\n    r\"\"\"Raw doc.\"\"\"\n", "Raw doc.", true},
		{"def f():\n    \"short\"\n    return 1\n", "short", true},
		{"def f():\n    x = 1\n    \"\"\"Not a docstring.\"\"\"\n", "", false},
		{"def f():\n    \"\"\"\"\"\"\n    return 1\n", "", false},
		{"def f():\n    '''   '''\n    return 1\n", "", false},
	}
	for _, tt := range tests {
		mod := extract(t, "d.py", tt.src)
		require.Len(t, mod.Functions, 1)
		assert.Equal(t, tt.want, mod.Functions[0].Doc, tt.src)
		assert.Equal(t, tt.ok, mod.Functions[0].HasDoc(), tt.src)
	}
}

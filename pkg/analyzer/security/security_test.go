package security

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

func detect(t *testing.T, files map[string]string) []models.SecurityFinding {
	t.Helper()
	src := source.MapSource{}
	var mods []ir.ModuleUnit
	for path, text := range files {
		src[path] = []byte(text)
		mods = append(mods, ir.ModuleUnit{Path: path, Language: ir.DetectLanguage(path)})
	}
	res, err := New().Detect(context.Background(), analyzer.Input{Modules: mods, Source: src})
	require.NoError(t, err)
	out := make([]models.SecurityFinding, len(res.Findings))
	for i, f := range res.Findings {
		out[i] = f.(models.SecurityFinding)
	}
	return out
}

func rulesOf(fs []models.SecurityFinding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Rule
	}
	return out
}

func TestPythonRules(t *testing.T) {
	src := `import subprocess, yaml, pickle

def run(cmd, data):
    eval(cmd)
    exec("print(1)")
    subprocess.run(cmd, shell=True)
    subprocess.run(["ls"], shell=False)
    subprocess.check_output(cmd, shell=True)
    yaml.load(data)
    yaml.load(data, Loader=yaml.SafeLoader)
    yaml.load(data, yaml.CSafeLoader)
    yaml.safe_load(data)
    pickle.loads(data)
`
	fs := detect(t, map[string]string{"app.py": src})
	assert.Equal(t, []string{
		RuleEval, RuleExec, RuleSubprocessShell, RuleSubprocessShell, RuleYAMLLoad, RulePickleLoad,
	}, rulesOf(fs))

	first := fs[0]
	assert.Equal(t, "app.py::4:eval#sec", first.ID)
	assert.Equal(t, "Use of eval is dangerous", first.Message)
	assert.Equal(t, 4, first.Span.StartLine)
	assert.Equal(t, "Avoid eval/exec; parse inputs or use safe alternatives.", first.Hint)

	assert.Equal(t, "subprocess with shell=True can lead to command injection", fs[2].Message)
	assert.Equal(t, 6, fs[2].Span.StartLine)
	assert.Equal(t, "yaml.load without SafeLoader is unsafe", fs[4].Message)
	assert.Equal(t, 9, fs[4].Span.StartLine)
}

func TestPythonMultilineCallSpan(t *testing.T) {
	src := "import subprocess\nsubprocess.Popen(\n    'ls',\n    shell=True,\n)\n"
	fs := detect(t, map[string]string{"m.py": src})
	require.Len(t, fs, 1)
	assert.Equal(t, ir.NewSpan("m.py", 2, 5), fs[0].Span)
}

func TestScriptRules(t *testing.T) {
	src := `const cp = require('child_process');
const retrieval = fetchAll();
eval(userInput);
const f = new Function('a', 'return a');
cp.exec('rm -rf ' + dir);
`
	fs := detect(t, map[string]string{"web/app.js": src})
	require.Len(t, fs, 3)
	assert.Equal(t, []string{RuleEval, RuleNewFunction, RuleChildProcessExec}, rulesOf(fs))
	assert.Equal(t, 3, fs[0].Span.StartLine)
	assert.Equal(t, "web/app.js::3:eval#sec", fs[0].ID)
	assert.Equal(t, "Use of eval detected", fs[0].Message)
	assert.Equal(t, 4, fs[1].Span.StartLine)
	assert.Equal(t, 5, fs[2].Span.StartLine)
}

func TestScriptExecWithoutChildProcess(t *testing.T) {
	fs := detect(t, map[string]string{"a.ts": "const m = /x/.exec(s);\n"})
	assert.Empty(t, fs)
}

func TestUnreadableFilesAreSkipped(t *testing.T) {
	in := analyzer.Input{
		Modules: []ir.ModuleUnit{
			{Path: "gone.py", Language: ir.LangPython},
			{Path: "gone.js", Language: ir.LangJavaScript},
		},
		Source: source.MapSource{},
	}
	res, err := New().Detect(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
	assert.Equal(t, "2 files skipped", res.Note)
}

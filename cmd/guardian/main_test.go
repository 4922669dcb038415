package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/AmanS2501/Syntax-Guardian/internal/testutil"
	"github.com/AmanS2501/Syntax-Guardian/pkg/config"
)

func decideSource() string {
	var b strings.Builder
	b.WriteString("\"\"\"Decisions.\"\"\"\n\n\ndef decide(x):\n    \"\"\"Pick.\"\"\"\n")
	for i := range 12 {
		b.WriteString("    if x == ")
		b.WriteString(string(rune('a' + i)))
		b.WriteString(":\n        return 1\n")
	}
	b.WriteString("    return 0\n")
	return b.String()
}

// run executes the CLI and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"guardian", "--no-color", "--no-progress"}, args...))
	return out.String(), err
}

func TestRootArg(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args defaults to current dir", nil, "."},
		{"single path", []string{"/foo/bar"}, "/foo/bar"},
		{"first path wins", []string{"/foo", "/bar"}, "/foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			app := &cli.App{
				Action: func(c *cli.Context) error {
					got = rootArg(c)
					return nil
				},
			}
			require.NoError(t, app.Run(append([]string{"guardian"}, tt.args...)))
			if got != tt.want {
				t.Errorf("rootArg() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	quiet := newLogger(io.Discard, false)
	assert.False(t, quiet.Enabled(ctx, slog.LevelInfo))
	assert.True(t, quiet.Enabled(ctx, slog.LevelWarn))

	verbose := newLogger(io.Discard, true)
	assert.True(t, verbose.Enabled(ctx, slog.LevelDebug))
}

func TestAnalyzeJSON(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{"decide.py": decideSource()})

	out, err := run(t, "--format", "json", "analyze", dir)
	require.NoError(t, err)

	var report struct {
		Summary struct {
			Files    int            `json:"files"`
			Findings map[string]int `json:"findings"`
		} `json:"summary"`
		Findings []struct {
			Category string `json:"category"`
			Severity string `json:"severity"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Summary.Files)
	assert.Equal(t, 1, report.Summary.Findings["complexity"])
	assert.Equal(t, 1, report.Summary.Findings["testing"])
	assert.NotEmpty(t, report.Findings)
}

func TestAnalyzeText(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{"decide.py": decideSource()})

	out, err := run(t, "analyze", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Syntax Guardian: ")
	assert.Contains(t, out, "High cyclomatic complexity: 13")
	assert.Contains(t, out, "No test file found for decide.py")
}

func TestAnalyzeOutputFile(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{"a.py": "x = 1\n"})
	dest := filepath.Join(t.TempDir(), "report.json")

	out, err := run(t, "--format", "json", "--output", dest, "analyze", dir)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), `"summary"`)
}

func TestAnalyzeMetricsFile(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{"decide.py": decideSource()})
	dest := filepath.Join(t.TempDir(), "guardian.prom")

	_, err := run(t, "--format", "json", "analyze", "--metrics-file", dest, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE guardian_stage_runs_total counter")
	assert.Contains(t, text, `guardian_stage_runs_total{outcome="success",stage="complexity"}`)
	assert.Contains(t, text, `guardian_findings_total{category="complexity"}`)
	assert.Contains(t, text, `guardian_files_analyzed_total{language="python"}`)
}

func TestAnalyzeMetricsFileUnwritable(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{"a.py": "x = 1\n"})
	dest := filepath.Join(t.TempDir(), "missing", "guardian.prom")

	_, err := run(t, "analyze", "--metrics-file", dest, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics")
}

func TestAnalyzeRulesOverride(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{
		"decide.py":     decideSource(),
		"guardian.toml": "[complexity]\nwarn_at = 20\n",
	})

	out, err := run(t, "--format", "json", "analyze", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"complexity_warn_at": 20`)
	assert.NotContains(t, out, "High cyclomatic complexity")
}

func TestAnalyzeFlagOverrides(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{
		"decide.py":  decideSource(),
		"web/app.js": "function run() { return 1; }\n",
	})

	out, err := run(t, "--format", "json", "analyze", "--include", "**/*.js", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"files": 1`)
	assert.NotContains(t, out, "decide.py")
}

func TestAnalyzeErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"missing root", []string{"analyze", filepath.Join(dir, "nope")}},
		{"unknown format", []string{"--format", "xml", "analyze", dir}},
		{"missing rules file", []string{"--rules", filepath.Join(dir, "none.toml"), "analyze", dir}},
		{"invalid max bytes", []string{"analyze", "--max-bytes", "0", dir}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestGraphText(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import c\n",
		"c.py": "import a\n",
	})

	out, err := run(t, "graph", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Modules: 3")
	assert.Contains(t, out, "a -> b -> c -> a")
}

func TestGraphJSON(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import a\n",
	})

	out, err := run(t, "--format", "json", "graph", dir)
	require.NoError(t, err)

	var graph struct {
		Metrics struct {
			Cycles [][]string     `json:"cycles"`
			FanIn  map[string]int `json:"fan_in"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &graph))
	assert.Equal(t, [][]string{{"a", "b"}}, graph.Metrics.Cycles)
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, graph.Metrics.FanIn)
}

func TestInitWritesLoadableRules(t *testing.T) {
	for _, name := range []string{"guardian.toml", "presets/rules.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			out, err := run(t, "init", "--path", path)
			require.NoError(t, err)
			assert.Contains(t, out, "Created")

			cfg, err := config.Load(path)
			require.NoError(t, err)
			def := config.DefaultConfig()
			assert.Equal(t, def.Complexity, cfg.Complexity)
			assert.Equal(t, def.Duplication, cfg.Duplication)
			assert.Equal(t, def.Scan.Include, cfg.Scan.Include)
			assert.InDeltaMapValues(t, def.Weights, cfg.Weights, 1e-9)
		})
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0o644))

	_, err := run(t, "init", "--path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "init", "--path", path, "--force")
	require.NoError(t, err)
}

func TestInitUnsupportedExtension(t *testing.T) {
	_, err := run(t, "init", "--path", filepath.Join(t.TempDir(), "rules.ini"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "config", "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Default rules are valid")

	good := filepath.Join(dir, "guardian.yaml")
	require.NoError(t, os.WriteFile(good, []byte("complexity:\n  warn_at: 15\n"), 0o644))
	out, err = run(t, "config", "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Rules valid")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[complexity]\nwarn_at = 0\n"), 0o644))
	_, err = run(t, "--rules", bad, "config", "validate")
	assert.ErrorIs(t, err, config.ErrInvalidRules)
}

func TestConfigShow(t *testing.T) {
	dir := testutil.CreateFileTree(t, map[string]string{
		"guardian.json": `{"duplication": {"k_shingle": 5}}`,
	})

	out, err := run(t, "config", "show", dir)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 5, cfg.Duplication.KShingle)
	assert.Equal(t, 10, cfg.Complexity.WarnAt)
}

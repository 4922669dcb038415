package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"TEXT", FormatText, false},
		{"", FormatText, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"toon", FormatTOON, false},
		{" toon ", FormatTOON, false},
		{"markdown", "", true},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	f, err := NewFormatter(FormatJSON, path, true)
	require.NoError(t, err)
	assert.False(t, f.Colored(), "color must be off for files")
	assert.Equal(t, FormatJSON, f.Format())

	require.NoError(t, f.Output(map[string]int{"files": 3}))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"files": 3}`, string(data))
}

func TestNewFormatterInvalidPath(t *testing.T) {
	_, err := NewFormatter(FormatText, "/nonexistent/dir/out.txt", false)
	assert.Error(t, err)
}

func TestFormatterStdout(t *testing.T) {
	f, err := NewFormatter(FormatText, "", true)
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f.Writer())
	assert.True(t, f.Colored())
	assert.NoError(t, f.Close())
}

func TestTableRenderText(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable("Findings", []string{"Severity", "Title"}, [][]string{
		{"P1", "Dangerous eval"},
		{"P3", "Missing docstring"},
	}, nil, nil)

	require.NoError(t, tbl.RenderText(&buf, false))
	out := buf.String()
	assert.Contains(t, out, "Findings\n--------")
	assert.Contains(t, out, "Dangerous eval")
	assert.Contains(t, out, "Missing docstring")
}

func TestTableRenderTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable("Cycles", []string{"#", "Path"}, nil, nil, nil)
	tbl.Empty = "No cycles."

	require.NoError(t, tbl.RenderText(&buf, false))
	assert.Equal(t, "Cycles\n------\nNo cycles.\n", buf.String())
}

func TestTableRenderData(t *testing.T) {
	tbl := NewTable("", []string{"a", "b"}, [][]string{{"1", "2"}, {"3"}}, nil, nil)
	got := tbl.RenderData().([]map[string]string)
	assert.Equal(t, []map[string]string{{"a": "1", "b": "2"}, {"a": "3"}}, got)

	withData := NewTable("", nil, nil, nil, []int{1, 2})
	assert.Equal(t, []int{1, 2}, withData.RenderData())
}

func TestSectionRenderText(t *testing.T) {
	var buf bytes.Buffer
	s := &Section{Title: "Summary", Lines: []string{"Files: 2", "Functions: 5"}}
	require.NoError(t, s.RenderText(&buf, false))
	assert.Equal(t, "Summary\n-------\nFiles: 2\nFunctions: 5\n", buf.String())
	assert.Equal(t, s, s.RenderData())
}

func TestReportRenderText(t *testing.T) {
	var buf bytes.Buffer
	r := &Report{
		Title: "Run",
		Sections: []Renderable{
			&Section{Title: "A", Lines: []string{"one"}},
			&Section{Title: "B", Lines: []string{"two"}},
		},
	}
	require.NoError(t, r.RenderText(&buf, false))
	assert.Equal(t, "Run\n===\n\nA\n-\none\n\nB\n-\ntwo\n", buf.String())
}

func TestReportRenderData(t *testing.T) {
	r := &Report{
		Title:    "Run",
		Sections: []Renderable{&Section{Data: "x"}, &Section{Data: 2}},
	}
	got := r.RenderData().(map[string]any)
	assert.Equal(t, "Run", got["title"])
	assert.Equal(t, []any{"x", 2}, got["sections"])

	r.Data = "whole"
	assert.Equal(t, "whole", r.RenderData())
}

func TestFormatterOutputRenderable(t *testing.T) {
	type payload struct {
		Name  string `json:"name" toon:"name"`
		Count int    `json:"count" toon:"count"`
	}
	view := &Report{
		Title:    "View",
		Sections: []Renderable{&Section{Title: "S", Lines: []string{"line"}}},
		Data:     payload{Name: "alpha", Count: 3},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriterFormatter(FormatText, &buf, false).Output(view))
		assert.True(t, strings.HasPrefix(buf.String(), "View\n"))
		assert.Contains(t, buf.String(), "line")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriterFormatter(FormatJSON, &buf, false).Output(view))
		var got payload
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, payload{Name: "alpha", Count: 3}, got)
	})

	t.Run("toon", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriterFormatter(FormatTOON, &buf, false).Output(view))
		assert.Contains(t, buf.String(), "alpha")
		assert.NotContains(t, buf.String(), "View")
	})
}

func TestFormatterOutputRawText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatText, &buf, false).Output([]string{"a"}))
	assert.JSONEq(t, `["a"]`, buf.String())
}

func TestFormatterWarning(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	f.Warning("rules file %s ignored", "x.toml")
	f.Success("done")
	assert.Equal(t, "WARNING: rules file x.toml ignored\ndone\n", buf.String())
}

func TestSeverityColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })

	for _, sev := range []string{"P0", "P1", "P2", "P3", "p2", "stage"} {
		assert.Equal(t, "txt", SeverityColor(sev, "txt"), sev)
	}

	color.NoColor = false
	assert.NotEqual(t, "txt", SeverityColor("P0", "txt"))
	assert.Equal(t, "txt", SeverityColor("walk", "txt"))
}

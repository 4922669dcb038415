// Package extract builds the IR of a source file from its tree-sitter AST.
package extract

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
)

// Extractor turns source files into ModuleUnits. It owns a parser and is
// therefore not safe for concurrent use.
type Extractor struct {
	parser *parser.Parser
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{parser: parser.New()}
}

// NewWithParser creates an Extractor around an existing parser, as handed
// out by the per-worker pools.
func NewWithParser(p *parser.Parser) *Extractor {
	return &Extractor{parser: p}
}

// Close releases the underlying parser.
func (e *Extractor) Close() {
	e.parser.Close()
}

// Extract returns the ModuleUnit for a file. The module is always usable:
// on unsupported or unparseable input it has no functions and the error
// describes why.
func (e *Extractor) Extract(ctx context.Context, path string, text []byte, lang ir.Language) (ir.ModuleUnit, error) {
	mod := ir.ModuleUnit{Path: path, Language: lang, Functions: []ir.FunctionUnit{}}
	if !lang.Known() {
		return mod, fmt.Errorf("extract %s: %w", path, parser.ErrUnsupportedLanguage)
	}

	result, err := e.parser.Parse(ctx, text, lang, path)
	if err != nil {
		return mod, fmt.Errorf("extract %s: %w", path, err)
	}
	defer result.Close()

	mod.Partial = result.HasErrors()
	switch lang {
	case ir.LangPython:
		mod.Functions = pythonFunctions(result)
	default:
		mod.Functions = scriptFunctions(result)
	}
	return mod, nil
}

func newUnit(result *parser.ParseResult, node *sitter.Node, name, doc string, branches int) ir.FunctionUnit {
	start, end := parser.StartLine(node), parser.EndLine(node)
	return ir.FunctionUnit{
		ID:       ir.FunctionID(result.Path, name, start),
		Name:     name,
		Language: result.Language,
		Span:     ir.NewSpan(result.Path, start, end),
		Doc:      doc,
		Text:     parser.GetNodeText(node, result.Source),
		Metrics:  map[string]float64{ir.MetricBranchCount: float64(branches)},
	}
}

func pythonFunctions(result *parser.ParseResult) []ir.FunctionUnit {
	out := []ir.FunctionUnit{}
	for _, node := range parser.FindNodesByType(result.Root(), result.Source, "function_definition") {
		name := parser.GetNodeText(node.ChildByFieldName("name"), result.Source)
		if name == "" {
			continue
		}
		doc, _ := PythonDocstring(node.ChildByFieldName("body"), result.Source)
		out = append(out, newUnit(result, node, name, doc, CountBranches(node, result.Source, ir.LangPython)))
	}
	return out
}

// PythonDocstring returns the docstring opening a module or block, if any.
// A blank docstring counts as missing.
func PythonDocstring(block *sitter.Node, source []byte) (string, bool) {
	if block == nil {
		return "", false
	}
	for i := range int(block.NamedChildCount()) {
		stmt := block.NamedChild(i)
		switch stmt.Type() {
		case "comment":
			continue
		case "expression_statement":
			if stmt.NamedChildCount() == 0 {
				return "", false
			}
			first := stmt.NamedChild(0)
			if first.Type() != "string" && first.Type() != "concatenated_string" {
				return "", false
			}
			doc := cleanDocstring(parser.GetNodeText(first, source))
			return doc, doc != ""
		default:
			return "", false
		}
	}
	return "", false
}

func cleanDocstring(raw string) string {
	s := strings.TrimLeft(raw, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}
	return strings.TrimSpace(s)
}

var scriptFunctionTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"method_definition":              true,
}

func scriptFunctions(result *parser.ParseResult) []ir.FunctionUnit {
	out := []ir.FunctionUnit{}
	parser.WalkTyped(result.Root(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		switch {
		case scriptFunctionTypes[nodeType]:
			name := parser.GetNodeText(node.ChildByFieldName("name"), source)
			if name != "" {
				out = append(out, newUnit(result, node, name, jsDoc(node, source), CountBranches(node, source, result.Language)))
			}
		case nodeType == "variable_declarator":
			value := node.ChildByFieldName("value")
			if value == nil || !isFunctionValue(value.Type()) {
				break
			}
			name := parser.GetNodeText(node.ChildByFieldName("name"), source)
			if name != "" {
				out = append(out, newUnit(result, node, name, jsDoc(node, source), CountBranches(value, source, result.Language)))
			}
		}
		return true
	})
	return out
}

func isFunctionValue(t string) bool {
	switch t {
	case "arrow_function", "function", "function_expression", "generator_function":
		return true
	}
	return false
}

// jsDoc returns the /** */ comment directly above a declaration.
func jsDoc(node *sitter.Node, source []byte) string {
	target := node
	for p := target.Parent(); p != nil; p = p.Parent() {
		t := p.Type()
		if t != "export_statement" && t != "lexical_declaration" && t != "variable_declaration" {
			break
		}
		target = p
	}
	prev := target.PrevNamedSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	if prev.EndPoint().Row+1 < target.StartPoint().Row {
		return ""
	}
	text := parser.GetNodeText(prev, source)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	text = strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
	return strings.TrimSpace(text)
}

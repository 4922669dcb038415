// Package docs reports Python modules, classes and functions that have no docstring.
package docs

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
	"github.com/AmanS2501/Syntax-Guardian/pkg/extract"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
)

// Name is the stage name of the detector.
const Name = "documentation"

// Ensure Analyzer implements analyzer.Detector.
var _ analyzer.Detector = (*Analyzer)(nil)

// Analyzer checks docstrings on fully supported modules.
type Analyzer struct{}

// New creates a documentation analyzer.
func New() *Analyzer { return &Analyzer{} }

// Name implements analyzer.Detector.
func (a *Analyzer) Name() string { return Name }

// Detect implements analyzer.Detector.
func (a *Analyzer) Detect(ctx context.Context, in analyzer.Input) (analyzer.Result, error) {
	var findings []models.Finding
	want := func(l ir.Language) bool { return l.FullySupported() }
	skipped, err := analyzer.ParseEach(ctx, in, want, func(mod ir.ModuleUnit, res *parser.ParseResult) {
		findings = append(findings, Missing(res)...)
	})
	if err != nil {
		return analyzer.Result{}, err
	}
	res := analyzer.Result{Findings: findings}
	if skipped > 0 {
		res.Note = fmt.Sprintf("%d files skipped", skipped)
	}
	return res, nil
}

// Missing returns one finding per undocumented module, class or function of
// a parsed Python file, in source order.
func Missing(res *parser.ParseResult) []models.Finding {
	var out []models.Finding
	if _, ok := extract.PythonDocstring(res.Root(), res.Source); !ok {
		out = append(out, models.DocumentationFinding{
			Base: models.Base{
				ID:      res.Path + "::doc:module",
				Message: "Missing module docstring",
				Span:    ir.NewSpan(res.Path, 1, 1),
			},
			Kind: models.DocModule,
		})
	}

	parser.WalkTyped(res.Root(), res.Source, func(node *sitter.Node, nodeType string, src []byte) bool {
		var kind models.DocKind
		var label string
		switch nodeType {
		case "class_definition":
			kind, label = models.DocClass, "class"
		case "function_definition":
			kind, label = models.DocFunction, "function/method"
		default:
			return true
		}
		if _, ok := extract.PythonDocstring(node.ChildByFieldName("body"), src); ok {
			return true
		}
		name := parser.GetNodeText(node.ChildByFieldName("name"), src)
		start := parser.StartLine(node)
		out = append(out, models.DocumentationFinding{
			Base: models.Base{
				ID:      fmt.Sprintf("%s::doc:%s:%s:%d", res.Path, kind, name, start),
				Message: fmt.Sprintf("Missing %s docstring: %s", label, name),
				Span:    ir.NewSpan(res.Path, start, parser.EndLine(node)),
			},
			Kind: kind,
			Name: name,
		})
		return true
	})
	return out
}

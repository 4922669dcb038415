// Package performance flags expensive operations executed inside loops:
// HTTP requests, blocking file I/O and repeated string concatenation.
package performance

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
)

// Name is the stage name of the detector.
const Name = "performance"

// Ensure Analyzer implements analyzer.Detector.
var _ analyzer.Detector = (*Analyzer)(nil)

type pattern struct {
	message string
	hint    string
}

var patterns = map[models.PerfKind]pattern{
	models.PerfRequestsInLoop: {
		message: "HTTP request inside loop; consider batching or concurrency",
		hint:    "Use requests.Session for pooling or asyncio/httpx to parallelize.",
	},
	models.PerfIOInLoop: {
		message: "File I/O inside loop; hoist reads/writes or buffer",
		hint:    "Read outside the loop or batch writes; flush once.",
	},
	models.PerfStringConcatInLoop: {
		message: "String concatenation in loop; use list append + ''.join(...)",
		hint:    "Append to a list inside loop, then s=''.join(parts) once.",
	},
}

var requestCalls = map[string]bool{
	"requests.get": true, "requests.post": true, "requests.put": true,
	"requests.delete": true, "requests.head": true, "requests.patch": true,
	"httpx.get": true, "httpx.post": true, "httpx.put": true, "httpx.delete": true,
	"urllib.request.urlopen": true, "urlopen": true,
	"fetch": true,
	"axios": true, "axios.get": true, "axios.post": true, "axios.put": true,
	"axios.delete": true, "axios.patch": true, "axios.request": true,
}

var ioCalls = map[string]bool{
	"open":      true,
	"os.remove": true, "os.rename": true, "os.replace": true, "os.listdir": true,
	"shutil.copy": true, "shutil.copy2": true, "shutil.copyfile": true, "shutil.move": true,
	"fs.readFileSync": true, "fs.writeFileSync": true, "fs.appendFileSync": true,
	"fs.readdirSync": true, "fs.unlinkSync": true,
}

type grammar struct {
	loops      map[string]bool
	call       string
	augAssign  string
	assign     string
	binary     string
	identifier string
}

var pythonGrammar = grammar{
	loops:      map[string]bool{"for_statement": true, "while_statement": true},
	call:       "call",
	augAssign:  "augmented_assignment",
	assign:     "assignment",
	binary:     "binary_operator",
	identifier: "identifier",
}

var scriptGrammar = grammar{
	loops: map[string]bool{
		"for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true,
	},
	call:       "call_expression",
	augAssign:  "augmented_assignment_expression",
	assign:     "assignment_expression",
	binary:     "binary_expression",
	identifier: "identifier",
}

// Analyzer walks each module's syntax tree tracking loop depth.
type Analyzer struct{}

// New creates a performance analyzer.
func New() *Analyzer { return &Analyzer{} }

// Name implements analyzer.Detector.
func (a *Analyzer) Name() string { return Name }

// Site is an anti-pattern occurrence before attribution to a function.
type Site struct {
	Kind models.PerfKind
	Span ir.Span
}

// Detect implements analyzer.Detector. Each site is attributed to the
// innermost extracted function containing it; sites outside any function
// are not reported.
func (a *Analyzer) Detect(ctx context.Context, in analyzer.Input) (analyzer.Result, error) {
	var findings []models.Finding
	skipped, err := analyzer.ParseEach(ctx, in, analyzer.AnyKnown, func(mod ir.ModuleUnit, res *parser.ParseResult) {
		for _, site := range Scan(res) {
			fn, ok := innermost(mod.Functions, site.Span)
			if !ok {
				continue
			}
			p := patterns[site.Kind]
			findings = append(findings, models.PerformanceFinding{
				Base: models.Base{
					ID:      fmt.Sprintf("%s::%s:%d", mod.Path, site.Kind, site.Span.StartLine),
					Message: p.message,
					Span:    site.Span,
				},
				Kind:     site.Kind,
				Function: fn.Name,
				Hint:     p.hint,
			})
		}
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

func innermost(fns []ir.FunctionUnit, span ir.Span) (ir.FunctionUnit, bool) {
	var best ir.FunctionUnit
	found := false
	for _, fn := range fns {
		if !fn.Span.Contains(span) {
			continue
		}
		if !found || fn.Span.Lines() < best.Span.Lines() ||
			(fn.Span.Lines() == best.Span.Lines() && fn.Span.StartLine > best.Span.StartLine) {
			best, found = fn, true
		}
	}
	return best, found
}

// Scan returns every anti-pattern site found inside a loop, in source order.
func Scan(res *parser.ParseResult) []Site {
	g := scriptGrammar
	if res.Language == ir.LangPython {
		g = pythonGrammar
	}
	var sites []Site
	walk(res.Root(), res, g, 0, &sites)
	sort.SliceStable(sites, func(i, j int) bool {
		return sites[i].Span.StartLine < sites[j].Span.StartLine
	})
	return sites
}

func walk(node *sitter.Node, res *parser.ParseResult, g grammar, depth int, sites *[]Site) {
	if node == nil {
		return
	}
	t := node.Type()
	if g.loops[t] {
		depth++
	}
	if depth > 0 {
		if kind, ok := classify(node, t, res.Source, g); ok {
			*sites = append(*sites, Site{
				Kind: kind,
				Span: ir.NewSpan(res.Path, parser.StartLine(node), parser.EndLine(node)),
			})
		}
	}
	for i := range int(node.NamedChildCount()) {
		walk(node.NamedChild(i), res, g, depth, sites)
	}
}

func classify(node *sitter.Node, t string, src []byte, g grammar) (models.PerfKind, bool) {
	switch t {
	case g.call:
		return classifyCall(parser.DottedName(node.ChildByFieldName("function"), src))
	case g.augAssign:
		if operator(node, src) == "+=" {
			return models.PerfStringConcatInLoop, true
		}
	case g.assign:
		if isSelfConcat(node, src, g) {
			return models.PerfStringConcatInLoop, true
		}
	}
	return "", false
}

func classifyCall(callee string) (models.PerfKind, bool) {
	if callee == "" {
		return "", false
	}
	if requestCalls[callee] {
		return models.PerfRequestsInLoop, true
	}
	if ioCalls[callee] {
		return models.PerfIOInLoop, true
	}
	if i := strings.LastIndex(callee, "."); i > 0 {
		qual, name := callee[:i], callee[i+1:]
		if (name == "read_text" || name == "write_text") && strings.Contains(qual, "Path") {
			return models.PerfIOInLoop, true
		}
	}
	return "", false
}

func operator(node *sitter.Node, src []byte) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return parser.GetNodeText(op, src)
	}
	return ""
}

// isSelfConcat matches `x = x + y`.
func isSelfConcat(node *sitter.Node, src []byte, g grammar) bool {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != g.identifier || right.Type() != g.binary {
		return false
	}
	if operator(right, src) != "+" {
		return false
	}
	first := right.ChildByFieldName("left")
	return first != nil && first.Type() == g.identifier &&
		parser.GetNodeText(first, src) == parser.GetNodeText(left, src)
}

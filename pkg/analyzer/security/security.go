// Package security flags risky call sites: dynamic code execution, shell
// command execution and unsafe deserialization.
package security

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
)

// Name is the stage name of the detector.
const Name = "security"

// Ensure Analyzer implements analyzer.Detector.
var _ analyzer.Detector = (*Analyzer)(nil)

// Analyzer scans Python syntax trees and JavaScript/TypeScript text.
type Analyzer struct{}

// New creates a security analyzer.
func New() *Analyzer { return &Analyzer{} }

// Name implements analyzer.Detector.
func (a *Analyzer) Name() string { return Name }

// Detect implements analyzer.Detector. Files that cannot be read or parsed
// are skipped.
func (a *Analyzer) Detect(ctx context.Context, in analyzer.Input) (analyzer.Result, error) {
	var findings []models.Finding

	skipped, err := analyzer.ParseEach(ctx, in, analyzer.IsPython, func(mod ir.ModuleUnit, res *parser.ParseResult) {
		findings = append(findings, ScanPython(res)...)
	})
	if err != nil {
		return analyzer.Result{}, err
	}

	for _, mod := range in.Modules {
		if !analyzer.IsScript(mod.Language) {
			continue
		}
		text, err := in.Source.Read(mod.Path)
		if err != nil {
			skipped++
			continue
		}
		findings = append(findings, ScanScript(mod.Path, text)...)
	}

	var res analyzer.Result
	res.Findings = findings
	if skipped > 0 {
		res.Note = fmt.Sprintf("%d files skipped", skipped)
	}
	return res, nil
}

func newFinding(path string, start, end int, id string, r rule) models.SecurityFinding {
	return models.SecurityFinding{
		Base: models.Base{
			ID:      fmt.Sprintf("%s::%d:%s#sec", path, start, id),
			Message: r.message,
			Span:    ir.NewSpan(path, start, end),
		},
		Rule: id,
		Hint: r.hint,
	}
}

// ScanPython returns the security findings of a parsed Python module.
func ScanPython(res *parser.ParseResult) []models.Finding {
	var out []models.Finding
	for _, call := range parser.FindNodesByType(res.Root(), res.Source, "call") {
		id := pythonRule(call, res.Source)
		if id == "" {
			continue
		}
		out = append(out, newFinding(res.Path, parser.StartLine(call), parser.EndLine(call), id, rules[id]))
	}
	return out
}

func pythonRule(call *sitter.Node, src []byte) string {
	callee := parser.DottedName(call.ChildByFieldName("function"), src)
	args := call.ChildByFieldName("arguments")
	switch {
	case callee == "eval":
		return RuleEval
	case callee == "exec":
		return RuleExec
	case subprocessShellCalls[callee]:
		if v := keywordArg(args, "shell", src); v != nil && v.Type() == "true" {
			return RuleSubprocessShell
		}
	case callee == "yaml.load":
		if !hasSafeLoader(args, src) {
			return RuleYAMLLoad
		}
	case pickleLoads[callee]:
		return RulePickleLoad
	}
	return ""
}

func keywordArg(args *sitter.Node, name string, src []byte) *sitter.Node {
	if args == nil {
		return nil
	}
	for i := range int(args.NamedChildCount()) {
		kw := args.NamedChild(i)
		if kw.Type() != "keyword_argument" {
			continue
		}
		if parser.GetNodeText(kw.ChildByFieldName("name"), src) == name {
			return kw.ChildByFieldName("value")
		}
	}
	return nil
}

// hasSafeLoader accepts Loader=SafeLoader or a safe loader as second positional argument.
func hasSafeLoader(args *sitter.Node, src []byte) bool {
	if v := keywordArg(args, "Loader", src); v != nil {
		return safeLoaders[parser.DottedName(v, src)]
	}
	if args == nil {
		return false
	}
	positional := 0
	for i := range int(args.NamedChildCount()) {
		arg := args.NamedChild(i)
		if arg.Type() == "keyword_argument" || arg.Type() == "comment" {
			continue
		}
		positional++
		if positional == 2 {
			return safeLoaders[parser.DottedName(arg, src)]
		}
	}
	return false
}

var (
	scriptEvalRE    = regexp.MustCompile(`(?i)\beval\s*\(`)
	scriptNewFuncRE = regexp.MustCompile(`(?i)\bnew\s+Function\s*\(`)
	scriptExecRE    = regexp.MustCompile(`\.exec\s*\(|\bexecSync\s*\(`)
	childProcessRE  = regexp.MustCompile(`child_process`)
)

// ScanScript scans JavaScript or TypeScript text line by line. exec calls
// are only reported in files that mention child_process.
func ScanScript(path string, text []byte) []models.Finding {
	usesChildProcess := childProcessRE.Match(text)

	var out []models.Finding
	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	for line := 1; sc.Scan(); line++ {
		b := sc.Bytes()
		if scriptEvalRE.Match(b) {
			out = append(out, newFinding(path, line, line, RuleEval, scriptEval))
		}
		if scriptNewFuncRE.Match(b) {
			out = append(out, newFinding(path, line, line, RuleNewFunction, rules[RuleNewFunction]))
		}
		if usesChildProcess && scriptExecRE.Match(b) {
			out = append(out, newFinding(path, line, line, RuleChildProcessExec, rules[RuleChildProcessExec]))
		}
	}
	return out
}

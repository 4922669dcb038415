package extract

import (
	"context"
	"path"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
	"github.com/AmanS2501/Syntax-Guardian/pkg/source"
)

// ModuleKey is the dependency graph key of a file: its stem.
func ModuleKey(p string) string {
	return ir.Stem(p)
}

// ReadImports returns the sorted, deduplicated import keys of a file.
// Any read or parse failure yields an empty list.
func (e *Extractor) ReadImports(ctx context.Context, src source.ContentSource, rec ir.FileRecord) []string {
	if !rec.Language.Known() {
		return []string{}
	}
	text, err := src.Read(rec.Path)
	if err != nil {
		return []string{}
	}
	result, err := e.parser.Parse(ctx, text, rec.Language, rec.Path)
	if err != nil {
		return []string{}
	}
	defer result.Close()

	deps := make(map[string]bool)
	if rec.Language == ir.LangPython {
		pythonImports(result, deps)
	} else {
		scriptImports(result, deps)
	}

	out := make([]string, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// pythonImports records the top-level package of every import.
// "from . import x" has no module and is skipped.
func pythonImports(result *parser.ParseResult, deps map[string]bool) {
	src := result.Source
	parser.WalkTyped(result.Root(), src, func(node *sitter.Node, nodeType string, _ []byte) bool {
		switch nodeType {
		case "import_statement":
			for i := range int(node.NamedChildCount()) {
				child := node.NamedChild(i)
				if child.Type() == "aliased_import" {
					child = child.ChildByFieldName("name")
				}
				if child != nil && child.Type() == "dotted_name" {
					addTopLevel(deps, parser.GetNodeText(child, src))
				}
			}
			return false
		case "import_from_statement":
			mod := node.ChildByFieldName("module_name")
			if mod == nil {
				return false
			}
			if mod.Type() == "relative_import" {
				var dotted *sitter.Node
				for i := range int(mod.NamedChildCount()) {
					if c := mod.NamedChild(i); c.Type() == "dotted_name" {
						dotted = c
					}
				}
				if dotted == nil {
					return false
				}
				mod = dotted
			}
			addTopLevel(deps, parser.GetNodeText(mod, src))
			return false
		}
		return true
	})
}

func addTopLevel(deps map[string]bool, dotted string) {
	first, _, _ := strings.Cut(strings.TrimSpace(dotted), ".")
	if first = strings.TrimSpace(first); first != "" {
		deps[first] = true
	}
}

// scriptImports records ESM imports and re-exports. Relative specifiers
// yield their first non-dot segment without extension, bare specifiers their
// first path segment.
func scriptImports(result *parser.ParseResult, deps map[string]bool) {
	src := result.Source
	parser.WalkTyped(result.Root(), src, func(node *sitter.Node, nodeType string, _ []byte) bool {
		if nodeType != "import_statement" && nodeType != "export_statement" {
			return true
		}
		spec := node.ChildByFieldName("source")
		if spec == nil {
			return nodeType == "export_statement"
		}
		if key := specifierKey(strings.Trim(parser.GetNodeText(spec, src), "'\"`")); key != "" {
			deps[key] = true
		}
		return false
	})
}

func specifierKey(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return ""
	}
	if strings.HasPrefix(spec, ".") {
		for _, seg := range strings.FieldsFunc(spec, func(r rune) bool { return r == '/' || r == '\\' }) {
			if seg == "." || seg == ".." {
				continue
			}
			return strings.TrimSuffix(seg, path.Ext(seg))
		}
		return ""
	}
	first, _, _ := strings.Cut(spec, "/")
	return first
}

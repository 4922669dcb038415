// Package parser wraps tree-sitter for the languages the analyzer understands.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
)

// ErrUnsupportedLanguage is returned when no grammar exists for a file.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Parser wraps a tree-sitter parser. A Parser is not safe for concurrent use;
// give each worker its own.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language ir.Language
	Source   []byte
	Path     string
}

// Root returns the root node of the tree.
func (r *ParseResult) Root() *sitter.Node {
	return r.Tree.RootNode()
}

// HasErrors reports whether the parser had to recover from syntax errors.
func (r *ParseResult) HasErrors() bool {
	return r.Tree.RootNode().HasError()
}

// Close releases the tree.
func (r *ParseResult) Close() {
	if r != nil && r.Tree != nil {
		r.Tree.Close()
	}
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Parse parses source code of the given language. The path selects the TSX
// grammar for .tsx files.
func (p *Parser) Parse(ctx context.Context, source []byte, lang ir.Language, path string) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang, path)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s: no tree", path)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// GetTreeSitterLanguage returns the grammar for a language.
func GetTreeSitterLanguage(lang ir.Language, path string) (*sitter.Language, error) {
	switch lang {
	case ir.LangPython:
		return python.GetLanguage(), nil
	case ir.LangJavaScript:
		return javascript.GetLanguage(), nil
	case ir.LangTypeScript:
		if strings.EqualFold(filepath.Ext(path), ".tsx") {
			return tsx.GetLanguage(), nil
		}
		return typescript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
// Returning false skips the node's children.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// WalkTyped traverses the AST in pre-order.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type() // Cache the type once per node
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// FindNodesByType returns all nodes of the given types, in source order.
func FindNodesByType(root *sitter.Node, source []byte, types ...string) []*sitter.Node {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var results []*sitter.Node
	WalkTyped(root, source, func(node *sitter.Node, nodeType string, _ []byte) bool {
		if want[nodeType] {
			results = append(results, node)
		}
		return true
	})
	return results
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// StartLine returns the 1-based first line of a node.
func StartLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// EndLine returns the 1-based last line of a node.
func EndLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}

// DottedName renders the callee of a call or an attribute chain as a dotted
// string: "subprocess.run", "os.path.join". A call in the chain is rendered
// with parentheses, so Path(p).read_text becomes "Path().read_text".
// Anything else (subscripts, literals) yields "".
func DottedName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier", "property_identifier", "this":
		return GetNodeText(node, source)
	case "attribute":
		obj := DottedName(node.ChildByFieldName("object"), source)
		attr := GetNodeText(node.ChildByFieldName("attribute"), source)
		if obj == "" || attr == "" {
			return ""
		}
		return obj + "." + attr
	case "member_expression":
		obj := DottedName(node.ChildByFieldName("object"), source)
		prop := GetNodeText(node.ChildByFieldName("property"), source)
		if obj == "" || prop == "" {
			return ""
		}
		return obj + "." + prop
	case "call", "call_expression":
		fn := DottedName(node.ChildByFieldName("function"), source)
		if fn == "" {
			return ""
		}
		return fn + "()"
	default:
		return ""
	}
}

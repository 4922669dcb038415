package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
)

var pythonBranchTypes = map[string]bool{
	"if_statement":           true,
	"elif_clause":            true,
	"for_statement":          true,
	"while_statement":        true,
	"try_statement":          true,
	"with_statement":         true,
	"except_clause":          true,
	"except_group_clause":    true,
	"conditional_expression": true,
}

var scriptBranchTypes = map[string]bool{
	"if_statement":       true,
	"for_statement":      true,
	"for_in_statement":   true,
	"while_statement":    true,
	"do_statement":       true,
	"try_statement":      true,
	"with_statement":     true,
	"catch_clause":       true,
	"ternary_expression": true,
}

// CountBranches counts the decision points in the subtree rooted at node.
// A chain of the same boolean operator (a and b and c) counts once.
func CountBranches(node *sitter.Node, source []byte, lang ir.Language) int {
	branchTypes := scriptBranchTypes
	boolType := "binary_expression"
	if lang == ir.LangPython {
		branchTypes = pythonBranchTypes
		boolType = "boolean_operator"
	}

	count := 0
	parser.WalkTyped(node, source, func(n *sitter.Node, nodeType string, _ []byte) bool {
		switch {
		case branchTypes[nodeType]:
			count++
		case nodeType == boolType:
			op := booleanOperator(n)
			if op == "" {
				break
			}
			if parent := n.Parent(); parent != nil && parent.Type() == boolType && booleanOperator(parent) == op {
				break
			}
			count++
		}
		return true
	})
	return count
}

// booleanOperator returns and/or (Python) or &&, ||, ?? (JavaScript) for a
// boolean node, or "" for any other binary operator.
func booleanOperator(n *sitter.Node) string {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return ""
	}
	switch t := op.Type(); t {
	case "and", "or", "&&", "||", "??":
		return t
	}
	return ""
}

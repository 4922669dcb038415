package analyzer

import (
	"context"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
)

// ModuleFunc receives one re-parsed module.
type ModuleFunc func(mod ir.ModuleUnit, result *parser.ParseResult)

// ParseEach re-reads and parses every module accepted by want and hands the
// tree to fn. Modules that cannot be read or parsed are skipped; the number
// skipped is returned. Only context cancellation is reported as an error.
func ParseEach(ctx context.Context, in Input, want func(ir.Language) bool, fn ModuleFunc) (int, error) {
	psr := parser.New()
	defer psr.Close()

	skipped := 0
	for _, mod := range in.Modules {
		if err := ctx.Err(); err != nil {
			return skipped, err
		}
		if !want(mod.Language) {
			continue
		}
		text, err := in.Source.Read(mod.Path)
		if err != nil {
			skipped++
			continue
		}
		result, err := psr.Parse(ctx, text, mod.Language, mod.Path)
		if err != nil {
			skipped++
			continue
		}
		fn(mod, result)
		result.Close()
	}
	return skipped, nil
}

// IsPython selects Python modules.
func IsPython(l ir.Language) bool { return l == ir.LangPython }

// IsScript selects JavaScript and TypeScript modules.
func IsScript(l ir.Language) bool { return l == ir.LangJavaScript || l == ir.LangTypeScript }

// AnyKnown selects every language with a grammar.
func AnyKnown(l ir.Language) bool { return l.Known() }

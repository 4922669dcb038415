package score

import "github.com/AmanS2501/Syntax-Guardian/pkg/models"

// Explain returns why findings of the category matter.
func Explain(c models.Category) string {
	switch c {
	case models.CategorySecurity:
		return "Security-sensitive API usage increases the risk of injection or remote code execution; fix immediately."
	case models.CategoryComplexity:
		return "High cyclomatic complexity makes code harder to test and maintain and hides defects."
	case models.CategoryDuplication:
		return "Duplicated logic leads to divergence and bugs, increasing maintenance effort."
	case models.CategoryPerformance:
		return "Loop performs expensive operations; this can dominate runtime and reduce throughput."
	case models.CategoryDocumentation:
		return "Missing docstrings reduce readability, API clarity and onboarding speed."
	case models.CategoryTesting:
		return "Missing tests risk regressions and make safe refactoring harder."
	default:
		return "Quality issue."
	}
}

// FixHint returns a remediation hint, specialized by the finding's extra data
// where the category has any.
func FixHint(c models.Category, extra map[string]any) string {
	switch c {
	case models.CategorySecurity:
		return "Replace eval/exec; validate inputs; use safe loaders; for subprocess set shell=False and pass an argument list."
	case models.CategoryComplexity:
		return "Extract helpers; guard-return early; simplify boolean expressions with named predicates."
	case models.CategoryDuplication:
		tail := ""
		if other, _ := extra["other_file"].(string); other != "" {
			tail = " (see also " + other + ")"
		}
		return "Extract common code into a shared function or module" + tail + "; add tests for the shared path."
	case models.CategoryPerformance:
		kind, _ := extra["kind"].(string)
		switch models.PerfKind(kind) {
		case models.PerfStringConcatInLoop:
			return "Append to a list in the loop and join once: parts.append(x); s = ''.join(parts)."
		case models.PerfIOInLoop, models.PerfRequestsInLoop:
			return "Hoist I/O out of the loop, batch requests, or use concurrency with pooling and timeouts."
		default:
			return "Reduce per-iteration work; batch or cache repeated operations."
		}
	case models.CategoryDocumentation:
		return "Add module, class and function docstrings (PEP 257) describing parameters and return values."
	case models.CategoryTesting:
		expected, _ := extra["expected_test"].(string)
		if expected == "" {
			expected = "tests/test_<name>.py"
		}
		return "Create " + expected + " and add at least one unit test; use pytest fixtures and descriptive names."
	default:
		return "Apply standard refactorings and add tests."
	}
}

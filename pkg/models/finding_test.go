package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
)

func TestFindingSetAddAndAll(t *testing.T) {
	set := NewFindingSet()
	span := ir.NewSpan("a.py", 1, 2)

	require.NoError(t, set.Add(SecurityFinding{Base: Base{ID: "s", Span: span}}))
	require.NoError(t, set.Add(ComplexityFinding{Base: Base{ID: "c", Span: span}, Value: 12}))
	require.NoError(t, set.Add(TestGapFinding{Base: Base{ID: "t", Span: span}}))
	require.NoError(t, set.Add(DocumentationFinding{Base: Base{ID: "d", Span: span}, Kind: DocModule}))

	assert.Equal(t, 4, set.Len())

	var ids []string
	for _, f := range set.All() {
		ids = append(ids, f.Ident())
	}
	assert.Equal(t, []string{"s", "c", "d", "t"}, ids)

	counts := set.Counts()
	assert.Len(t, counts, len(Categories))
	assert.Equal(t, 1, counts[CategoryComplexity])
	assert.Equal(t, 0, counts[CategoryDuplication])
}

func TestFindingSetRejectsUnknown(t *testing.T) {
	set := NewFindingSet()
	err := set.Add(nil)
	assert.Error(t, err)
}

func TestFindingCategories(t *testing.T) {
	tests := []struct {
		f    Finding
		want Category
	}{
		{SecurityFinding{}, CategorySecurity},
		{ComplexityFinding{}, CategoryComplexity},
		{DuplicationFinding{}, CategoryDuplication},
		{PerformanceFinding{}, CategoryPerformance},
		{DocumentationFinding{}, CategoryDocumentation},
		{TestGapFinding{}, CategoryTesting},
	}
	for _, tt := range tests {
		if got := tt.f.Category(); got != tt.want {
			t.Errorf("%T.Category() = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestDuplicationExtra(t *testing.T) {
	f := DuplicationFinding{Other: ir.NewSpan("b.py", 4, 9), Similarity: 0.95}
	extra := f.Extra()
	assert.Equal(t, "b.py", extra["other_file"])
	assert.Equal(t, 4, extra["other_start_line"])
	assert.InDelta(t, 0.95, extra["similarity"], 1e-9)
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityP0.Rank(), SeverityP1.Rank())
	assert.Less(t, SeverityP1.Rank(), SeverityP2.Rank())
	assert.Less(t, SeverityP2.Rank(), SeverityP3.Rank())
	assert.Equal(t, 4, Severity("P9").Rank())
}

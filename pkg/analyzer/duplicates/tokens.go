package duplicates

import (
	"regexp"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Normalized token markers.
const (
	TokenID  = "ID"
	TokenNum = "NUM"
)

var tokenRE = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*|\d+|==|!=|<=|>=|&&|\|\||[{}()\[\];,.+\-*/%<>]`)

// Normalize tokenizes text, collapsing identifiers to ID and integer
// literals to NUM. Operators and punctuation are kept as written; anything
// else (strings, whitespace, comments' symbols) is dropped.
func Normalize(text string) []string {
	raw := tokenRE.FindAllString(text, -1)
	out := make([]string, len(raw))
	for i, tok := range raw {
		switch c := tok[0]; {
		case c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
			out[i] = TokenID
		case c >= '0' && c <= '9':
			out[i] = TokenNum
		default:
			out[i] = tok
		}
	}
	return out
}

// Shingles returns the set of contiguous k-token windows of tokens as
// xxhash values. Fewer than k tokens yield an empty set.
func Shingles(tokens []string, k int) *roaring64.Bitmap {
	set := roaring64.New()
	if k <= 0 || len(tokens) < k {
		return set
	}
	var d xxhash.Digest
	for i := 0; i+k <= len(tokens); i++ {
		d.Reset()
		for _, tok := range tokens[i : i+k] {
			_, _ = d.WriteString(tok)
			_, _ = d.WriteString("\x00")
		}
		set.Add(d.Sum64())
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func Jaccard(a, b *roaring64.Bitmap) float64 {
	union := a.OrCardinality(b)
	if union == 0 {
		return 0
	}
	return float64(a.AndCardinality(b)) / float64(union)
}

// digest fingerprints a whole normalized token stream so that exact
// structural clones can skip the set comparison.
func digest(tokens []string) [32]byte {
	return blake3.Sum256([]byte(strings.Join(tokens, "\x00")))
}

package score

import (
	"encoding/json"
	"maps"

	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
)

// Weights maps a category name to its base weight in [0, 1].
type Weights map[string]float64

// DefaultWeights returns a fresh copy of the default category weights.
func DefaultWeights() Weights {
	return Weights{
		string(models.CategorySecurity):      1.0,
		string(models.CategoryComplexity):    0.6,
		string(models.CategoryDuplication):   0.5,
		string(models.CategoryPerformance):   0.6,
		string(models.CategoryDocumentation): 0.3,
		string(models.CategoryTesting):       0.7,
	}
}

// Override returns a copy of w with the numeric entries of raw merged in.
// Non-numeric values are ignored. w itself is never modified.
func (w Weights) Override(raw map[string]any) Weights {
	out := make(Weights, len(w)+len(raw))
	maps.Copy(out, w)
	for k, v := range raw {
		if f, ok := toFloat(v); ok {
			out[k] = f
		}
	}
	return out
}

// For returns the weight for a category, falling back to the default.
func (w Weights) For(c models.Category) float64 {
	if v, ok := w[string(c)]; ok {
		return v
	}
	return DefaultWeights()[string(c)]
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

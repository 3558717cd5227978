package resolve

import (
	"strings"

	"github.com/fairwaylabs/shotlens/internal/model"
)

// ApplyFallback reinterprets an out-of-range winner with a minimal
// deterministic transform: divide by 10, divide by 100, then sign flip,
// first in-range result wins. It must only be called when the winner's
// value lies outside the valid range; in-range candidates never reach
// here. Returns false when no transform lands inside the range.
func ApplyFallback(c model.ScoredCandidate, spec *model.FieldSpec) (model.ScoredCandidate, bool) {
	r := spec.ValidRange
	if r == nil || !c.IsNumeric {
		return c, false
	}

	transforms := []struct {
		name  string
		apply func(float64) float64
	}{
		{"div10", func(v float64) float64 { return v / 10 }},
		{"div100", func(v float64) float64 { return v / 100 }},
		{"signflip", func(v float64) float64 { return -v }},
	}

	for _, t := range transforms {
		v := t.apply(c.Numeric)
		if !r.Contains(v) {
			continue
		}
		out := c
		out.Numeric = v
		out.Value = formatTransformed(v, c.Value)
		return out, true
	}

	return c, false
}

// formatTransformed renders the transformed value, keeping an explicit
// plus sign if the original reading carried one and the result is still
// positive.
func formatTransformed(v float64, original string) string {
	s := model.FormatNumeric(v)
	if strings.HasPrefix(original, "+") && v > 0 {
		s = "+" + s
	}
	return s
}

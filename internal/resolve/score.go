package resolve

import (
	"sort"
	"strings"

	"github.com/fairwaylabs/shotlens/internal/model"
)

// Weights controls the relative influence of each scoring term. The
// defaults were tuned against the labeled screenshot corpus; treat them
// as a starting point, not gospel.
type Weights struct {
	Proximity    float64 `yaml:"proximity" mapstructure:"proximity"`
	Decimal      float64 `yaml:"decimal" mapstructure:"decimal"`
	DecimalDrop  float64 `yaml:"decimal_drop" mapstructure:"decimal_drop"`
	RangeCenter  float64 `yaml:"range_center" mapstructure:"range_center"`
	DigitExtract float64 `yaml:"digit_extract" mapstructure:"digit_extract"`
	Sign         float64 `yaml:"sign" mapstructure:"sign"`
	Confidence   float64 `yaml:"confidence" mapstructure:"confidence"`
	PatternMatch float64 `yaml:"pattern_match" mapstructure:"pattern_match"`
}

// DefaultWeights returns the corpus-tuned scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Proximity:    100,
		Decimal:      25,
		DecimalDrop:  25,
		RangeCenter:  20,
		DigitExtract: 5,
		Sign:         10,
		Confidence:   10,
		PatternMatch: 100,
	}
}

// SelectBest scores every candidate against the spec and returns the
// single winner. The second return is false when the set is empty.
// Scoring is pure: the same candidates and spec always select the same
// winner, ties included.
func SelectBest(candidates []model.Candidate, spec *model.FieldSpec, w Weights) (model.ScoredCandidate, bool) {
	if len(candidates) == 0 {
		return model.ScoredCandidate{}, false
	}

	scored := make([]model.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, model.ScoredCandidate{
			Candidate: c,
			Score:     scoreCandidate(c, candidates, spec, w),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return lessScored(scored[i], scored[j])
	})

	return scored[0], true
}

// lessScored orders candidates best-first: higher score, then origin rank
// (full-match before digit-extract before pattern-match), then smaller
// distance, then lexicographically earliest source text.
func lessScored(a, b model.ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Origin != b.Origin {
		return a.Origin < b.Origin
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.SourceText < b.SourceText
}

// scoreCandidate sums the independent scoring terms for one candidate.
func scoreCandidate(c model.Candidate, all []model.Candidate, spec *model.FieldSpec, w Weights) float64 {
	score := proximityTerm(c, w)
	score += decimalTerm(c, spec, w)
	score += rangeTerm(c, spec, w)
	score += originTerm(c, all, spec, w)
	score += signTerm(c, spec, w)
	score += confidenceTerm(c, w)
	return score
}

// proximityTerm rewards candidates whose observation sits close to the
// expected location. Dominant when passes disagree about position.
func proximityTerm(c model.Candidate, w Weights) float64 {
	return w.Proximity / (1 + c.Distance)
}

// decimalTerm applies the decimal-completeness bonus and the truncation
// penalty. The penalty only fires when the same source text offers a
// decimal reading this candidate dropped, so "39" never outscores "39.9".
func decimalTerm(c model.Candidate, spec *model.FieldSpec, w Weights) float64 {
	if !spec.ExpectsDecimal || !c.IsNumeric {
		return 0
	}
	if strings.Contains(c.Value, ".") {
		return w.Decimal
	}
	if sourceHasDecimal(c.SourceText) {
		return -w.DecimalDrop
	}
	return 0
}

func sourceHasDecimal(text string) bool {
	for _, m := range numberRe.FindAllString(text, -1) {
		if strings.Contains(m, ".") {
			return true
		}
	}
	return false
}

// rangeTerm grants a bonus scaled by how centrally the value sits in the
// valid range. Out-of-range values get nothing here; the fallback stage
// decides what happens to them.
func rangeTerm(c model.Candidate, spec *model.FieldSpec, w Weights) float64 {
	r := spec.ValidRange
	if r == nil || !c.IsNumeric || !r.Contains(c.Numeric) {
		return 0
	}
	half := (r.Max - r.Min) / 2
	if half == 0 {
		return w.RangeCenter
	}
	offset := c.Numeric - r.Mid()
	if offset < 0 {
		offset = -offset
	}
	return w.RangeCenter * (1 - offset/half)
}

// originTerm gives digit-extract candidates a modest boost, but only
// when the digit is plausible for the field and no full-match candidate
// from the same source text carries equal validity. A lone digit must
// never out-rank a correct multi-digit reading.
func originTerm(c model.Candidate, all []model.Candidate, spec *model.FieldSpec, w Weights) float64 {
	if c.Origin != model.OriginDigitExtract || !c.IsNumeric {
		return 0
	}
	if spec.ValidRange != nil && !spec.ValidRange.Contains(c.Numeric) {
		return 0
	}
	for _, other := range all {
		if other.Origin != model.OriginFullMatch || other.SourceText != c.SourceText {
			continue
		}
		if !other.IsNumeric {
			continue
		}
		if spec.ValidRange == nil || spec.ValidRange.Contains(other.Numeric) {
			return 0
		}
	}
	return w.DigitExtract
}

// signTerm rewards candidates that kept an explicit sign when the field
// expects one.
func signTerm(c model.Candidate, spec *model.FieldSpec, w Weights) float64 {
	if !spec.ExpectsSign {
		return 0
	}
	if strings.ContainsAny(c.SourceText, "+-") && strings.ContainsAny(c.Value, "+-") {
		return w.Sign
	}
	return 0
}

// confidenceTerm folds in OCR confidence. Pattern matches lean on
// confidence much harder: their position inside the crop is incidental.
func confidenceTerm(c model.Candidate, w Weights) float64 {
	if c.Origin == model.OriginPatternMatch {
		return w.PatternMatch * c.Confidence
	}
	return w.Confidence * c.Confidence
}

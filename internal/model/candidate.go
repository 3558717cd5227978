package model

// Origin describes how a candidate was derived from an observation.
type Origin int

const (
	// OriginFullMatch is a maximal numeric substring read directly from
	// the observation text.
	OriginFullMatch Origin = iota
	// OriginDigitExtract is a single digit recovered from a spaced or
	// split digit run.
	OriginDigitExtract
	// OriginPatternMatch is a substring matched by a field's custom
	// pattern; it may not be numeric.
	OriginPatternMatch
)

// String returns the origin name used in logs and provenance output.
func (o Origin) String() string {
	switch o {
	case OriginFullMatch:
		return "full-match"
	case OriginDigitExtract:
		return "digit-extract"
	case OriginPatternMatch:
		return "pattern-match"
	default:
		return "unknown"
	}
}

// Candidate is one plausible interpretation of an observation as a field
// value, with enough provenance to score it. Candidates are transient:
// they exist only within a single resolution call.
type Candidate struct {
	Value      string  // extracted text form, e.g. "+0.22"
	Numeric    float64 // parsed value; meaningful only when IsNumeric
	IsNumeric  bool
	SourceText string  // cleaned observation text the candidate came from
	Origin     Origin
	Distance   float64 // geometric distance to the field's expected location
	Confidence float64 // OCR confidence of the source observation
}

// ScoredCandidate pairs a candidate with its total score. Scoring is a
// pure function of candidate and spec; equal inputs always produce equal
// scores.
type ScoredCandidate struct {
	Candidate
	Score float64
}

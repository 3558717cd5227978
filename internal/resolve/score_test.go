package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/shotlens/internal/model"
)

func cand(value, source string, origin model.Origin, dist, conf float64) model.Candidate {
	c := model.Candidate{
		Value:      value,
		SourceText: source,
		Origin:     origin,
		Distance:   dist,
		Confidence: conf,
	}
	c.Numeric, c.IsNumeric = parseNumeric(value)
	return c
}

func TestSelectBest_EmptySet(t *testing.T) {
	_, ok := SelectBest(nil, numericSpec("X"), DefaultWeights())
	assert.False(t, ok)
}

func TestSelectBest_DecimalBeatsTruncated(t *testing.T) {
	spec := numericSpec("CARRY")
	spec.ExpectsDecimal = true

	candidates := []model.Candidate{
		cand("39", "39.9 M", model.OriginFullMatch, 5, 0.9),
		cand("39.9", "39.9 M", model.OriginFullMatch, 5, 0.9),
	}

	best, ok := SelectBest(candidates, spec, DefaultWeights())
	require.True(t, ok)
	assert.Equal(t, "39.9", best.Value)
}

func TestSelectBest_DigitExtractNeverBeatsFullMatch(t *testing.T) {
	spec := numericSpec("FROM_PIN")
	spec.ValidRange = &model.Range{Min: 0, Max: 9}

	candidates := []model.Candidate{
		cand("6", "6", model.OriginFullMatch, 3, 0.9),
		cand("6", "6", model.OriginDigitExtract, 3, 0.9),
	}

	best, ok := SelectBest(candidates, spec, DefaultWeights())
	require.True(t, ok)
	assert.Equal(t, model.OriginFullMatch, best.Origin)
}

func TestSelectBest_ProximityDominates(t *testing.T) {
	spec := numericSpec("DIST")

	candidates := []model.Candidate{
		cand("17", "17", model.OriginFullMatch, 80, 0.9),
		cand("42", "42", model.OriginFullMatch, 2, 0.9),
	}

	best, ok := SelectBest(candidates, spec, DefaultWeights())
	require.True(t, ok)
	assert.Equal(t, "42", best.Value)
}

func TestSelectBest_RangeCentralityBreaksProximityTie(t *testing.T) {
	spec := numericSpec("DIST")
	spec.ValidRange = &model.Range{Min: 10, Max: 60}

	candidates := []model.Candidate{
		cand("35", "35", model.OriginFullMatch, 4, 0.9), // dead center of range
		cand("59", "59", model.OriginFullMatch, 4, 0.9), // edge of range
	}

	best, ok := SelectBest(candidates, spec, DefaultWeights())
	require.True(t, ok)
	assert.Equal(t, "35", best.Value)
}

func TestSelectBest_OutOfRangeStillSelectable(t *testing.T) {
	// Out-of-range values lose the range bonus but are not disqualified;
	// the fallback stage deals with them.
	spec := numericSpec("DIST")
	spec.ValidRange = &model.Range{Min: 10, Max: 60}

	candidates := []model.Candidate{
		cand("490", "490", model.OriginFullMatch, 0, 0.9),
	}

	best, ok := SelectBest(candidates, spec, DefaultWeights())
	require.True(t, ok)
	assert.Equal(t, "490", best.Value)
}

func TestSelectBest_SignBonusPrefersSignedReading(t *testing.T) {
	spec := numericSpec("STROKES_GAINED")
	spec.ExpectsSign = true
	spec.ExpectsDecimal = true

	candidates := []model.Candidate{
		cand("0.22", "0.22", model.OriginFullMatch, 2, 0.9),
		cand("+0.22", "+0.22", model.OriginFullMatch, 2, 0.9),
	}

	best, ok := SelectBest(candidates, spec, DefaultWeights())
	require.True(t, ok)
	assert.Equal(t, "+0.22", best.Value)
}

func TestSelectBest_PatternMatchFavorsConfidence(t *testing.T) {
	spec := numericSpec("SHOT_ID")

	candidates := []model.Candidate{
		cand("15", "#15", model.OriginPatternMatch, 40, 0.95),
		cand("7", "#7?", model.OriginPatternMatch, 2, 0.30),
	}

	best, ok := SelectBest(candidates, spec, DefaultWeights())
	require.True(t, ok)
	assert.Equal(t, "15", best.Value)
}

func TestSelectBest_TieBreakByDistance(t *testing.T) {
	spec := numericSpec("DIST")

	// Zero proximity weight forces an exact score tie so the distance
	// tie-break decides.
	w := DefaultWeights()
	w.Proximity = 0

	candidates := []model.Candidate{
		cand("42", "42", model.OriginFullMatch, 7, 0.9),
		cand("42", "42", model.OriginFullMatch, 3, 0.9),
	}

	best, ok := SelectBest(candidates, spec, w)
	require.True(t, ok)
	assert.Equal(t, 3.0, best.Distance)
}

func TestSelectBest_TieBreakLexicographicSource(t *testing.T) {
	spec := numericSpec("DIST")

	candidates := []model.Candidate{
		cand("42", "b 42", model.OriginFullMatch, 5, 0.9),
		cand("42", "a 42", model.OriginFullMatch, 5, 0.9),
	}

	best, ok := SelectBest(candidates, spec, DefaultWeights())
	require.True(t, ok)
	assert.Equal(t, "a 42", best.SourceText)
}

func TestSelectBest_Deterministic(t *testing.T) {
	spec := numericSpec("DIST")
	spec.ValidRange = &model.Range{Min: 10, Max: 60}

	candidates := []model.Candidate{
		cand("17", "17 M", model.OriginFullMatch, 12, 0.7),
		cand("42", "42", model.OriginFullMatch, 3, 0.8),
		cand("4", "4 2", model.OriginDigitExtract, 3, 0.8),
	}

	first, ok := SelectBest(candidates, spec, DefaultWeights())
	require.True(t, ok)
	for range 10 {
		again, ok := SelectBest(candidates, spec, DefaultWeights())
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestScoreCandidate_DecimalPenaltyOnlySameSource(t *testing.T) {
	spec := numericSpec("CARRY")
	spec.ExpectsDecimal = true
	w := DefaultWeights()

	truncated := cand("39", "39.9 M", model.OriginFullMatch, 5, 0.9)
	plain := cand("39", "39 M", model.OriginFullMatch, 5, 0.9)

	all := []model.Candidate{truncated, plain}
	assert.Less(t, scoreCandidate(truncated, all, spec, w), scoreCandidate(plain, all, spec, w),
		"truncating an available decimal costs more than never seeing one")
}

func TestSelectBest_DistanceTieProximityEqualWeights(t *testing.T) {
	// Identical candidates except distance: both scores differ only by
	// the proximity term, so the closer one wins outright.
	spec := numericSpec("DIST")
	w := DefaultWeights()

	near := cand("42", "42", model.OriginFullMatch, 1, 0.9)
	far := cand("42", "42", model.OriginFullMatch, 9, 0.9)
	all := []model.Candidate{near, far}

	assert.Greater(t, scoreCandidate(near, all, spec, w), scoreCandidate(far, all, spec, w))
}

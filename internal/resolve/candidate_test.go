package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/shotlens/internal/model"
)

func numericSpec(name string) *model.FieldSpec {
	return &model.FieldSpec{Name: name, CropBox: model.Box{W: 200, H: 100}}
}

func patternSpec(name, pattern string) *model.FieldSpec {
	reg, err := model.NewFieldRegistry([]model.FieldSpec{{
		Name:    name,
		CropBox: model.Box{W: 200, H: 100},
		Pattern: pattern,
	}})
	if err != nil {
		panic(err)
	}
	return reg.ByName(name)
}

func obs(text string, conf float64) model.Observation {
	return model.Observation{Text: text, Confidence: conf}
}

func obsAt(text string, conf, x, y, w, h float64) model.Observation {
	return model.Observation{Text: text, Box: &model.Box{X: x, Y: y, W: w, H: h}, Confidence: conf}
}

func TestGenerateCandidates_FullMatch(t *testing.T) {
	got := GenerateCandidates([]model.Observation{obs("39.5", 0.9)}, numericSpec("CARRY"))
	require.Len(t, got, 1)
	assert.Equal(t, "39.5", got[0].Value)
	assert.Equal(t, model.OriginFullMatch, got[0].Origin)
	assert.True(t, got[0].IsNumeric)
	assert.Equal(t, 39.5, got[0].Numeric)
}

func TestGenerateCandidates_SignRestored(t *testing.T) {
	// The engine sometimes splits the sign off the number.
	got := GenerateCandidates([]model.Observation{obs("+ 0.22", 0.9)}, numericSpec("SG"))
	require.NotEmpty(t, got)
	assert.Equal(t, "+0.22", got[0].Value)
	assert.Equal(t, 0.22, got[0].Numeric)
}

func TestGenerateCandidates_NegativeKept(t *testing.T) {
	got := GenerateCandidates([]model.Observation{obs("-1.67", 0.9)}, numericSpec("SG"))
	require.NotEmpty(t, got)
	assert.Equal(t, "-1.67", got[0].Value)
	assert.Equal(t, -1.67, got[0].Numeric)
}

func TestGenerateCandidates_SpacedDigitsEmitExtracts(t *testing.T) {
	got := GenerateCandidates([]model.Observation{obs("4 2", 0.8)}, numericSpec("DIST"))

	var fulls, extracts []string
	for _, c := range got {
		switch c.Origin {
		case model.OriginFullMatch:
			fulls = append(fulls, c.Value)
		case model.OriginDigitExtract:
			extracts = append(extracts, c.Value)
		}
	}
	assert.ElementsMatch(t, []string{"4", "2"}, fulls)
	assert.ElementsMatch(t, []string{"4", "2"}, extracts)
}

func TestGenerateCandidates_SingleDigitNoExtract(t *testing.T) {
	// One isolated digit is not a split run.
	got := GenerateCandidates([]model.Observation{obs("6", 0.9)}, numericSpec("FROM_PIN"))
	require.Len(t, got, 1)
	assert.Equal(t, model.OriginFullMatch, got[0].Origin)
}

func TestGenerateCandidates_PatternCaptureGroup(t *testing.T) {
	spec := patternSpec("SHOT_ID", `#\s*(\d+)`)
	got := GenerateCandidates([]model.Observation{obs("#15", 0.95)}, spec)
	require.Len(t, got, 1)
	assert.Equal(t, "15", got[0].Value)
	assert.Equal(t, model.OriginPatternMatch, got[0].Origin)
}

func TestGenerateCandidates_PatternNoMatch(t *testing.T) {
	spec := patternSpec("SHOT_ID", `#\s*(\d+)`)
	got := GenerateCandidates([]model.Observation{obs("hole 15", 0.95)}, spec)
	assert.Empty(t, got)
}

func TestGenerateCandidates_NoDigitsMeansEmpty(t *testing.T) {
	got := GenerateCandidates([]model.Observation{obs("YARDS", 0.9)}, numericSpec("DIST"))
	assert.Empty(t, got)
}

func TestGenerateCandidates_DedupeByValueAndOrigin(t *testing.T) {
	// Two passes reading the same value produce one candidate per origin.
	got := GenerateCandidates([]model.Observation{obs("42", 0.9), obs("42", 0.7)}, numericSpec("DIST"))
	require.Len(t, got, 1)
	assert.Equal(t, "42", got[0].Value)
}

func TestGenerateCandidates_DistanceFromExpected(t *testing.T) {
	spec := numericSpec("DIST") // expected location (100, 50)
	got := GenerateCandidates([]model.Observation{obsAt("42", 0.9, 90, 40, 20, 20)}, spec)
	require.Len(t, got, 1)
	// Box center is (100, 50), exactly the expected location.
	assert.Equal(t, 0.0, got[0].Distance)
}

func TestGenerateCandidates_MissingBoxZeroDistance(t *testing.T) {
	got := GenerateCandidates([]model.Observation{obs("42", 0.9)}, numericSpec("DIST"))
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Distance)
}

func TestGenerateCandidates_ConfusionVariantYieldsNumber(t *testing.T) {
	// "4O" literal has digits 4; variant "40" should surface as well.
	got := GenerateCandidates([]model.Observation{obs("4O", 0.8)}, numericSpec("DIST"))
	values := make([]string, 0, len(got))
	for _, c := range got {
		values = append(values, c.Value)
	}
	assert.Contains(t, values, "40")
}

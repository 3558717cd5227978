package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText_CollapsesWhitespace(t *testing.T) {
	got := NormalizeText("  39.9   M  ")
	require.NotEmpty(t, got)
	assert.Equal(t, "39.9 M", got[0])
}

func TestNormalizeText_StripsNonPrintable(t *testing.T) {
	got := NormalizeText("4\x002\x1b")
	assert.Equal(t, "42", got[0])
}

func TestNormalizeText_ConfusionVariantAdjacentToDigit(t *testing.T) {
	got := NormalizeText("4O")
	require.Len(t, got, 2)
	assert.Equal(t, "4O", got[0], "literal reading is kept")
	assert.Equal(t, "40", got[1], "confusion variant is additional")
}

func TestNormalizeText_NoVariantForPlainWords(t *testing.T) {
	got := NormalizeText("YARDS")
	assert.Equal(t, []string{"YARDS"}, got)
}

func TestNormalizeText_FullwidthDigitsFolded(t *testing.T) {
	got := NormalizeText("４２") // fullwidth "42"
	assert.Equal(t, "42", got[0])
}

func TestNormalizeText_EmptyInput(t *testing.T) {
	assert.Equal(t, []string{""}, NormalizeText(""))
	assert.Equal(t, []string{""}, NormalizeText("   "))
}

func TestNormalizeText_MixedConfusions(t *testing.T) {
	got := NormalizeText("S2.3")
	require.Len(t, got, 2)
	assert.Equal(t, "52.3", got[1])
}

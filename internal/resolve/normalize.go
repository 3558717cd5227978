package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// confusions maps single characters OCR engines commonly misread for
// digits. Applied only to produce an additional variant; the literal
// reading is always kept.
var confusions = map[rune]rune{
	'O': '0',
	'o': '0',
	'D': '0',
	'l': '1',
	'I': '1',
	'|': '1',
	'Z': '2',
	'S': '5',
	's': '5',
	'G': '6',
	'B': '8',
	'g': '9',
}

// NormalizeText cleans one raw OCR string and returns the set of text
// variants to consider downstream: the cleaned literal first, then a
// digit-confusion variant when it differs. It never fails; input that
// cleans down to nothing yields a single empty variant.
func NormalizeText(raw string) []string {
	cleaned := cleanText(raw)

	variants := []string{cleaned}
	if mapped := applyConfusions(cleaned); mapped != cleaned {
		variants = append(variants, mapped)
	}
	return variants
}

// cleanText strips non-printable runes, folds compatibility forms
// (fullwidth digits, ligatures) and collapses internal whitespace.
func cleanText(raw string) string {
	folded := norm.NFKC.String(raw)

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case unicode.IsPrint(r):
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// applyConfusions maps confusable characters to digits, but only when
// they sit adjacent to a digit. A lone "O" in a word stays a letter; the
// "O" in "4O" becomes a zero.
func applyConfusions(s string) string {
	runes := []rune(s)
	out := make([]rune, len(runes))
	copy(out, runes)

	for i, r := range runes {
		mapped, ok := confusions[r]
		if !ok {
			continue
		}
		if digitAdjacent(runes, i) {
			out[i] = mapped
		}
	}
	return string(out)
}

func digitAdjacent(runes []rune, i int) bool {
	if i > 0 && unicode.IsDigit(runes[i-1]) {
		return true
	}
	if i < len(runes)-1 && unicode.IsDigit(runes[i+1]) {
		return true
	}
	return false
}

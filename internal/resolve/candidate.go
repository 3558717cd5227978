package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fairwaylabs/shotlens/internal/model"
)

var numberRe = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?`)

// GenerateCandidates derives every plausible interpretation of the
// observations as a value for the given field. An empty result means the
// field was not seen; it is not an error.
func GenerateCandidates(obs []model.Observation, spec *model.FieldSpec) []model.Candidate {
	var out []model.Candidate
	seen := make(map[string]bool)

	expected := spec.ExpectedLocation()

	add := func(c model.Candidate) {
		key := c.Value + "\x00" + c.Origin.String()
		if c.Value == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}

	for _, o := range obs {
		distance := 0.0
		if o.Box != nil {
			distance = o.Box.Center().Distance(expected)
		}

		for i, text := range NormalizeText(o.Text) {
			// SourceText is always the cleaned literal reading, so
			// provenance survives confusion mapping.
			source := text
			if i > 0 {
				source = cleanText(o.Text)
			}

			base := model.Candidate{
				SourceText: source,
				Distance:   distance,
				Confidence: o.Confidence,
			}

			if spec.PatternRegex != nil {
				for _, c := range patternCandidates(text, spec, base) {
					add(c)
				}
				continue
			}

			for _, c := range numericCandidates(text, base) {
				add(c)
			}
			for _, c := range digitExtractCandidates(text, base) {
				add(c)
			}
		}
	}

	return out
}

// patternCandidates matches the field's custom pattern. The first capture
// group wins when present, otherwise the whole match.
func patternCandidates(text string, spec *model.FieldSpec, base model.Candidate) []model.Candidate {
	var out []model.Candidate
	for _, m := range spec.PatternRegex.FindAllStringSubmatch(text, -1) {
		value := m[0]
		if len(m) > 1 && m[1] != "" {
			value = m[1]
		}
		c := base
		c.Value = value
		c.Origin = model.OriginPatternMatch
		c.Numeric, c.IsNumeric = parseNumeric(value)
		out = append(out, c)
	}
	return out
}

// numericCandidates extracts every maximal signed numeric substring.
// An explicit plus sign anywhere in the text is restored onto the value,
// matching how launch monitors render positive deltas.
func numericCandidates(text string, base model.Candidate) []model.Candidate {
	var out []model.Candidate
	for _, m := range numberRe.FindAllString(text, -1) {
		value := m
		if strings.Contains(text, "+") && !strings.HasPrefix(value, "+") {
			value = "+" + strings.TrimLeft(value, "+-")
		}
		c := base
		c.Value = value
		c.Origin = model.OriginFullMatch
		c.Numeric, c.IsNumeric = parseNumeric(value)
		out = append(out, c)
	}
	return out
}

// digitExtractCandidates recovers individual digits from a spaced digit
// run such as "4 2", a hallmark of the OCR engine splitting a multi-digit
// number. Requires at least two isolated digits before emitting anything.
func digitExtractCandidates(text string, base model.Candidate) []model.Candidate {
	matches := isolatedDigits(text)
	if len(matches) < 2 {
		return nil
	}
	var out []model.Candidate
	for _, d := range matches {
		c := base
		c.Value = d
		c.Origin = model.OriginDigitExtract
		c.Numeric, c.IsNumeric = parseNumeric(d)
		out = append(out, c)
	}
	return out
}

// isolatedDigits returns the single-character digit tokens of the text,
// so "4 2 7" yields all three digits.
func isolatedDigits(text string) []string {
	var out []string
	for _, f := range strings.Fields(text) {
		if len(f) == 1 && f[0] >= '0' && f[0] <= '9' {
			out = append(out, f)
		}
	}
	return out
}

func parseNumeric(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

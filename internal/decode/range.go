package decode

import (
	"regexp"
	"strconv"
)

var rangeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)-(\d+(?:\.\d+)?)`)

// Range holds a decoded low-high expression: the matched range text and
// its numeric endpoints.
type Range struct {
	Text string
	From float64
	To   float64
}

// YardageRange decodes text of the shape "<low>-<high>", ignoring
// trailing unit words ("30-50 yds" decodes as 30 to 50). An inverted
// range means garbled OCR and decodes as a failure, never as a swapped
// pair.
func YardageRange(text string) (Range, bool) {
	m := rangeRe.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}

	from, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Range{}, false
	}
	to, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Range{}, false
	}

	if from > to {
		return Range{}, false
	}

	return Range{Text: m[1] + "-" + m[2], From: from, To: to}, true
}

// Package decode converts resolved OCR text into stricter typed forms.
// Decoders either fully succeed or report failure; they never emit a
// partial result.
package decode

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// monthNumbers maps full English month names to zero-padded numbers.
var monthNumbers = map[string]string{
	"JANUARY":   "01",
	"FEBRUARY":  "02",
	"MARCH":     "03",
	"APRIL":     "04",
	"MAY":       "05",
	"JUNE":      "06",
	"JULY":      "07",
	"AUGUST":    "08",
	"SEPTEMBER": "09",
	"OCTOBER":   "10",
	"NOVEMBER":  "11",
	"DECEMBER":  "12",
}

var (
	dateRe  = regexp.MustCompile(`([A-Z]+)\s+(\d{1,2}),\s*(\d{4})`)
	toUpper = cases.Upper(language.English)
)

// Date converts a month-name date expression like "JULY 1, 2025" (or
// "july 1,2025") into an eight-character YYYYMMDD string. Returns false
// for unrecognized months or inextractable day/year.
func Date(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	m := dateRe.FindStringSubmatch(toUpper.String(text))
	if m == nil {
		return "", false
	}

	month, ok := monthNumbers[m[1]]
	if !ok {
		return "", false
	}

	day := m[2]
	if len(day) == 1 {
		day = "0" + day
	}

	return m[3] + month + day, true
}

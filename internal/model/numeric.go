package model

import "strconv"

// FormatNumeric renders a float the way it would appear on screen:
// no exponent, no trailing zeros.
func FormatNumeric(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

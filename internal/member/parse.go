package member

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumeric is the tolerant numeric parse used everywhere a cell or rule
// operand becomes a number. It strips percent signs, dollar signs, commas,
// and surrounding whitespace, and returns nil for anything that still does
// not parse. NaN and infinities also return nil; they must never reach
// consumers.
func ParseNumeric(s string) *float64 {
	cleaned := strings.TrimSpace(strings.NewReplacer("%", "", "$", "", ",", "").Replace(s))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NormalizeZip zero-pads a bare numeric ZIP of up to five digits to the
// canonical five-character form. Values containing anything other than
// digits (ZIP+4, foreign codes, typos) pass through unchanged.
func NormalizeZip(s string) string {
	str := strings.TrimSpace(s)
	if str == "" {
		return ""
	}
	if len(str) > 5 {
		return str
	}
	for _, r := range str {
		if r < '0' || r > '9' {
			return str
		}
	}
	return strings.Repeat("0", 5-len(str)) + str
}

// Truthy reports whether a raw cell should be treated as a set flag.
// Empty, "0", "false", "no", "n", "null", and "nan" are false.
func Truthy(s string) bool {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "", "0", "false", "no", "n", "null", "nan":
		return false
	}
	return true
}

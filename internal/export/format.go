// Package export renders cohort, aggregation, and campaign results as
// CSV for downstream tooling. Formatting matches the on-screen display:
// missing numerics render as "-", percentages from fractions.
package export

import (
	"fmt"
	"math"
	"time"
)

// FmtNumber renders a nullable numeric with fixed decimals, "-" when nil
// or not finite.
func FmtNumber(v *float64, decimals int) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

// FmtPercent renders a fraction as a percentage with fixed decimals.
func FmtPercent(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.*f%%", decimals, v*100)
}

// FmtSigned renders a nullable numeric with an explicit plus sign on
// positive values.
func FmtSigned(v *float64, decimals int) string {
	s := FmtNumber(v, decimals)
	if v != nil && *v > 0 && s != "-" {
		return "+" + s
	}
	return s
}

// FmtDateHuman converts an ISO date (2006-01-02) to a short readable
// form. Unparseable input passes through unchanged.
func FmtDateHuman(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("Jan 2, 2006")
}

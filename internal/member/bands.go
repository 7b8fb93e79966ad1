package member

import (
	"strings"

	"github.com/lanternhealth/sdohscope/internal/policy"
)

// Risk band labels. These appear verbatim in reference configuration and
// persisted exports, so they are contract strings, not display strings.
const (
	BandHigh     = "High risk"
	BandModerate = "Moderate risk"
	BandLower    = "Lower risk"
	BandUnknown  = "Unknown risk"
)

// SDOH lift segment labels.
const (
	LevelExtreme     = "Extremely high SDOH burden"
	LevelSignificant = "Significant SDOH influence on risk"
	LevelMild        = "Mild SDOH contribution"
	LevelProtective  = "SDOH Protective / No Impact"
	LevelUnknown     = "Unknown"
)

// RiskBand classifies a predicted risk score. A nil score is Unknown.
func RiskBand(score *float64, pol policy.Policy) string {
	if score == nil {
		return BandUnknown
	}
	switch {
	case *score > pol.HighRiskAbove:
		return BandHigh
	case *score >= pol.ModerateRiskFrom:
		return BandModerate
	default:
		return BandLower
	}
}

// BandRank orders bands for sorting: High=3, Moderate=2, Lower=1, else 0.
func BandRank(band string) int {
	switch strings.ToLower(band) {
	case "high risk":
		return 3
	case "moderate risk":
		return 2
	case "lower risk":
		return 1
	default:
		return 0
	}
}

// LiftLevel classifies an SDOH lift value. A nil lift is Unknown.
func LiftLevel(lift *float64, pol policy.Policy) string {
	if lift == nil {
		return LevelUnknown
	}
	switch {
	case *lift > pol.ExtremeLiftAbove:
		return LevelExtreme
	case *lift > pol.SignificantLiftAbove:
		return LevelSignificant
	case *lift >= 0:
		return LevelMild
	default:
		return LevelProtective
	}
}

// BadgeClass maps a lift segment label onto the four distribution buckets.
// Labels are matched by substring so that externally supplied segment
// wording still lands in a bucket. Unrecognized labels return "".
func BadgeClass(level string) string {
	seg := strings.ToLower(level)
	switch {
	case strings.Contains(seg, "extreme"):
		return "extreme"
	case strings.Contains(seg, "significant"):
		return "significant"
	case strings.Contains(seg, "mild"):
		return "mild"
	case strings.Contains(seg, "protective"), strings.Contains(seg, "no impact"):
		return "protective"
	default:
		return ""
	}
}

// HighBurden reports whether a lift segment counts as high SDOH burden
// (the significant or extreme buckets).
func HighBurden(level string) bool {
	seg := strings.ToLower(level)
	return strings.Contains(seg, "extremely high") ||
		strings.Contains(seg, "extreme") ||
		strings.Contains(seg, "significant")
}

// AgeGroup buckets an age. Out-of-range ages are bucketed by the same
// rules, not clamped. A nil age returns "".
func AgeGroup(age *float64) string {
	if age == nil {
		return ""
	}
	a := *age
	switch {
	case a < 18:
		return "Under 18"
	case a < 35:
		return "18-34"
	case a < 45:
		return "35-44"
	case a < 65:
		return "45-64"
	case a < 80:
		return "65-79"
	default:
		return "80+"
	}
}

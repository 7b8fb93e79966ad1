// Package filter derives the active cohort: AND-combined predicates over
// the normalized member collection, plus the second-stage distribution
// bucket restriction. Every pass is pure and safe to re-run on each
// interaction.
package filter

import (
	"strings"

	"github.com/lanternhealth/sdohscope/internal/member"
)

// Match is one dimension's filter value: empty matches everything, one
// entry matches by string equality, several entries match by membership.
type Match []string

// One is a convenience constructor for a single-value match.
func One(v string) Match {
	if v == "" {
		return nil
	}
	return Match{v}
}

// Matches reports whether a candidate passes this dimension.
func (m Match) Matches(candidate string) bool {
	if len(m) == 0 {
		return true
	}
	for _, want := range m {
		if candidate == want {
			return true
		}
	}
	return false
}

// State is the full filter state. The zero value matches every member.
//
// FocusHighBurden and SDOHLevel are mutually exclusive at the presentation
// layer (activating focus clears the level there); this engine applies
// whatever state it receives and simply ANDs both when given both. The
// same holds for DistributionBucket, which is applied by ApplyBucket as a
// second stage, never here.
type State struct {
	SDOHLevel Match
	County    Match
	Zip       Match
	Plan      Match
	Contract  Match
	Race      Match
	RiskBand  Match
	AgeGroup  Match

	// Search matches case-insensitively against id + name + zip.
	Search string

	FocusHighBurden bool

	// DistributionBucket restricts to one badge class; see ApplyBucket.
	DistributionBucket string
}

// IsZero reports whether the state matches everything.
func (s State) IsZero() bool {
	return len(s.SDOHLevel) == 0 && len(s.County) == 0 && len(s.Zip) == 0 &&
		len(s.Plan) == 0 && len(s.Contract) == 0 && len(s.Race) == 0 &&
		len(s.RiskBand) == 0 && len(s.AgeGroup) == 0 &&
		s.Search == "" && !s.FocusHighBurden && s.DistributionBucket == ""
}

// Apply evaluates the primary filter set (everything except the
// distribution bucket) and returns the surviving members in input order.
func Apply(members []member.Member, s State) []member.Member {
	search := strings.ToLower(s.Search)

	out := make([]member.Member, 0, len(members))
	for _, m := range members {
		if !s.SDOHLevel.Matches(m.SDOHLevel) {
			continue
		}
		if !s.County.Matches(m.County) {
			continue
		}
		if !s.Zip.Matches(m.Zip) {
			continue
		}
		if !s.Plan.Matches(m.Plan) {
			continue
		}
		if !s.Contract.Matches(m.Contract) {
			continue
		}
		if !s.Race.Matches(m.Race) {
			continue
		}
		if !s.RiskBand.Matches(m.RiskBand) {
			continue
		}
		if !s.AgeGroup.Matches(m.AgeGroup) {
			continue
		}
		if search != "" {
			text := strings.ToLower(m.ID + m.Name + m.Zip)
			if !strings.Contains(text, search) {
				continue
			}
		}
		if s.FocusHighBurden && !member.HighBurden(m.SDOHLevel) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ApplyBucket restricts a primary-filtered cohort to one distribution
// bucket. The primary cohort is the universe here: percentages stay
// internally consistent only if this runs after Apply, never against the
// full dataset.
func ApplyBucket(primary []member.Member, bucket string) []member.Member {
	if bucket == "" {
		return primary
	}
	out := make([]member.Member, 0, len(primary))
	for _, m := range primary {
		if member.BadgeClass(m.SDOHLevel) == bucket {
			out = append(out, m)
		}
	}
	return out
}

// Cohort runs both stages and returns the final cohort along with the
// primary-filtered universe used for distribution percentages.
func Cohort(members []member.Member, s State) (cohort, universe []member.Member) {
	universe = Apply(members, s)
	cohort = ApplyBucket(universe, s.DistributionBucket)
	return cohort, universe
}

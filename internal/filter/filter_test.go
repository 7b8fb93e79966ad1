package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhealth/sdohscope/internal/member"
)

func sample() []member.Member {
	return []member.Member{
		{Idx: 0, ID: "M1", Name: "Dana Ortiz", Zip: "06103", County: "Hartford", Contract: "H1001", RiskBand: member.BandHigh, SDOHLevel: member.LevelExtreme, AgeGroup: "65-79"},
		{Idx: 1, ID: "M2", Name: "Kim Lee", Zip: "06106", County: "Hartford", Contract: "H2002", RiskBand: member.BandModerate, SDOHLevel: member.LevelMild, AgeGroup: "45-64"},
		{Idx: 2, ID: "M3", Name: "Ana Silva", Zip: "06510", County: "New Haven", Contract: "H1001", RiskBand: member.BandLower, SDOHLevel: member.LevelSignificant, AgeGroup: "18-34"},
		{Idx: 3, ID: "M4", Name: "Lee Park", Zip: "06511", County: "New Haven", Contract: "H3003", RiskBand: member.BandHigh, SDOHLevel: member.LevelProtective, AgeGroup: "80+"},
	}
}

func ids(members []member.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.ID)
	}
	return out
}

func TestApply_ZeroStateMatchesEverything(t *testing.T) {
	members := sample()
	var s State
	require.True(t, s.IsZero())

	got := Apply(members, s)
	assert.Equal(t, ids(members), ids(got))
}

func TestApply_PredicatesAND(t *testing.T) {
	s := State{
		County:   One("Hartford"),
		RiskBand: One(member.BandHigh),
	}
	got := Apply(sample(), s)
	assert.Equal(t, []string{"M1"}, ids(got))
}

func TestApply_MatchListMembership(t *testing.T) {
	s := State{Contract: Match{"H1001", "H3003"}}
	got := Apply(sample(), s)
	assert.Equal(t, []string{"M1", "M3", "M4"}, ids(got))
}

func TestApply_SearchIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		search string
		want   []string
	}{
		{"dana", []string{"M1"}},
		{"LEE", []string{"M2", "M4"}},
		{"0651", []string{"M3", "M4"}},
		{"m3", []string{"M3"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got := Apply(sample(), State{Search: tt.search})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_FocusHighBurden(t *testing.T) {
	got := Apply(sample(), State{FocusHighBurden: true})
	assert.Equal(t, []string{"M1", "M3"}, ids(got))
}

func TestApplyBucket(t *testing.T) {
	primary := Apply(sample(), State{})

	assert.Equal(t, []string{"M2"}, ids(ApplyBucket(primary, "mild")))
	assert.Equal(t, primary, ApplyBucket(primary, ""))
	assert.Empty(t, ApplyBucket(primary, "nope"))
}

func TestCohort_BucketAppliesAfterPrimaryFilters(t *testing.T) {
	s := State{
		County:             One("New Haven"),
		DistributionBucket: "significant",
	}
	cohort, universe := Cohort(sample(), s)

	assert.Equal(t, []string{"M3", "M4"}, ids(universe))
	assert.Equal(t, []string{"M3"}, ids(cohort))
}

func TestCohort_Monotone(t *testing.T) {
	members := sample()
	s := State{RiskBand: One(member.BandHigh), DistributionBucket: "extreme"}
	cohort, universe := Cohort(members, s)

	assert.LessOrEqual(t, len(cohort), len(universe))
	assert.LessOrEqual(t, len(universe), len(members))
	for _, m := range cohort {
		assert.Contains(t, ids(universe), m.ID)
	}
}

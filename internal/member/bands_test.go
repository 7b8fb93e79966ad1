package member

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lanternhealth/sdohscope/internal/policy"
)

func TestRiskBand_Boundaries(t *testing.T) {
	pol := policy.Default()
	tests := []struct {
		name  string
		score *float64
		want  string
	}{
		{"well above high", f64(3.0), BandHigh},
		{"just above high cut", f64(2.31), BandHigh},
		{"exactly high cut is moderate", f64(2.3), BandModerate},
		{"exactly moderate cut", f64(1.8), BandModerate},
		{"just below moderate cut", f64(1.79), BandLower},
		{"zero", f64(0), BandLower},
		{"negative", f64(-1), BandLower},
		{"nil is unknown", nil, BandUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskBand(tt.score, pol))
		})
	}
}

func TestBandRank(t *testing.T) {
	assert.Equal(t, 3, BandRank(BandHigh))
	assert.Equal(t, 2, BandRank(BandModerate))
	assert.Equal(t, 1, BandRank(BandLower))
	assert.Equal(t, 0, BandRank(BandUnknown))
	assert.Equal(t, 0, BandRank(""))
}

func TestLiftLevel_Boundaries(t *testing.T) {
	pol := policy.Default()
	tests := []struct {
		name string
		lift *float64
		want string
	}{
		{"above extreme cut", f64(0.51), LevelExtreme},
		{"exactly extreme cut is significant", f64(0.5), LevelSignificant},
		{"above significant cut", f64(0.21), LevelSignificant},
		{"exactly significant cut is mild", f64(0.2), LevelMild},
		{"zero is mild", f64(0), LevelMild},
		{"negative is protective", f64(-0.05), LevelProtective},
		{"nil is unknown", nil, LevelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LiftLevel(tt.lift, pol))
		})
	}
}

func TestBadgeClass(t *testing.T) {
	assert.Equal(t, "extreme", BadgeClass(LevelExtreme))
	assert.Equal(t, "significant", BadgeClass(LevelSignificant))
	assert.Equal(t, "mild", BadgeClass(LevelMild))
	assert.Equal(t, "protective", BadgeClass(LevelProtective))
	assert.Equal(t, "protective", BadgeClass("No Impact"))
	assert.Equal(t, "", BadgeClass(LevelUnknown))
	assert.Equal(t, "", BadgeClass(""))
}

func TestHighBurden(t *testing.T) {
	assert.True(t, HighBurden(LevelExtreme))
	assert.True(t, HighBurden(LevelSignificant))
	assert.False(t, HighBurden(LevelMild))
	assert.False(t, HighBurden(LevelProtective))
	assert.False(t, HighBurden(""))
}

func TestAgeGroup(t *testing.T) {
	tests := []struct {
		age  *float64
		want string
	}{
		{f64(5), "Under 18"},
		{f64(17.9), "Under 18"},
		{f64(18), "18-34"},
		{f64(34), "18-34"},
		{f64(35), "35-44"},
		{f64(44.5), "35-44"},
		{f64(45), "45-64"},
		{f64(64), "45-64"},
		{f64(65), "65-79"},
		{f64(79), "65-79"},
		{f64(80), "80+"},
		{f64(130), "80+"}, // out-of-range ages bucket, no clamping
		{f64(-3), "Under 18"},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeGroup(tt.age))
	}
}

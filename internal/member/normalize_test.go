package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhealth/sdohscope/internal/policy"
)

func TestNormalize_Basics(t *testing.T) {
	pol := policy.Default()
	row := Raw{
		"member":          " M0001 ",
		"member_name":     "Dana Ortiz",
		"age":             "67",
		"zip":             "6103",
		"county":          "Hartford",
		"risk_full":       "2.5",
		"risk_no_sdoh":    "2.1",
		"sdoh_lift":       "0.4",
		"sdoh_lift_level": LevelSignificant,
		"sdoh_driver_1":   "food_insecurity_index",
	}

	m := Normalize(row, 7, pol)

	assert.Equal(t, 7, m.Idx)
	assert.Equal(t, "M0001", m.ID)
	assert.Equal(t, "Dana Ortiz", m.Name)
	assert.Equal(t, "06103", m.Zip)
	assert.Equal(t, "65-79", m.AgeGroup)
	require.NotNil(t, m.SDOHLift)
	assert.InDelta(t, 0.4, *m.SDOHLift, 1e-9)
	assert.Equal(t, BandHigh, m.RiskBand)
	assert.Equal(t, LevelSignificant, m.SDOHLevel)
	assert.Equal(t, "food_insecurity_index", m.PrimaryDriver())
}

func TestNormalize_DerivesLiftFromRiskPair(t *testing.T) {
	pol := policy.Default()
	m := Normalize(Raw{
		"risk_full":    "2.4",
		"risk_no_sdoh": "2.1",
	}, 0, pol)

	require.NotNil(t, m.SDOHLift)
	assert.InDelta(t, 0.3, *m.SDOHLift, 1e-9)
	// derived lift also fills the missing level label
	assert.Equal(t, LevelSignificant, m.SDOHLevel)
}

func TestNormalize_NoLiftWhenRiskPairIncomplete(t *testing.T) {
	pol := policy.Default()
	m := Normalize(Raw{"risk_full": "2.4"}, 0, pol)

	assert.Nil(t, m.SDOHLift)
	assert.Equal(t, LevelUnknown, m.SDOHLevel)
	assert.Equal(t, BandHigh, m.RiskBand)
}

func TestNormalize_UnparseableNumericsBecomeNil(t *testing.T) {
	pol := policy.Default()
	m := Normalize(Raw{
		"age":       "unknown",
		"risk_full": "",
		"bmi":       "n/a",
	}, 0, pol)

	assert.Nil(t, m.Age)
	assert.Nil(t, m.RiskFull)
	assert.Nil(t, m.BMI)
	assert.Equal(t, BandUnknown, m.RiskBand)
	assert.Equal(t, "", m.AgeGroup)
}

func TestNormalize_ExtraColumnsRetained(t *testing.T) {
	pol := policy.Default()
	m := Normalize(Raw{
		"member":               "M1",
		"OutreachAttemptCount": "3",
		"Channel":              "sms",
		"risk_full":            "2.0",
	}, 0, pol)

	require.NotNil(t, m.Extra)
	assert.Equal(t, "3", m.Extra["OutreachAttemptCount"])
	assert.Equal(t, "sms", m.Extra["Channel"])
	_, mapped := m.Extra["risk_full"]
	assert.False(t, mapped, "modeled columns must not leak into Extra")
}

func TestNormalize_Drivers(t *testing.T) {
	pol := policy.Default()
	m := Normalize(Raw{
		"sdoh_driver_1":       "housing_instability",
		"sdoh_driver_1_value": "0.31",
		"sdoh_driver_3":       "transit_dependency",
		"nonsdoh_driver_1":    "a1c_value",
	}, 0, pol)

	sdoh := m.Drivers(DriverSDOH)
	require.Len(t, sdoh, 2, "empty slots are dropped")
	assert.Equal(t, "housing_instability", sdoh[0].Name)
	require.NotNil(t, sdoh[0].Value)
	assert.InDelta(t, 0.31, *sdoh[0].Value, 1e-9)
	assert.Equal(t, "transit_dependency", sdoh[1].Name)
	assert.Nil(t, sdoh[1].Value)

	non := m.Drivers(DriverNonSDOH)
	require.Len(t, non, 1)
	assert.Equal(t, "a1c_value", non[0].Name)
}

package campaign

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhealth/sdohscope/internal/member"
)

func adherentMember() *member.Member {
	return &member.Member{
		ID:              "M1",
		ComplianceHbA1c: f64(0.6),
		RiskFull:        f64(2.5),
		SDOHLift:        f64(0.3),
	}
}

func legacyCampaign() *Campaign {
	defaults := Defaults()
	return &defaults[0]
}

func TestEnrolled_OverridePrecedence(t *testing.T) {
	c := legacyCampaign()
	eligible := adherentMember()
	ineligible := &member.Member{ID: "M2"}

	// no override: eligibility decides
	assert.True(t, Enrolled(c, eligible, Record{}))
	assert.False(t, Enrolled(c, ineligible, Record{}))

	// include wins regardless of eligibility
	assert.True(t, Enrolled(c, ineligible, Record{Override: OverrideInclude}))

	// exclude blocks regardless of eligibility
	assert.False(t, Enrolled(c, eligible, Record{Override: OverrideExclude}))

	assert.False(t, Enrolled(nil, eligible, Record{}))
	assert.False(t, Enrolled(c, nil, Record{}))
}

func TestEnrolled_NegativeLiftDropsEligibility(t *testing.T) {
	c := legacyCampaign()
	m := adherentMember()
	require.True(t, Enrolled(c, m, Record{}))

	// the adherence predicate requires a positive lift
	m.SDOHLift = f64(-0.1)
	assert.False(t, Enrolled(c, m, Record{}))
	assert.Equal(t, SourceNone, Source(c, m, Record{}))
}

func TestReconcile(t *testing.T) {
	c := legacyCampaign()
	eligible := adherentMember()
	ineligible := &member.Member{ID: "M2"}

	// overrides matching computed eligibility are cleared
	assert.Equal(t, OverrideUnset, Reconcile(c, eligible, Record{Override: OverrideInclude}).Override)
	assert.Equal(t, OverrideUnset, Reconcile(c, ineligible, Record{Override: OverrideExclude}).Override)

	// overrides that change the outcome survive
	assert.Equal(t, OverrideExclude, Reconcile(c, eligible, Record{Override: OverrideExclude}).Override)
	assert.Equal(t, OverrideInclude, Reconcile(c, ineligible, Record{Override: OverrideInclude}).Override)

	// other record fields pass through untouched
	rec := Reconcile(c, eligible, Record{Override: OverrideInclude, Note: "call after 5pm"})
	assert.Equal(t, OverrideUnset, rec.Override)
	assert.Equal(t, "call after 5pm", rec.Note)

	assert.Equal(t, OverrideInclude, Reconcile(nil, eligible, Record{Override: OverrideInclude}).Override)
	assert.Equal(t, OverrideInclude, Reconcile(c, nil, Record{Override: OverrideInclude}).Override)
}

func TestSource(t *testing.T) {
	c := legacyCampaign()

	assert.Equal(t, SourceManual, Source(c, &member.Member{}, Record{Override: OverrideInclude}))
	assert.Equal(t, SourceExcluded, Source(c, adherentMember(), Record{Override: OverrideExclude}))
	assert.Equal(t, SourceAuto, Source(c, adherentMember(), Record{}))
	assert.Equal(t, SourceNone, Source(c, &member.Member{}, Record{}))
}

func TestEnrollments_SetPrunesZeroRecords(t *testing.T) {
	e := make(Enrollments)

	e.Set("c1", "M1", Record{Override: OverrideInclude})
	rec, ok := e.Get("c1", "M1")
	require.True(t, ok)
	assert.Equal(t, OverrideInclude, rec.Override)

	// clearing the override removes the record and the empty bucket
	e.Set("c1", "M1", Record{})
	_, ok = e.Get("c1", "M1")
	assert.False(t, ok)
	assert.Empty(t, e)

	// zero records are never stored in the first place
	e.Set("c1", "M2", Record{})
	assert.Empty(t, e)

	e.Set("", "M1", Record{Override: OverrideInclude})
	e.Set("c1", "", Record{Override: OverrideInclude})
	assert.Empty(t, e)
}

func TestEnrollments_Drop(t *testing.T) {
	e := make(Enrollments)
	e.Set("c1", "M1", Record{Note: "call after 5pm"})
	e.Set("c2", "M1", Record{Note: "keep"})

	e.Drop("c1")
	_, ok := e.Get("c1", "M1")
	assert.False(t, ok)
	_, ok = e.Get("c2", "M1")
	assert.True(t, ok)
}

func TestOverride_JSONRoundTrip(t *testing.T) {
	for _, o := range []Override{OverrideUnset, OverrideInclude, OverrideExclude} {
		data, err := json.Marshal(o)
		require.NoError(t, err)

		var back Override
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, o, back)
	}

	// unrecognized text degrades to unset instead of erroring
	var o Override
	require.NoError(t, json.Unmarshal([]byte(`"maybe"`), &o))
	assert.Equal(t, OverrideUnset, o)
}

package campaign

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhealth/sdohscope/internal/member"
)

// memStore is an in-memory Store for manager tests.
type memStore struct {
	payload  []byte
	revision string
	saves    int
	loadErr  error
}

func (s *memStore) Load() ([]byte, string, error) {
	if s.loadErr != nil {
		return nil, "", s.loadErr
	}
	return s.payload, s.revision, nil
}

func (s *memStore) Save(payload []byte, revision string) error {
	s.payload = payload
	s.revision = revision
	s.saves++
	return nil
}

func TestNewManager_DefaultsWithoutStore(t *testing.T) {
	mgr, err := NewManager(nil)
	require.NoError(t, err)

	campaigns := mgr.Campaigns()
	require.Len(t, campaigns, 5)
	assert.Equal(t, "diabetes-med-adherence", campaigns[0].ID)
	assert.True(t, campaigns[0].AutoEnroll)

	sel := mgr.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, campaigns[0].ID, sel.ID)
	assert.Equal(t, "", mgr.Revision())

	for _, c := range campaigns {
		assert.True(t, mgr.Protected(c.ID), c.ID)
	}
}

func TestNewManager_CorruptStateFallsBackToDefaults(t *testing.T) {
	mgr, err := NewManager(&memStore{payload: []byte("{not json"), revision: "r1"})
	require.NoError(t, err)

	assert.Len(t, mgr.Campaigns(), 5)
	assert.Equal(t, "", mgr.Revision())
}

func TestNewManager_UnreadableStoreFallsBackToDefaults(t *testing.T) {
	mgr, err := NewManager(&memStore{loadErr: errors.New("disk gone")})
	require.NoError(t, err)
	assert.Len(t, mgr.Campaigns(), 5)
}

func TestNewManager_StoredStateMergesOverDefaults(t *testing.T) {
	ps := persistedState{
		Campaigns: []persistedCampaign{
			{
				ID:   "diabetes-med-adherence",
				Name: "Renamed Adherence Campaign",
				// persisted flag is overridden: predicate campaigns stay on
				AutoEnroll: false,
				Rules: []persistedRule{
					{Field: "no_longer_exists", Op: ">=", Value: "1"},
				},
			},
			{
				ID:         "summer-wellness",
				Name:       "Summer Wellness",
				AutoEnroll: true,
				Rules:      []persistedRule{{Field: "risk_full", Op: ">=", Value: "2.0"}},
			},
		},
		Enrollments:        Enrollments{"summer-wellness": {"M1": {Override: OverrideInclude}}},
		SelectedCampaignID: "summer-wellness",
	}
	payload, err := json.Marshal(ps)
	require.NoError(t, err)

	mgr, err := NewManager(&memStore{payload: payload, revision: "r7"})
	require.NoError(t, err)

	campaigns := mgr.Campaigns()
	require.Len(t, campaigns, 6)

	// the stored copy of a default replaces it in place
	assert.Equal(t, "Renamed Adherence Campaign", campaigns[0].Name)
	assert.True(t, campaigns[0].AutoEnroll)
	assert.Equal(t, "diabetes-med-adherence", campaigns[0].Targeting.Predicate)
	// the stale rule was dropped on hydrate
	assert.Empty(t, campaigns[0].Targeting.Rules)

	// new campaigns append after the defaults and are not protected
	assert.Equal(t, "summer-wellness", campaigns[5].ID)
	assert.False(t, mgr.Protected("summer-wellness"))
	require.Len(t, campaigns[5].Targeting.Rules, 1)
	// missing outreach methods normalize to the full set
	assert.Len(t, campaigns[5].OutreachMethods, 4)

	assert.Equal(t, "summer-wellness", mgr.Selected().ID)
	assert.Equal(t, "r7", mgr.Revision())

	rec, ok := mgr.Enrollment("summer-wellness", "M1")
	require.True(t, ok)
	assert.Equal(t, OverrideInclude, rec.Override)
}

func TestManager_CreateAndDelete(t *testing.T) {
	store := &memStore{}
	mgr, err := NewManager(store)
	require.NoError(t, err)

	c, err := mgr.Create("  Fall Flu Outreach  ")
	require.NoError(t, err)
	assert.Equal(t, "fall-flu-outreach", c.ID)
	assert.Equal(t, "Fall Flu Outreach", c.Name)
	assert.False(t, c.AutoEnroll)
	assert.Equal(t, []string{"Mail", "Phone", "SMS", "Email"}, c.OutreachMethods)
	assert.Equal(t, c.ID, mgr.Selected().ID)
	assert.Equal(t, 1, store.saves)
	assert.NotEmpty(t, mgr.Revision())

	_, err = mgr.Create("Fall Flu Outreach")
	assert.Error(t, err, "duplicate slug must be rejected")
	_, err = mgr.Create("   ")
	assert.Error(t, err)

	require.NoError(t, mgr.SetEnrollment(c.ID, "M1", Record{Override: OverrideInclude}))

	require.NoError(t, mgr.Delete(c.ID))
	assert.Nil(t, mgr.Get(c.ID))
	_, ok := mgr.Enrollment(c.ID, "M1")
	assert.False(t, ok)
	// selection falls back to the head of the list
	assert.Equal(t, "diabetes-med-adherence", mgr.Selected().ID)
}

func TestManager_DeleteProtected(t *testing.T) {
	mgr, err := NewManager(nil)
	require.NoError(t, err)

	for _, c := range mgr.Campaigns() {
		assert.Error(t, mgr.Delete(c.ID), c.ID)
	}
	assert.Error(t, mgr.Delete("unknown"))
}

func TestManager_SetRulesDrivesAutoEnroll(t *testing.T) {
	mgr, err := NewManager(nil)
	require.NoError(t, err)

	id := "cdc-diabetes-awareness"
	require.False(t, mgr.Get(id).AutoEnroll)

	require.NoError(t, mgr.SetRules(id, RuleSet{mustRule(t, "risk_full", ">=", "2.0")}))
	assert.True(t, mgr.Get(id).AutoEnroll)

	require.NoError(t, mgr.SetRules(id, nil))
	assert.False(t, mgr.Get(id).AutoEnroll)

	// predicate campaigns keep auto-enrolling even with no rules
	require.NoError(t, mgr.SetRules("diabetes-med-adherence", nil))
	assert.True(t, mgr.Get("diabetes-med-adherence").AutoEnroll)
}

func TestManager_PersistenceRoundTrip(t *testing.T) {
	store := &memStore{}
	mgr, err := NewManager(store)
	require.NoError(t, err)

	_, err = mgr.Create("Winter Check-ins")
	require.NoError(t, err)
	require.NoError(t, mgr.SetRules("winter-check-ins", RuleSet{mustRule(t, "sdoh_lift", ">", "0.2")}))
	require.NoError(t, mgr.SetEnrollment("winter-check-ins", "M9", Record{Override: OverrideExclude, Note: "opted out"}))

	// a fresh manager over the same store sees the same state
	again, err := NewManager(store)
	require.NoError(t, err)

	c := again.Get("winter-check-ins")
	require.NotNil(t, c)
	assert.True(t, c.AutoEnroll)
	require.Len(t, c.Targeting.Rules, 1)
	assert.Equal(t, "sdoh_lift", c.Targeting.Rules[0].Field.Key)

	rec, ok := again.Enrollment("winter-check-ins", "M9")
	require.True(t, ok)
	assert.Equal(t, OverrideExclude, rec.Override)
	assert.Equal(t, "opted out", rec.Note)

	assert.Equal(t, "winter-check-ins", again.Selected().ID)
	assert.Equal(t, store.revision, again.Revision())
}

func TestManager_ApplyEnrollmentReconcilesOverrides(t *testing.T) {
	mgr, err := NewManager(&memStore{})
	require.NoError(t, err)
	id := "diabetes-med-adherence"
	eligible := adherentMember()

	// enrolling an already-eligible member stores nothing; they stay Auto
	require.NoError(t, mgr.ApplyEnrollment(id, eligible, true))
	_, ok := mgr.Enrollment(id, eligible.ID)
	assert.False(t, ok)
	assert.Equal(t, SourceAuto, Source(mgr.Get(id), eligible, Record{}))

	// unenrolling them stores an exclude
	require.NoError(t, mgr.ApplyEnrollment(id, eligible, false))
	rec, ok := mgr.Enrollment(id, eligible.ID)
	require.True(t, ok)
	assert.Equal(t, OverrideExclude, rec.Override)

	// re-enrolling clears the exclude instead of storing an include
	require.NoError(t, mgr.ApplyEnrollment(id, eligible, true))
	_, ok = mgr.Enrollment(id, eligible.ID)
	assert.False(t, ok)

	// an ineligible member enrolls manually and unwinds the same way
	ineligible := &member.Member{ID: "M2"}
	require.NoError(t, mgr.ApplyEnrollment(id, ineligible, true))
	rec, ok = mgr.Enrollment(id, ineligible.ID)
	require.True(t, ok)
	assert.Equal(t, OverrideInclude, rec.Override)
	require.NoError(t, mgr.ApplyEnrollment(id, ineligible, false))
	_, ok = mgr.Enrollment(id, ineligible.ID)
	assert.False(t, ok)

	// method, status, and note survive the override toggles
	require.NoError(t, mgr.SetEnrollment(id, eligible.ID, Record{Note: "call after 5pm"}))
	require.NoError(t, mgr.ApplyEnrollment(id, eligible, false))
	rec, _ = mgr.Enrollment(id, eligible.ID)
	assert.Equal(t, OverrideExclude, rec.Override)
	assert.Equal(t, "call after 5pm", rec.Note)
	require.NoError(t, mgr.ApplyEnrollment(id, eligible, true))
	rec, ok = mgr.Enrollment(id, eligible.ID)
	require.True(t, ok)
	assert.Equal(t, OverrideUnset, rec.Override)
	assert.Equal(t, "call after 5pm", rec.Note)

	assert.Error(t, mgr.ApplyEnrollment("nope", eligible, true))
	assert.Error(t, mgr.ApplyEnrollment(id, nil, true))
}

func TestManager_SelectValidates(t *testing.T) {
	mgr, err := NewManager(nil)
	require.NoError(t, err)

	require.NoError(t, mgr.Select("world-diabetes-day"))
	assert.Equal(t, "world-diabetes-day", mgr.Selected().ID)

	assert.Error(t, mgr.Select("nope"))
}

func TestCampaignStats(t *testing.T) {
	mgr, err := NewManager(nil)
	require.NoError(t, err)
	c := mgr.Get("diabetes-med-adherence")

	members := []member.Member{
		*adherentMember(), // eligible, auto-enrolled
		{ID: "M2"},        // ineligible
		{ID: "M3"},        // ineligible but manually included
		{ID: "M4", ComplianceHbA1c: f64(0.5), RiskFull: f64(2.4), SDOHLift: f64(0.1)}, // eligible but excluded
	}
	require.NoError(t, mgr.SetEnrollment(c.ID, "M3", Record{Override: OverrideInclude}))
	require.NoError(t, mgr.SetEnrollment(c.ID, "M4", Record{Override: OverrideExclude}))

	s := mgr.CampaignStats(c, members)
	assert.Equal(t, 2, s.Eligible)
	assert.Equal(t, 2, s.Enrolled)
	assert.Equal(t, 1, s.Manual)
	assert.Equal(t, 1, s.Excluded)

	assert.Zero(t, mgr.CampaignStats(nil, members))
}

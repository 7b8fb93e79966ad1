package campaign

import (
	"encoding/json"
	"fmt"

	"github.com/lanternhealth/sdohscope/internal/member"
)

// Override is the manual enrollment decision for one (campaign, member)
// pair. Unset means no decision was recorded.
type Override int

const (
	OverrideUnset Override = iota
	OverrideInclude
	OverrideExclude
)

// ParseOverride maps persisted override text to the tri-state. Anything
// unrecognized is Unset.
func ParseOverride(s string) Override {
	switch s {
	case "include":
		return OverrideInclude
	case "exclude":
		return OverrideExclude
	}
	return OverrideUnset
}

func (o Override) String() string {
	switch o {
	case OverrideInclude:
		return "include"
	case OverrideExclude:
		return "exclude"
	}
	return ""
}

func (o Override) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Override) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("override: %w", err)
	}
	*o = ParseOverride(s)
	return nil
}

// Record is the persisted per-(campaign, member) enrollment state.
type Record struct {
	Override       Override `json:"override"`
	OutreachMethod string   `json:"outreachMethod"`
	Status         string   `json:"status"`
	Note           string   `json:"note"`
}

// IsZero reports whether the record carries no information. Zero records
// are pruned from the store on write.
func (r Record) IsZero() bool {
	return r.Override == OverrideUnset && r.OutreachMethod == "" && r.Status == "" && r.Note == ""
}

// Enrollments holds all override records, campaign id then member id.
type Enrollments map[string]map[string]Record

// Get returns the record for a pair; ok is false when none is stored.
func (e Enrollments) Get(campaignID, memberID string) (Record, bool) {
	bucket, ok := e[campaignID]
	if !ok {
		return Record{}, false
	}
	rec, ok := bucket[memberID]
	return rec, ok
}

// Set stores a record, pruning it when zero. Setting a zero record is how
// an override is cleared; the store never holds no-op entries.
func (e Enrollments) Set(campaignID, memberID string, rec Record) {
	if campaignID == "" || memberID == "" {
		return
	}
	if rec.IsZero() {
		if bucket, ok := e[campaignID]; ok {
			delete(bucket, memberID)
			if len(bucket) == 0 {
				delete(e, campaignID)
			}
		}
		return
	}
	bucket := e[campaignID]
	if bucket == nil {
		bucket = make(map[string]Record)
		e[campaignID] = bucket
	}
	bucket[memberID] = rec
}

// Drop removes every record for a campaign.
func (e Enrollments) Drop(campaignID string) {
	delete(e, campaignID)
}

// Enrollment source labels.
const (
	SourceManual   = "Manual"
	SourceExcluded = "Excluded"
	SourceAuto     = "Auto"
	SourceNone     = "Not enrolled"
)

// Enrolled resolves final enrollment: an include override always enrolls,
// an exclude override always blocks, otherwise rule eligibility decides.
func Enrolled(c *Campaign, m *member.Member, rec Record) bool {
	if c == nil || m == nil {
		return false
	}
	switch rec.Override {
	case OverrideInclude:
		return true
	case OverrideExclude:
		return false
	}
	return c.Eligible(m)
}

// Reconcile clears an override that matches the campaign's computed
// eligibility. Such an override is a no-op today and must not persist:
// it would pin the member's state against later rule edits and mislabel
// an auto-enrolled member as manual. Other record fields pass through.
func Reconcile(c *Campaign, m *member.Member, rec Record) Record {
	if c == nil || m == nil {
		return rec
	}
	eligible := c.Eligible(m)
	if (rec.Override == OverrideInclude && eligible) ||
		(rec.Override == OverrideExclude && !eligible) {
		rec.Override = OverrideUnset
	}
	return rec
}

// Source classifies how a member's enrollment state came about.
func Source(c *Campaign, m *member.Member, rec Record) string {
	switch rec.Override {
	case OverrideInclude:
		return SourceManual
	case OverrideExclude:
		return SourceExcluded
	}
	if c.Eligible(m) {
		return SourceAuto
	}
	return SourceNone
}

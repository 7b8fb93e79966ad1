package campaign

import (
	"strings"

	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/outreach"
)

// RosterRow is one member's line in a campaign roster: eligibility,
// enrollment, the stored override, and the derived outreach channel.
type RosterRow struct {
	MemberID   string   `json:"member"`
	MemberName string   `json:"member_name"`
	Zip        string   `json:"zip"`
	RiskFull   *float64 `json:"risk_full"`
	RiskClass  string   `json:"risk_class"`
	SDOHLift   *float64 `json:"sdoh_lift"`
	SDOHLevel  string   `json:"sdoh_lift_level"`

	Eligible bool   `json:"eligible"`
	Enrolled bool   `json:"enrolled"`
	Override string `json:"override"`
	Source   string `json:"source"`

	OutreachMethod string `json:"outreachMethod"`
	Channel        string `json:"channel"`

	// PreferredIntervention is the resolved plan title for the member;
	// filled through the describe callback so the roster stays decoupled
	// from the playbook.
	PreferredIntervention string `json:"preferred_intervention"`
}

// Roster builds the campaign roster over a member set. Only members who
// are eligible or enrolled appear. describe resolves a member's
// intervention title and may be nil.
func (mgr *Manager) Roster(c *Campaign, members []member.Member, describe func(*member.Member) string) []RosterRow {
	rows := make([]RosterRow, 0)
	if c == nil {
		return rows
	}
	for i := range members {
		m := &members[i]
		eligible := c.Eligible(m)
		rec, _ := mgr.enrollments.Get(c.ID, m.ID)
		enrolled := Enrolled(c, m, rec)
		if !eligible && !enrolled {
			continue
		}
		row := RosterRow{
			MemberID:       m.ID,
			MemberName:     m.Name,
			Zip:            m.Zip,
			RiskFull:       m.RiskFull,
			RiskClass:      riskClass(m.RiskBand),
			SDOHLift:       m.SDOHLift,
			SDOHLevel:      m.SDOHLevel,
			Eligible:       eligible,
			Enrolled:       enrolled,
			Override:       rec.Override.String(),
			Source:         Source(c, m, rec),
			OutreachMethod: rec.OutreachMethod,
			Channel:        outreach.DeriveChannel(m, rec.OutreachMethod),
		}
		if describe != nil {
			row.PreferredIntervention = describe(m)
		}
		rows = append(rows, row)
	}
	return rows
}

// riskClass compresses a risk band into the roster's coarse class label.
func riskClass(band string) string {
	key := strings.ToLower(band)
	switch {
	case strings.Contains(key, "high"):
		return "High"
	case strings.Contains(key, "moderate"):
		return "Medium"
	case strings.Contains(key, "lower"):
		return "Low"
	}
	return "Unknown"
}

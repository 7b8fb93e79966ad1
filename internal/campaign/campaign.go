// Package campaign holds outreach campaign definitions, the rule engine
// that computes base eligibility, enrollment override resolution, and the
// durable campaign state store.
package campaign

import (
	"regexp"
	"strings"

	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/outreach"
)

// Predicate registry for legacy campaigns that predate the rule designer.
// Keyed by campaign id.
var predicates = map[string]func(*member.Member) bool{
	"diabetes-med-adherence": diabetesAdherence,
}

// diabetesAdherence: low HbA1c adherence, elevated full-model risk, and a
// positive SDOH lift. Null on any operand fails the predicate.
func diabetesAdherence(m *member.Member) bool {
	return m != nil &&
		m.ComplianceHbA1c != nil && *m.ComplianceHbA1c < 0.8 &&
		m.RiskFull != nil && *m.RiskFull >= 2.0 &&
		m.SDOHLift != nil && *m.SDOHLift > 0
}

// Targeting selects members for auto-enrollment: either an explicit rule
// set or a named legacy predicate. A non-empty rule set always wins; a
// campaign with neither targets nobody.
type Targeting struct {
	Rules     RuleSet
	Predicate string
}

// Match evaluates the targeting definition against a member.
func (t Targeting) Match(m *member.Member) bool {
	if len(t.Rules) > 0 {
		return t.Rules.Eval(m)
	}
	if fn := predicates[t.Predicate]; fn != nil {
		return fn(m)
	}
	return false
}

// Describe renders the targeting logic as display text.
func (t Targeting) Describe() string {
	if len(t.Rules) > 0 {
		return t.Rules.Describe()
	}
	if t.Predicate == "diabetes-med-adherence" {
		return "HbA1c adherence < 0.8 AND risk with SDOH >= 2.0 AND SDOH lift > 0"
	}
	return ""
}

// Campaign is one outreach targeting definition.
type Campaign struct {
	ID          string
	Name        string
	Description string
	AutoEnroll  bool

	OutreachMethods []string

	Targeting Targeting
}

// Eligible computes base eligibility: the campaign must auto-enroll and
// the member must match its targeting.
func (c *Campaign) Eligible(m *member.Member) bool {
	return c != nil && c.AutoEnroll && c.Targeting.Match(m)
}

// Defaults returns the built-in campaign set. The first entry is the
// legacy adherence campaign with its predicate attached.
func Defaults() []Campaign {
	return []Campaign{
		{
			ID:              "diabetes-med-adherence",
			Name:            "Medication Adherence Counselling (Diabetes)",
			Description:     "Auto-enroll members with low HbA1c adherence, elevated risk, and positive SDOH lift.",
			AutoEnroll:      true,
			OutreachMethods: []string{outreach.Phone, outreach.SMS, outreach.Email},
			Targeting:       Targeting{Predicate: "diabetes-med-adherence"},
		},
		{
			ID:              "cdc-diabetes-awareness",
			Name:            "CDC Diabetes Awareness Communications",
			Description:     "Regional (US) CDC campaign focused on diabetes management, healthy behaviors, and adherence outreach.",
			OutreachMethods: []string{outreach.Phone, outreach.SMS, outreach.Email},
		},
		{
			ID:              "world-diabetes-day",
			Name:            "World Diabetes Day",
			Description:     "Global & International Campaign: Annual awareness on Nov 14 led by IDF/WHO for prevention and care.",
			OutreachMethods: []string{outreach.Phone, outreach.SMS, outreach.Email},
		},
		{
			ID:              "world-adherence-day",
			Name:            "World Adherence Day",
			Description:     "Global & International Campaign (Mar 27) highlighting adherence to medications, lifestyle, and care plans.",
			OutreachMethods: []string{outreach.Phone, outreach.SMS, outreach.Email},
		},
		{
			ID:              "bloodsugar-selfie",
			Name:            "BloodSugarSelfie",
			Description:     "Global social campaign encouraging blood glucose monitoring engagement and awareness sharing.",
			OutreachMethods: []string{outreach.Phone, outreach.SMS, outreach.Email},
		},
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a campaign id from a display name.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

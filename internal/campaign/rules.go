package campaign

import (
	"fmt"
	"strings"

	"github.com/lanternhealth/sdohscope/internal/member"
)

// Op is a rule comparator. The set is closed; parse inputs through
// ParseOp.
type Op string

const (
	OpGE Op = ">="
	OpLE Op = "<="
	OpGT Op = ">"
	OpLT Op = "<"
	OpEQ Op = "="
)

// ParseOp validates a comparator string.
func ParseOp(s string) (Op, error) {
	switch Op(strings.TrimSpace(s)) {
	case OpGE:
		return OpGE, nil
	case OpLE:
		return OpLE, nil
	case OpGT:
		return OpGT, nil
	case OpLT:
		return OpLT, nil
	case OpEQ:
		return OpEQ, nil
	}
	return "", fmt.Errorf("unknown rule operator %q", s)
}

// Field is one entry of the closed rule-field catalog. Every field is
// numeric; Value reads it from a member with the tolerant parse, nil when
// absent or unparseable.
type Field struct {
	Key      string
	Label    string
	Category string

	value func(*member.Member) *float64
}

// Value reads the field from a member.
func (f Field) Value(m *member.Member) *float64 {
	if f.value == nil {
		return nil
	}
	return f.value(m)
}

func extra(key string) func(*member.Member) *float64 {
	return func(m *member.Member) *float64 {
		return member.ParseNumeric(m.Extra[key])
	}
}

// catalog fixes the rule-eligible fields. Engagement fields live in the
// unmodeled column set and go through the tolerant parse on read.
var catalog = []Field{
	{Key: "compliance_hba1c", Label: "HbA1c adherence", Category: "Clinical", value: func(m *member.Member) *float64 { return m.ComplianceHbA1c }},
	{Key: "a1c_value", Label: "A1c value", Category: "Clinical", value: func(m *member.Member) *float64 { return m.A1cValue }},
	{Key: "ldl_value", Label: "LDL value", Category: "Clinical", value: func(m *member.Member) *float64 { return m.LDLValue }},
	{Key: "bmi", Label: "BMI", Category: "Clinical", value: func(m *member.Member) *float64 { return m.BMI }},
	{Key: "bp_systolic", Label: "BP systolic", Category: "Clinical", value: func(m *member.Member) *float64 { return m.BPSystolic }},
	{Key: "bp_diastolic", Label: "BP diastolic", Category: "Clinical", value: func(m *member.Member) *float64 { return m.BPDiastolic }},

	{Key: "risk_full", Label: "Risk with SDOH", Category: "Risk", value: func(m *member.Member) *float64 { return m.RiskFull }},
	{Key: "risk_no_sdoh", Label: "Risk no SDOH", Category: "Risk", value: func(m *member.Member) *float64 { return m.RiskNoSDOH }},
	{Key: "sdoh_lift", Label: "SDOH lift", Category: "Risk", value: func(m *member.Member) *float64 { return m.SDOHLift }},

	{Key: "digital_disadvantage", Label: "Digital disadvantage", Category: "SDOH", value: func(m *member.Member) *float64 { return m.DigitalDisadvantage }},
	{Key: "commute_hardship_index", Label: "Commute hardship index", Category: "SDOH", value: func(m *member.Member) *float64 { return m.CommuteHardshipIndex }},
	{Key: "health_access_score", Label: "Health access score", Category: "SDOH", value: func(m *member.Member) *float64 { return m.HealthAccessScore }},
	{Key: "income_weighted_index", Label: "Income weighted index", Category: "SDOH", value: func(m *member.Member) *float64 { return m.IncomeWeightedIndex }},
	{Key: "education_score", Label: "Education score", Category: "SDOH", value: func(m *member.Member) *float64 { return m.EducationScore }},
	{Key: "labor_market_hardship", Label: "Labor market hardship", Category: "SDOH", value: func(m *member.Member) *float64 { return m.LaborMarketHardship }},
	{Key: "housing_instability", Label: "Housing instability", Category: "SDOH", value: func(m *member.Member) *float64 { return m.HousingInstability }},
	{Key: "food_insecurity_index", Label: "Food insecurity index", Category: "SDOH", value: func(m *member.Member) *float64 { return m.FoodInsecurityIndex }},
	{Key: "social_isolation_index", Label: "Social isolation index", Category: "SDOH", value: func(m *member.Member) *float64 { return m.SocialIsolationIndex }},
	{Key: "environmental_burden", Label: "Environmental burden", Category: "SDOH", value: func(m *member.Member) *float64 { return m.EnvironmentalBurden }},
	{Key: "rurality_index", Label: "Rurality index", Category: "SDOH", value: func(m *member.Member) *float64 { return m.RuralityIndex }},

	{Key: "pcp_visits", Label: "PCP visits", Category: "Utilization", value: func(m *member.Member) *float64 { return m.PCPVisits }},
	{Key: "no_ip_visits_2023", Label: "No IP visits (2023)", Category: "Utilization", value: func(m *member.Member) *float64 { return m.NoIPVisits2023 }},

	{Key: "OutreachAttemptCount", Label: "Outreach attempts", Category: "Engagement", value: extra("OutreachAttemptCount")},
	{Key: "PDC_Before", Label: "PDC before", Category: "Engagement", value: extra("PDC_Before")},
	{Key: "PDC_After", Label: "PDC after", Category: "Engagement", value: extra("PDC_After")},
}

var catalogByKey = func() map[string]Field {
	m := make(map[string]Field, len(catalog))
	for _, f := range catalog {
		m[f.Key] = f
	}
	return m
}()

// ParseField resolves a field key against the catalog. Unknown keys are
// construction-time errors, never silent eval misses.
func ParseField(key string) (Field, error) {
	f, ok := catalogByKey[key]
	if !ok {
		return Field{}, fmt.Errorf("unknown rule field %q", key)
	}
	return f, nil
}

// Catalog returns the rule-eligible fields in category order.
func Catalog() []Field {
	out := make([]Field, len(catalog))
	copy(out, catalog)
	return out
}

// FieldLabel returns the display label for a key, or the key itself when
// it is not in the catalog (stale persisted rules).
func FieldLabel(key string) string {
	if f, ok := catalogByKey[key]; ok {
		return f.Label
	}
	return key
}

// Rule compares one catalog field against a threshold. The threshold
// stays textual; it is parsed tolerantly at evaluation time alongside the
// member value.
type Rule struct {
	Field Field
	Op    Op
	Value string
}

// NewRule validates field and operator and builds a rule.
func NewRule(fieldKey, op, value string) (Rule, error) {
	f, err := ParseField(fieldKey)
	if err != nil {
		return Rule{}, err
	}
	o, err := ParseOp(op)
	if err != nil {
		return Rule{}, err
	}
	return Rule{Field: f, Op: o, Value: value}, nil
}

// RuleSet is an ordered conjunction of rules.
type RuleSet []Rule

// Eval evaluates the conjunction against a member. Rules with a blank
// threshold are skipped; an operand that fails to parse fails the whole
// set (fail-closed). The first failing comparator short-circuits.
func (rs RuleSet) Eval(m *member.Member) bool {
	if m == nil || len(rs) == 0 {
		return false
	}
	for _, rule := range rs {
		if strings.TrimSpace(rule.Value) == "" {
			continue
		}
		left := rule.Field.Value(m)
		right := member.ParseNumeric(rule.Value)
		if left == nil || right == nil {
			return false
		}
		if !compare(*left, rule.Op, *right) {
			return false
		}
	}
	return true
}

func compare(left float64, op Op, right float64) bool {
	switch op {
	case OpGE:
		return left >= right
	case OpLE:
		return left <= right
	case OpGT:
		return left > right
	case OpLT:
		return left < right
	case OpEQ:
		return left == right
	}
	return false
}

// Describe renders the rule set as display text, "AND"-joined.
func (rs RuleSet) Describe() string {
	if len(rs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(rs))
	for _, rule := range rs {
		parts = append(parts, fmt.Sprintf("%s %s %s", rule.Field.Label, rule.Op, rule.Value))
	}
	return strings.Join(parts, " AND ")
}

package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhealth/sdohscope/internal/member"
)

func f64(v float64) *float64 { return &v }

func mustRule(t *testing.T, field, op, value string) Rule {
	t.Helper()
	r, err := NewRule(field, op, value)
	require.NoError(t, err)
	return r
}

func TestNewRule_Validation(t *testing.T) {
	_, err := NewRule("risk_full", ">=", "2.0")
	assert.NoError(t, err)

	_, err = NewRule("no_such_field", ">=", "2.0")
	assert.Error(t, err)

	_, err = NewRule("risk_full", "!=", "2.0")
	assert.Error(t, err)
}

func TestParseOp_TrimsWhitespace(t *testing.T) {
	op, err := ParseOp(" >= ")
	require.NoError(t, err)
	assert.Equal(t, OpGE, op)
}

func TestRuleSet_Eval(t *testing.T) {
	m := &member.Member{
		RiskFull: f64(2.0),
		SDOHLift: f64(0.3),
		Extra:    map[string]string{"OutreachAttemptCount": "3"},
	}

	tests := []struct {
		name string
		rs   RuleSet
		want bool
	}{
		{
			"single rule passes on textual threshold",
			RuleSet{mustRule(t, "risk_full", ">=", "2.0")},
			true,
		},
		{
			"conjunction requires every rule",
			RuleSet{
				mustRule(t, "risk_full", ">=", "2.0"),
				mustRule(t, "sdoh_lift", ">", "0.5"),
			},
			false,
		},
		{
			"blank threshold is skipped, not failed",
			RuleSet{
				mustRule(t, "risk_full", ">=", "2.0"),
				mustRule(t, "sdoh_lift", ">", "  "),
			},
			true,
		},
		{
			"missing member value fails closed",
			RuleSet{mustRule(t, "bmi", "<", "30")},
			false,
		},
		{
			"unparseable threshold fails closed",
			RuleSet{mustRule(t, "risk_full", ">=", "two")},
			false,
		},
		{
			"engagement fields read the unmodeled columns",
			RuleSet{mustRule(t, "OutreachAttemptCount", "<=", "3")},
			true,
		},
		{
			"equality compares parsed numbers",
			RuleSet{mustRule(t, "risk_full", "=", "2")},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rs.Eval(m))
		})
	}
}

func TestRuleSet_EvalEdges(t *testing.T) {
	rs := RuleSet{mustRule(t, "risk_full", ">=", "2.0")}
	assert.False(t, rs.Eval(nil))

	var empty RuleSet
	assert.False(t, empty.Eval(&member.Member{RiskFull: f64(9)}))

	// a set of only blank rules matches everyone it sees
	blanks := RuleSet{mustRule(t, "risk_full", ">=", "")}
	assert.True(t, blanks.Eval(&member.Member{}))
}

func TestRuleSet_Describe(t *testing.T) {
	rs := RuleSet{
		mustRule(t, "risk_full", ">=", "2.0"),
		mustRule(t, "sdoh_lift", ">", "0"),
	}
	assert.Equal(t, "Risk with SDOH >= 2.0 AND SDOH lift > 0", rs.Describe())

	var empty RuleSet
	assert.Equal(t, "", empty.Describe())
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "Risk with SDOH", FieldLabel("risk_full"))
	// stale persisted keys fall back to the key itself
	assert.Equal(t, "old_field", FieldLabel("old_field"))
}

func TestCatalog_KeysAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range Catalog() {
		assert.False(t, seen[f.Key], f.Key)
		seen[f.Key] = true
		assert.NotEmpty(t, f.Label)
		assert.NotEmpty(t, f.Category)
	}
}

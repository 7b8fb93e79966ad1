package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/policy"
	"github.com/lanternhealth/sdohscope/internal/refdata"
)

func testConfig() *refdata.Config {
	return &refdata.Config{
		ContractFallbacks: []string{"H1001", "H2002", "H3003"},
	}
}

func TestBuild_ContractBackfillRoundRobin(t *testing.T) {
	rows := []member.Raw{
		{"member": "M1"},
		{"member": "M2", "contract": "H9999"},
		{"member": "M3"},
		{"member": "M4"},
		{"member": "M5"},
	}

	ds := Build(rows, testConfig(), policy.Default())
	require.Equal(t, 5, ds.Len())

	// the pool index advances only when a contract is assigned
	assert.Equal(t, "H1001", ds.Members[0].Contract)
	assert.Equal(t, "H9999", ds.Members[1].Contract)
	assert.Equal(t, "H2002", ds.Members[2].Contract)
	assert.Equal(t, "H3003", ds.Members[3].Contract)
	assert.Equal(t, "H1001", ds.Members[4].Contract)
}

func TestBuild_IndexesAreStable(t *testing.T) {
	rows := []member.Raw{{"member": "M1"}, {"member": "M2"}}
	ds := Build(rows, testConfig(), policy.Default())

	for i, m := range ds.Members {
		assert.Equal(t, i, m.Idx)
	}
}

func TestMemberLookup(t *testing.T) {
	ds := Build([]member.Raw{{"member": "M1"}, {"member": "M2"}}, testConfig(), policy.Default())

	m := ds.MemberByID("M2")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Idx)
	assert.Nil(t, ds.MemberByID("M9"))
	assert.Nil(t, ds.MemberByID(""))

	assert.NotNil(t, ds.MemberByIdx(0))
	assert.Nil(t, ds.MemberByIdx(-1))
	assert.Nil(t, ds.MemberByIdx(2))
}

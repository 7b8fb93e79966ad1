package aggregate

import (
	"sort"

	"github.com/lanternhealth/sdohscope/internal/member"
)

// ContractRow is one per-contract summary over the active cohort. Same
// shape as a zip row minus zone classification.
type ContractRow struct {
	Contract string   `json:"contract"`
	Members  int      `json:"members"`
	AvgRisk  *float64 `json:"avg_risk"`
	AvgLift  *float64 `json:"avg_lift"`
	PctHigh  float64  `json:"pct_high"`
}

// ByContract groups a cohort by contract and sorts descending by mean
// lift, with the contract label as tie-break.
func ByContract(cohort []member.Member) []ContractRow {
	type acc struct {
		members   int
		riskSum   float64
		riskCount int
		liftSum   float64
		liftCount int
		highCount int
	}
	accs := make(map[string]*acc)
	for i := range cohort {
		m := &cohort[i]
		key := m.Contract
		if key == "" {
			key = Blank
		}
		a := accs[key]
		if a == nil {
			a = &acc{}
			accs[key] = a
		}
		a.members++
		if v := m.RiskFull; v != nil {
			a.riskSum += *v
			a.riskCount++
		}
		if v := m.SDOHLift; v != nil {
			a.liftSum += *v
			a.liftCount++
		}
		if member.HighBurden(m.SDOHLevel) {
			a.highCount++
		}
	}

	rows := make([]ContractRow, 0, len(accs))
	for key, a := range accs {
		rows = append(rows, ContractRow{
			Contract: key,
			Members:  a.members,
			AvgRisk:  meanOf(a.riskSum, a.riskCount),
			AvgLift:  meanOf(a.liftSum, a.liftCount),
			PctHigh:  share(a.highCount, a.members),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		al, bl := orZero(rows[i].AvgLift), orZero(rows[j].AvgLift)
		if al != bl {
			return al > bl
		}
		return rows[i].Contract < rows[j].Contract
	})
	return rows
}

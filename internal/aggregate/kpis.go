package aggregate

import (
	"math"
	"sort"

	"github.com/lanternhealth/sdohscope/internal/member"
)

// KPIs are the headline cohort metrics. Mean fields are nil when no
// member carries the underlying value.
type KPIs struct {
	Members int `json:"members"`

	AvgRiskFull   *float64 `json:"avg_risk_full"`
	AvgRiskNoSDOH *float64 `json:"avg_risk_no_sdoh"`
	AvgLift       *float64 `json:"avg_lift"`

	PctHighBurden float64 `json:"pct_high_burden"`
	PctProtective float64 `json:"pct_protective"`

	// TopDriver is the most frequent primary SDOH driver, "" for an empty
	// cohort or when no member surfaces a driver.
	TopDriver      string `json:"top_driver"`
	TopDriverCount int    `json:"top_driver_count"`
}

// CohortKPIs computes the headline metrics for a cohort in one pass.
func CohortKPIs(cohort []member.Member) KPIs {
	k := KPIs{Members: len(cohort)}
	if len(cohort) == 0 {
		return k
	}

	var fullSum, noSdohSum, liftSum float64
	var fullCount, noSdohCount, liftCount int
	var highCount, protectiveCount int
	driverCounts := make(map[string]int)

	for i := range cohort {
		m := &cohort[i]
		if v := m.RiskFull; v != nil {
			fullSum += *v
			fullCount++
		}
		if v := m.RiskNoSDOH; v != nil {
			noSdohSum += *v
			noSdohCount++
		}
		if v := m.SDOHLift; v != nil {
			liftSum += *v
			liftCount++
		}
		if member.HighBurden(m.SDOHLevel) {
			highCount++
		}
		if member.BadgeClass(m.SDOHLevel) == "protective" {
			protectiveCount++
		}
		if d := m.PrimaryDriver(); d != "" {
			driverCounts[d]++
		}
	}

	k.AvgRiskFull = meanOf(fullSum, fullCount)
	k.AvgRiskNoSDOH = meanOf(noSdohSum, noSdohCount)
	k.AvgLift = meanOf(liftSum, liftCount)
	k.PctHighBurden = share(highCount, len(cohort))
	k.PctProtective = share(protectiveCount, len(cohort))
	k.TopDriver, k.TopDriverCount = topCount(driverCounts)
	return k
}

// DriverCount is one entry in the ranked primary-driver tally.
type DriverCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopDrivers tallies primary SDOH drivers across a cohort, most frequent
// first, names ascending on equal counts.
func TopDrivers(cohort []member.Member, limit int) []DriverCount {
	counts := make(map[string]int)
	for i := range cohort {
		if d := cohort[i].PrimaryDriver(); d != "" {
			counts[d]++
		}
	}
	out := make([]DriverCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, DriverCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DriverImpact is one entry in the ranked driver impact rollup.
type DriverImpact struct {
	Name    string  `json:"name"`
	Members int     `json:"members"`
	Impact  float64 `json:"impact"`
}

// DriverImpacts sums absolute contribution values across every ranked
// SDOH driver slot in the cohort, not just the primary one. Descending
// by total impact, names ascending on ties. Drivers that appear only
// without values still rank, by member count alone.
func DriverImpacts(cohort []member.Member, limit int) []DriverImpact {
	type acc struct {
		members int
		impact  float64
	}
	accs := make(map[string]*acc)
	for i := range cohort {
		for _, d := range cohort[i].Drivers(member.DriverSDOH) {
			a := accs[d.Name]
			if a == nil {
				a = &acc{}
				accs[d.Name] = a
			}
			a.members++
			if d.Value != nil {
				a.impact += math.Abs(*d.Value)
			}
		}
	}
	out := make([]DriverImpact, 0, len(accs))
	for name, a := range accs {
		out = append(out, DriverImpact{Name: name, Members: a.members, Impact: a.impact})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Impact != out[j].Impact {
			return out[i].Impact > out[j].Impact
		}
		if out[i].Members != out[j].Members {
			return out[i].Members > out[j].Members
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// topCount picks the highest-count key with the name as tie-break.
func topCount(counts map[string]int) (string, int) {
	best := ""
	bestCount := 0
	for name, count := range counts {
		if count > bestCount || (count == bestCount && count > 0 && name < best) {
			best, bestCount = name, count
		}
	}
	return best, bestCount
}

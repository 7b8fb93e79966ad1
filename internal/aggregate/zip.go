package aggregate

import (
	"sort"

	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/policy"
)

// ZipRow is one per-zip summary over the active cohort. Mean fields are
// nil when no member in the group carried the underlying value.
type ZipRow struct {
	Zip    string `json:"zip"`
	County string `json:"county"`
	State  string `json:"state"`

	Members int      `json:"members"`
	AvgRisk *float64 `json:"avg_risk_full"`
	AvgLift *float64 `json:"avg_lift"`
	PctHigh float64  `json:"pct_high"`

	// RiskZone comes from the session baseline, not the filtered group,
	// except when the baseline has no entry for the zip.
	RiskZone string `json:"risk_zone"`
	ZoneRank int    `json:"zone_rank"`

	HighShare     float64 `json:"high_share"`
	ModerateShare float64 `json:"moderate_share"`
	LowerShare    float64 `json:"lower_share"`
}

// ZipSummary is the one-pass rollup over the zip rows.
type ZipSummary struct {
	ZipCount     int      `json:"zip_count"`
	TotalMembers int      `json:"total_members"`
	AvgLift      *float64 `json:"avg_lift"`
	AvgRisk      *float64 `json:"avg_risk"`

	HighLiftZipCount int `json:"high_lift_zip_count"`

	ZoneZipCounts    map[string]int    `json:"zone_zip_counts"`
	ZoneMemberCounts map[string]int    `json:"zone_member_counts"`
	ZoneLeaders      map[string]ZipRow `json:"zone_leaders"`

	TopLiftZip    *ZipRow `json:"top_lift_zip"`
	BottomLiftZip *ZipRow `json:"bottom_lift_zip"`
}

type zipAcc struct {
	zip    string
	county string
	state  string

	members    int
	riskSum    float64
	riskCount  int
	liftSum    float64
	liftCount  int
	highCount  int
	bandCounts map[string]int
}

// ByZip groups a cohort by normalized zip and computes per-group metrics
// plus the summary rollup. Zone classification always prefers the
// baseline; a zip absent from the baseline falls back to the plurality
// risk band within the filtered group. Rows sort by zone rank, then mean
// lift, then member count, all descending, with the zip label as the
// final ascending tie-break so output order is fully deterministic.
func ByZip(cohort []member.Member, base *Baseline, pol policy.Policy) ([]ZipRow, ZipSummary) {
	accs := make(map[string]*zipAcc)
	order := make([]string, 0)
	for i := range cohort {
		m := &cohort[i]
		key := m.Zip
		if key == "" {
			key = Blank
		}
		a := accs[key]
		if a == nil {
			a = &zipAcc{
				zip:        key,
				county:     m.County,
				state:      m.State,
				bandCounts: make(map[string]int),
			}
			accs[key] = a
			order = append(order, key)
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
		band := m.RiskBand
		if band == "" {
			band = member.BandUnknown
		}
		a.bandCounts[band]++
	}

	rows := make([]ZipRow, 0, len(accs))
	for _, key := range order {
		a := accs[key]
		zone := base.Zone(a.zip)
		if zone == member.BandUnknown {
			if fallback := pluralityBand(a.bandCounts); fallback != "" {
				zone = fallback
			}
		}
		rows = append(rows, ZipRow{
			Zip:           a.zip,
			County:        a.county,
			State:         a.state,
			Members:       a.members,
			AvgRisk:       meanOf(a.riskSum, a.riskCount),
			AvgLift:       meanOf(a.liftSum, a.liftCount),
			PctHigh:       share(a.highCount, a.members),
			RiskZone:      zone,
			ZoneRank:      member.BandRank(zone),
			HighShare:     share(a.bandCounts[member.BandHigh], a.members),
			ModerateShare: share(a.bandCounts[member.BandModerate], a.members),
			LowerShare:    share(a.bandCounts[member.BandLower], a.members),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ZoneRank != b.ZoneRank {
			return a.ZoneRank > b.ZoneRank
		}
		al, bl := orZero(a.AvgLift), orZero(b.AvgLift)
		if al != bl {
			return al > bl
		}
		if a.Members != b.Members {
			return a.Members > b.Members
		}
		return a.Zip < b.Zip
	})

	return rows, summarize(rows, pol)
}

func summarize(rows []ZipRow, pol policy.Policy) ZipSummary {
	s := ZipSummary{
		ZipCount:         len(rows),
		ZoneZipCounts:    make(map[string]int),
		ZoneMemberCounts: make(map[string]int),
		ZoneLeaders:      make(map[string]ZipRow),
	}

	var liftSum, riskSum float64
	var liftDenom, riskDenom int
	for i := range rows {
		z := rows[i]
		s.TotalMembers += z.Members
		if z.AvgLift != nil {
			liftSum += *z.AvgLift
			liftDenom++
		}
		if z.AvgRisk != nil {
			riskSum += *z.AvgRisk
			riskDenom++
		}
		if orZero(z.AvgLift) > pol.HighLiftZip {
			s.HighLiftZipCount++
		}

		s.ZoneZipCounts[z.RiskZone]++
		s.ZoneMemberCounts[z.RiskZone] += z.Members

		leader, ok := s.ZoneLeaders[z.RiskZone]
		if !ok || liftGreater(z.AvgLift, leader.AvgLift) {
			s.ZoneLeaders[z.RiskZone] = z
		}
		if s.TopLiftZip == nil || liftGreater(z.AvgLift, s.TopLiftZip.AvgLift) {
			top := z
			s.TopLiftZip = &top
		}
		if s.BottomLiftZip == nil || liftLess(z.AvgLift, s.BottomLiftZip.AvgLift) {
			bottom := z
			s.BottomLiftZip = &bottom
		}
	}
	s.AvgLift = meanOf(liftSum, liftDenom)
	s.AvgRisk = meanOf(riskSum, riskDenom)
	return s
}

// pluralityBand picks the most frequent band. Ties break by count, then
// band rank, then label, so repeated runs agree.
func pluralityBand(counts map[string]int) string {
	best := ""
	bestCount := 0
	for band, count := range counts {
		switch {
		case count > bestCount:
			best, bestCount = band, count
		case count == bestCount && count > 0:
			if r, br := member.BandRank(band), member.BandRank(best); r > br || (r == br && band < best) {
				best = band
			}
		}
	}
	return best
}

func meanOf(sum float64, count int) *float64 {
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

func share(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// liftGreater orders nullable lifts with nil below every number.
func liftGreater(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a > *b
}

func liftLess(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}

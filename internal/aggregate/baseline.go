// Package aggregate reduces a cohort into per-ZIP and per-contract summary
// rows, cohort KPIs, the burden distribution histogram, and the ZIP risk
// baseline. Every aggregation is a pure pass over its input; the baseline
// is the only session-scoped cache and is rebuilt solely on full reload.
package aggregate

import (
	"log/slog"
	"math"
	"sort"

	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/policy"
)

// Blank is the grouping key for members missing a zip or contract.
const Blank = "(blank)"

// Baseline maps each zip to a stable risk zone computed once over the full
// unfiltered dataset. Filters never change a zip's zone; the cache is
// rebuilt only when the dataset itself is replaced.
type Baseline struct {
	zones map[string]string
	means map[string]*float64

	// Tertiled records that the fixed-threshold banding collapsed to a
	// single zone and the zones were reassigned by tertile split instead.
	Tertiled bool
}

// NewBaseline computes the zip risk baseline from the full dataset. Mean
// risk per zip uses only members with a non-null risk_full; a zip whose
// members all lack risk stays in the unknown zone.
func NewBaseline(members []member.Member, pol policy.Policy) *Baseline {
	type acc struct {
		sum   float64
		count int
	}
	accs := make(map[string]*acc)
	for i := range members {
		key := members[i].Zip
		if key == "" {
			key = Blank
		}
		a := accs[key]
		if a == nil {
			a = &acc{}
			accs[key] = a
		}
		if v := members[i].RiskFull; v != nil {
			a.sum += *v
			a.count++
		}
	}

	b := &Baseline{
		zones: make(map[string]string, len(accs)),
		means: make(map[string]*float64, len(accs)),
	}
	for key, a := range accs {
		if a.count == 0 {
			b.means[key] = nil
			b.zones[key] = member.BandUnknown
			continue
		}
		mean := a.sum / float64(a.count)
		b.means[key] = &mean
		b.zones[key] = member.RiskBand(&mean, pol)
	}

	if !b.spansBands() {
		b.reassignByTertiles(pol)
	}
	return b
}

// Zone returns the baseline zone for a zip, or the unknown band when the
// zip has no baseline entry.
func (b *Baseline) Zone(zip string) string {
	if zip == "" {
		zip = Blank
	}
	if zone, ok := b.zones[zip]; ok {
		return zone
	}
	return member.BandUnknown
}

// Mean returns the baseline mean risk for a zip, nil when unknown.
func (b *Baseline) Mean(zip string) *float64 {
	if zip == "" {
		zip = Blank
	}
	return b.means[zip]
}

// spansBands reports whether the fixed thresholds placed at least one zip
// in the highest band and one in the lowest.
func (b *Baseline) spansBands() bool {
	var hasHigh, hasLow bool
	for _, zone := range b.zones {
		switch zone {
		case member.BandHigh:
			hasHigh = true
		case member.BandLower:
			hasLow = true
		}
		if hasHigh && hasLow {
			return true
		}
	}
	return false
}

// reassignByTertiles rebands every zip by its position in the sorted mean
// distribution. Used only when fixed thresholds give no visual separation.
func (b *Baseline) reassignByTertiles(pol policy.Policy) {
	means := make([]float64, 0, len(b.means))
	for _, m := range b.means {
		if m != nil {
			means = append(means, *m)
		}
	}
	if len(means) == 0 {
		return
	}
	sort.Float64s(means)

	q1 := means[int(math.Floor(float64(len(means))*pol.TertileLow))]
	q2 := means[int(math.Floor(float64(len(means))*pol.TertileHigh))]

	for key, m := range b.means {
		switch {
		case m == nil:
			b.zones[key] = member.BandUnknown
		case *m >= q2:
			b.zones[key] = member.BandHigh
		case *m >= q1:
			b.zones[key] = member.BandModerate
		default:
			b.zones[key] = member.BandLower
		}
	}
	b.Tertiled = true
	slog.Info("zip baseline rebanded by tertiles",
		"zips", len(b.zones),
		"low_cut", q1,
		"high_cut", q2,
	)
}

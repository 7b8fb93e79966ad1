package aggregate

import (
	"github.com/lanternhealth/sdohscope/internal/member"
)

// DistributionBucket is one bar of the burden distribution histogram.
// Class is the badge class used by the second-stage filter; Share is the
// bucket's fraction of the universe, 0 for an empty universe.
type DistributionBucket struct {
	Class string  `json:"class"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// distributionOrder fixes the bar order from protective through extreme.
var distributionOrder = []struct {
	class string
	label string
}{
	{"protective", "Protective"},
	{"mild", "Mild"},
	{"significant", "Significant"},
	{"extreme", "Extreme"},
}

// Distribution buckets a universe by badge class. The universe must be
// the primary-filtered cohort, before any bucket restriction, so shares
// stay consistent while a bucket is selected. Members whose level maps
// to no badge class are counted in the universe size but in no bucket.
func Distribution(universe []member.Member) []DistributionBucket {
	counts := make(map[string]int, len(distributionOrder))
	for i := range universe {
		if cl := member.BadgeClass(universe[i].SDOHLevel); cl != "" {
			counts[cl]++
		}
	}

	out := make([]DistributionBucket, 0, len(distributionOrder))
	for _, cfg := range distributionOrder {
		out = append(out, DistributionBucket{
			Class: cfg.class,
			Label: cfg.label,
			Count: counts[cfg.class],
			Share: share(counts[cfg.class], len(universe)),
		})
	}
	return out
}

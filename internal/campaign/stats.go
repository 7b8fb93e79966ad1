package campaign

import (
	"github.com/lanternhealth/sdohscope/internal/member"
)

// FieldStats is the observed value range of one catalog field across the
// dataset. Min and Max are nil when no member carries the field.
type FieldStats struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// FieldStatsSet maps catalog field keys to their ranges. Computed once
// per dataset; the session caches it.
type FieldStatsSet map[string]FieldStats

// ComputeFieldStats scans the full dataset for the min and max of every
// catalog field, for rule-designer hints.
func ComputeFieldStats(members []member.Member) FieldStatsSet {
	stats := make(FieldStatsSet, len(catalog))
	for _, f := range catalog {
		var fs FieldStats
		for i := range members {
			v := f.Value(&members[i])
			if v == nil {
				continue
			}
			if fs.Min == nil || *v < *fs.Min {
				val := *v
				fs.Min = &val
			}
			if fs.Max == nil || *v > *fs.Max {
				val := *v
				fs.Max = &val
			}
		}
		stats[f.Key] = fs
	}
	return stats
}

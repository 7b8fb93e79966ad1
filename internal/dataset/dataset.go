// Package dataset ingests raw member rows and builds the normalized,
// session-stable member collection. The engine is agnostic to row origin:
// delimited text with a header row and JSON row arrays (the remote query
// shape) both reduce to member.Raw before normalization.
package dataset

import (
	"log/slog"

	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/policy"
	"github.com/lanternhealth/sdohscope/internal/refdata"
)

// Dataset is the immutable member collection for one session. Members are
// identified by position; the slice order never changes after Build.
type Dataset struct {
	Members []member.Member
}

// Build normalizes raw rows into a Dataset. Rows lacking a contract are
// assigned one from the fallback pool by round-robin; the pool index
// advances only on assignment, so interleaved rows that already carry a
// contract do not skew the rotation.
func Build(rows []member.Raw, cfg *refdata.Config, pol policy.Policy) *Dataset {
	members := make([]member.Member, 0, len(rows))
	fallbackIdx := 0
	backfilled := 0
	for i, row := range rows {
		m := member.Normalize(row, i, pol)
		if m.Contract == "" && len(cfg.ContractFallbacks) > 0 {
			m.Contract = cfg.ContractFallbacks[fallbackIdx%len(cfg.ContractFallbacks)]
			fallbackIdx++
			backfilled++
		}
		members = append(members, m)
	}
	if backfilled > 0 {
		slog.Info("contracts backfilled from fallback pool",
			"rows", len(rows),
			"backfilled", backfilled,
		)
	}
	return &Dataset{Members: members}
}

// MemberByIdx returns the member at a session index, or nil when the index
// is out of range.
func (d *Dataset) MemberByIdx(idx int) *member.Member {
	if idx < 0 || idx >= len(d.Members) {
		return nil
	}
	return &d.Members[idx]
}

// MemberByID returns the first member with the given id, or nil.
func (d *Dataset) MemberByID(id string) *member.Member {
	if id == "" {
		return nil
	}
	for i := range d.Members {
		if d.Members[i].ID == id {
			return &d.Members[i]
		}
	}
	return nil
}

// Len returns the number of members.
func (d *Dataset) Len() int {
	return len(d.Members)
}

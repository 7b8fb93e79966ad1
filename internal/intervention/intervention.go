// Package intervention resolves the action plan for a member from the
// playbook. Resolution never fails: an unmatched key falls back to the
// configured default plan.
package intervention

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/refdata"
)

// Resolution is the outcome of resolving a member's plan: the plan, the
// member's default key, and whether a manual override supplied the key.
type Resolution struct {
	Plan           refdata.Plan
	OverrideActive bool
	DefaultKey     string
	OverrideKey    string
}

// PlanByKey looks a key up in the playbook, case-insensitively. A miss
// returns the default plan.
func PlanByKey(cfg *refdata.Config, key string) refdata.Plan {
	if plan, ok := cfg.Playbook[refdata.FoldKey(key)]; ok {
		return plan
	}
	return cfg.DefaultPlan
}

// Resolve picks a member's plan. The manual override key wins when set;
// otherwise the member's primary SDOH driver is the lookup key.
func Resolve(cfg *refdata.Config, m *member.Member, overrides map[string]string) Resolution {
	if m == nil {
		return Resolution{Plan: cfg.DefaultPlan}
	}
	defaultKey := refdata.FoldKey(m.PrimaryDriver())
	overrideKey := overrides[m.ID]
	activeKey := overrideKey
	if activeKey == "" {
		activeKey = defaultKey
	}
	return Resolution{
		Plan:           PlanByKey(cfg, activeKey),
		OverrideActive: overrideKey != "",
		DefaultKey:     defaultKey,
		OverrideKey:    overrideKey,
	}
}

// Describe returns only the resolved plan title, for dense table views.
func Describe(cfg *refdata.Config, m *member.Member, overrides map[string]string) string {
	return Resolve(cfg, m, overrides).Plan.Title
}

// Choice is one selectable plan option.
type Choice struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Choices builds the plan option list: every driver key seen in the
// dataset plus the curated keys, deduplicated by resolved plan title and
// sorted by label with locale-aware collation. When the dataset surfaces
// no drivers at all, the whole playbook becomes the option set.
func Choices(cfg *refdata.Config, members []member.Member) []Choice {
	seen := make(map[string]bool)
	for i := range members {
		for _, d := range members[i].Drivers(member.DriverSDOH) {
			seen[refdata.FoldKey(d.Name)] = true
		}
	}
	for _, key := range cfg.CuratedKeys {
		seen[key] = true
	}
	if len(seen) == 0 {
		for key := range cfg.Playbook {
			seen[key] = true
		}
	}

	byLabel := make(map[string]Choice, len(seen))
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		label := PlanByKey(cfg, key).Title
		if _, ok := byLabel[label]; !ok {
			byLabel[label] = Choice{Key: key, Label: label}
		}
	}

	out := make([]Choice, 0, len(byLabel))
	for _, choice := range byLabel {
		out = append(out, choice)
	}
	coll := collate.New(language.English)
	sort.Slice(out, func(i, j int) bool {
		return coll.CompareString(out[i].Label, out[j].Label) < 0
	})
	return out
}

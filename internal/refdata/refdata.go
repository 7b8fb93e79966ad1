// Package refdata loads and validates the reference configuration the
// engine depends on: contract fallbacks, band orderings, the intervention
// playbook, and the care navigator roster. Configuration is authored in
// CUE and must be complete before any normalization runs: a missing or
// empty table aborts the load with an error naming the table. This is the
// engine's only fail-fast path; everything downstream degrades instead.
package refdata

import (
	"golang.org/x/text/cases"
)

// Plan is one intervention playbook entry.
type Plan struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Actions []string `json:"actions"`
}

// Navigator is one care navigator roster entry.
type Navigator struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// Config holds the seven reference tables. Playbook keys are case-folded
// at load time; look them up through FoldKey.
type Config struct {
	ContractFallbacks []string
	RiskBandOrder     []string
	SDOHLevelOrder    []string
	Playbook          map[string]Plan
	CuratedKeys       []string
	DefaultPlan       Plan
	Navigators        []Navigator
}

// NavigatorByID returns the roster entry with the given id, or nil when
// the id is unknown or empty. A miss is not an error.
func (c *Config) NavigatorByID(id string) *Navigator {
	if id == "" {
		return nil
	}
	for i := range c.Navigators {
		if c.Navigators[i].ID == id {
			return &c.Navigators[i]
		}
	}
	return nil
}

var keyFolder = cases.Fold()

// FoldKey normalizes a playbook key for case-insensitive lookup.
func FoldKey(key string) string {
	return keyFolder.String(key)
}

// Validate checks that every required table is non-empty. The returned
// error names the first missing table.
func (c *Config) Validate() error {
	if len(c.ContractFallbacks) == 0 {
		return &LoadError{Code: ErrCodeMissingTable, Message: "missing required config: contract_fallbacks"}
	}
	if len(c.RiskBandOrder) == 0 {
		return &LoadError{Code: ErrCodeMissingTable, Message: "missing required config: risk_bands"}
	}
	if len(c.SDOHLevelOrder) == 0 {
		return &LoadError{Code: ErrCodeMissingTable, Message: "missing required config: sdoh_level_order"}
	}
	if len(c.Playbook) == 0 {
		return &LoadError{Code: ErrCodeMissingTable, Message: "missing required config: intervention_plans"}
	}
	if len(c.CuratedKeys) == 0 {
		return &LoadError{Code: ErrCodeMissingTable, Message: "missing required config: curated_intervention_keys"}
	}
	if c.DefaultPlan.Title == "" {
		return &LoadError{Code: ErrCodeMissingTable, Message: "missing required config: default_intervention_plan"}
	}
	if len(c.Navigators) == 0 {
		return &LoadError{Code: ErrCodeMissingTable, Message: "missing required config: care_navigators"}
	}
	return nil
}

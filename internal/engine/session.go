// Package engine wires the core components into a session: the loaded
// dataset, the zip risk baseline, campaign state, and the per-member
// override maps. Aggregations are recomputed in full on every snapshot;
// only the baseline, field stats, and campaign store carry state across
// calls, and a full reload invalidates all of them.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lanternhealth/sdohscope/internal/aggregate"
	"github.com/lanternhealth/sdohscope/internal/campaign"
	"github.com/lanternhealth/sdohscope/internal/dataset"
	"github.com/lanternhealth/sdohscope/internal/filter"
	"github.com/lanternhealth/sdohscope/internal/intervention"
	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/policy"
	"github.com/lanternhealth/sdohscope/internal/refdata"
)

// Session is one analysis session over a loaded dataset. Not safe for
// concurrent use; the expected pattern is a single caller re-running
// snapshots on every interaction.
type Session struct {
	Config    *refdata.Config
	Policy    policy.Policy
	Data      *dataset.Dataset
	Baseline  *aggregate.Baseline
	Campaigns *campaign.Manager

	fieldStats campaign.FieldStatsSet

	// Per-member override maps, keyed by member id. Mutated only by
	// explicit calls, last write wins.
	PlanOverrides        map[string]string
	NavigatorAssignments map[string]string
	OutreachSchedules    map[string]string
}

// NewSession normalizes the raw rows and initializes the session caches.
// store may be nil for a memory-only session.
func NewSession(cfg *refdata.Config, pol policy.Policy, rows []member.Raw, store campaign.Store) (*Session, error) {
	mgr, err := campaign.NewManager(store)
	if err != nil {
		return nil, fmt.Errorf("init campaign manager: %w", err)
	}
	s := &Session{
		Config:               cfg,
		Policy:               pol,
		Campaigns:            mgr,
		PlanOverrides:        make(map[string]string),
		NavigatorAssignments: make(map[string]string),
		OutreachSchedules:    make(map[string]string),
	}
	s.Reload(rows)
	return s, nil
}

// Reload replaces the dataset and invalidates every dataset-derived
// cache. Campaign state and member override maps survive a reload.
func (s *Session) Reload(rows []member.Raw) {
	s.Data = dataset.Build(rows, s.Config, s.Policy)
	s.Baseline = aggregate.NewBaseline(s.Data.Members, s.Policy)
	s.fieldStats = nil
	slog.Info("session dataset loaded",
		"members", s.Data.Len(),
		"baseline_tertiled", s.Baseline.Tertiled,
	)
}

// Snapshot is the full read model for one filter state.
type Snapshot struct {
	Cohort   []member.Member
	Universe []member.Member

	KPIs         aggregate.KPIs
	Distribution []aggregate.DistributionBucket

	ZipRows    []aggregate.ZipRow
	ZipSummary aggregate.ZipSummary

	ContractRows []aggregate.ContractRow
}

// Snapshot filters the dataset and recomputes every aggregation. Pure
// with respect to session state; safe to call on each interaction.
func (s *Session) Snapshot(fs filter.State) Snapshot {
	cohort, universe := filter.Cohort(s.Data.Members, fs)
	rows, summary := aggregate.ByZip(cohort, s.Baseline, s.Policy)
	return Snapshot{
		Cohort:       cohort,
		Universe:     universe,
		KPIs:         aggregate.CohortKPIs(cohort),
		Distribution: aggregate.Distribution(universe),
		ZipRows:      rows,
		ZipSummary:   summary,
		ContractRows: aggregate.ByContract(cohort),
	}
}

// FieldStats returns the rule-field ranges over the full dataset,
// computed once per load.
func (s *Session) FieldStats() campaign.FieldStatsSet {
	if s.fieldStats == nil {
		s.fieldStats = campaign.ComputeFieldStats(s.Data.Members)
	}
	return s.fieldStats
}

// Resolve returns the full intervention resolution for a member.
func (s *Session) Resolve(m *member.Member) intervention.Resolution {
	return intervention.Resolve(s.Config, m, s.PlanOverrides)
}

// Describe returns only the resolved plan title for a member.
func (s *Session) Describe(m *member.Member) string {
	return intervention.Describe(s.Config, m, s.PlanOverrides)
}

// Choices returns the selectable plan options for the loaded dataset.
func (s *Session) Choices() []intervention.Choice {
	return intervention.Choices(s.Config, s.Data.Members)
}

// SetPlanOverride records a manual plan choice for a member; an empty
// key clears it.
func (s *Session) SetPlanOverride(memberID, planKey string) {
	if planKey == "" {
		delete(s.PlanOverrides, memberID)
		return
	}
	s.PlanOverrides[memberID] = refdata.FoldKey(planKey)
}

// AssignNavigator assigns a care navigator to a member; an empty id
// clears the assignment. Unknown navigator ids are rejected.
func (s *Session) AssignNavigator(memberID, navigatorID string) error {
	if navigatorID == "" {
		delete(s.NavigatorAssignments, memberID)
		return nil
	}
	if s.Config.NavigatorByID(navigatorID) == nil {
		return fmt.Errorf("unknown navigator %q", navigatorID)
	}
	s.NavigatorAssignments[memberID] = navigatorID
	return nil
}

// ScheduleOutreach records an outreach date (ISO form) for a member; an
// empty date clears the schedule.
func (s *Session) ScheduleOutreach(memberID, isoDate string) error {
	if isoDate == "" {
		delete(s.OutreachSchedules, memberID)
		return nil
	}
	if _, err := time.Parse("2006-01-02", isoDate); err != nil {
		return fmt.Errorf("invalid outreach date %q: expected YYYY-MM-DD", isoDate)
	}
	s.OutreachSchedules[memberID] = isoDate
	return nil
}

// Roster builds the selected campaign's roster over a member set, with
// intervention titles resolved through the session's override map.
func (s *Session) Roster(c *campaign.Campaign, members []member.Member) []campaign.RosterRow {
	return s.Campaigns.Roster(c, members, s.Describe)
}

package campaign

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/outreach"
)

// Store persists the serialized campaign state. Load returns a nil
// payload when nothing has been saved yet.
type Store interface {
	Load() (payload []byte, revision string, err error)
	Save(payload []byte, revision string) error
}

// Manager owns the campaign list, enrollment overrides, and selection.
// Every mutation writes through to the store before returning, stamped
// with a fresh revision. A nil store gives a memory-only session.
type Manager struct {
	store Store

	campaigns   []Campaign
	enrollments Enrollments
	selectedID  string
	revision    string

	protected map[string]bool
}

// NewManager loads persisted state and merges it over the built-in
// defaults. Unreadable or malformed state is logged and discarded; the
// session then starts from the defaults rather than failing.
func NewManager(store Store) (*Manager, error) {
	mgr := &Manager{
		store:       store,
		enrollments: make(Enrollments),
	}

	var stored *persistedState
	if store != nil {
		payload, revision, err := store.Load()
		switch {
		case err != nil:
			slog.Warn("campaign state unreadable, using defaults", "error", err)
		case payload != nil:
			var ps persistedState
			if err := json.Unmarshal(payload, &ps); err != nil {
				slog.Warn("campaign state malformed, using defaults", "error", err)
			} else {
				stored = &ps
				mgr.revision = revision
			}
		}
	}

	mgr.campaigns = mergeCampaigns(stored)
	if stored != nil && stored.Enrollments != nil {
		mgr.enrollments = stored.Enrollments
	}

	mgr.selectedID = ""
	if stored != nil {
		mgr.selectedID = stored.SelectedCampaignID
	}
	if mgr.Get(mgr.selectedID) == nil && len(mgr.campaigns) > 0 {
		mgr.selectedID = mgr.campaigns[0].ID
	}

	mgr.protected = make(map[string]bool, 5)
	for i := 0; i < len(mgr.campaigns) && i < 5; i++ {
		mgr.protected[mgr.campaigns[i].ID] = true
	}
	return mgr, nil
}

// mergeCampaigns lays stored campaigns over the defaults: a stored copy
// of a default campaign replaces it in place, new campaigns append in
// stored order. The defaults therefore always exist and keep their
// positions at the head of the list.
func mergeCampaigns(stored *persistedState) []Campaign {
	merged := Defaults()
	if stored == nil {
		return merged
	}
	index := make(map[string]int, len(merged))
	for i, c := range merged {
		index[c.ID] = i
	}
	for _, pc := range stored.Campaigns {
		c := hydrate(pc)
		if i, ok := index[c.ID]; ok {
			merged[i] = c
		} else {
			merged = append(merged, c)
		}
	}
	return merged
}

// hydrate rebuilds a campaign from its persisted form: the legacy
// campaign gets its predicate back and stays auto-enrolling, rules are
// revalidated against the catalog (stale fields are dropped with a
// warning), and outreach methods are normalized.
func hydrate(pc persistedCampaign) Campaign {
	c := Campaign{
		ID:          pc.ID,
		Name:        pc.Name,
		Description: pc.Description,
		AutoEnroll:  pc.AutoEnroll,
	}
	if _, ok := predicates[c.ID]; ok {
		c.AutoEnroll = true
		c.Targeting.Predicate = c.ID
	}
	for _, pr := range pc.Rules {
		rule, err := NewRule(pr.Field, pr.Op, pr.Value)
		if err != nil {
			slog.Warn("dropping stale campaign rule", "campaign", c.ID, "error", err)
			continue
		}
		c.Targeting.Rules = append(c.Targeting.Rules, rule)
	}
	c.OutreachMethods = outreach.NormalizeMethods(pc.OutreachMethods)
	return c
}

// Campaigns returns the campaign list in display order.
func (mgr *Manager) Campaigns() []Campaign {
	out := make([]Campaign, len(mgr.campaigns))
	copy(out, mgr.campaigns)
	return out
}

// Get returns the campaign with the given id, nil when unknown.
func (mgr *Manager) Get(id string) *Campaign {
	if id == "" {
		return nil
	}
	for i := range mgr.campaigns {
		if mgr.campaigns[i].ID == id {
			return &mgr.campaigns[i]
		}
	}
	return nil
}

// Selected returns the active campaign, falling back to the first one.
func (mgr *Manager) Selected() *Campaign {
	if c := mgr.Get(mgr.selectedID); c != nil {
		return c
	}
	if len(mgr.campaigns) > 0 {
		return &mgr.campaigns[0]
	}
	return nil
}

// Select makes a campaign the active one.
func (mgr *Manager) Select(id string) error {
	if mgr.Get(id) == nil {
		return fmt.Errorf("unknown campaign %q", id)
	}
	mgr.selectedID = id
	return mgr.persist()
}

// Protected reports whether a campaign is delete-protected. The first
// five campaigns at session start cannot be deleted.
func (mgr *Manager) Protected(id string) bool {
	return mgr.protected[id]
}

// Revision returns the stamp of the last persisted state, "" before the
// first save.
func (mgr *Manager) Revision() string {
	return mgr.revision
}

// Create adds a manual outreach campaign named name and selects it. The
// id is the slugified name and must be unused.
func (mgr *Manager) Create(name string) (*Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("campaign name is empty")
	}
	id := Slugify(name)
	if id == "" {
		return nil, fmt.Errorf("campaign name %q yields an empty id", name)
	}
	if mgr.Get(id) != nil {
		return nil, fmt.Errorf("campaign %q already exists", id)
	}
	mgr.campaigns = append(mgr.campaigns, Campaign{
		ID:              id,
		Name:            name,
		Description:     "Manual outreach campaign.",
		OutreachMethods: outreach.NormalizeMethods([]string{"Mail", "Phone/SMS", "Email"}),
	})
	mgr.selectedID = id
	if err := mgr.persist(); err != nil {
		return nil, err
	}
	return mgr.Get(id), nil
}

// Delete removes a campaign and its enrollment records. Protected
// campaigns cannot be deleted.
func (mgr *Manager) Delete(id string) error {
	if mgr.Get(id) == nil {
		return fmt.Errorf("unknown campaign %q", id)
	}
	if mgr.Protected(id) {
		return fmt.Errorf("campaign %q is protected and cannot be deleted", id)
	}
	next := mgr.campaigns[:0:0]
	for _, c := range mgr.campaigns {
		if c.ID != id {
			next = append(next, c)
		}
	}
	mgr.campaigns = next
	mgr.enrollments.Drop(id)
	if mgr.selectedID == id {
		mgr.selectedID = ""
		if len(mgr.campaigns) > 0 {
			mgr.selectedID = mgr.campaigns[0].ID
		}
	}
	return mgr.persist()
}

// SetRules replaces a campaign's rule set. For campaigns without a legacy
// predicate, auto-enrollment follows the rule set: on while rules exist,
// off when they are cleared.
func (mgr *Manager) SetRules(id string, rules RuleSet) error {
	c := mgr.Get(id)
	if c == nil {
		return fmt.Errorf("unknown campaign %q", id)
	}
	c.Targeting.Rules = rules
	if c.Targeting.Predicate == "" {
		c.AutoEnroll = len(rules) > 0
	}
	return mgr.persist()
}

// Enrollment returns the stored override record for a pair.
func (mgr *Manager) Enrollment(campaignID, memberID string) (Record, bool) {
	return mgr.enrollments.Get(campaignID, memberID)
}

// SetEnrollment stores an override record, pruning no-op records, and
// writes through.
func (mgr *Manager) SetEnrollment(campaignID, memberID string, rec Record) error {
	if mgr.Get(campaignID) == nil {
		return fmt.Errorf("unknown campaign %q", campaignID)
	}
	if memberID == "" {
		return fmt.Errorf("member id is empty")
	}
	mgr.enrollments.Set(campaignID, memberID, rec)
	return mgr.persist()
}

// ApplyEnrollment records an enroll or unenroll decision for a member,
// reconciled against computed eligibility: a decision the rules already
// produce clears the override instead of storing one. Method, status,
// and note on an existing record are preserved.
func (mgr *Manager) ApplyEnrollment(campaignID string, m *member.Member, enroll bool) error {
	c := mgr.Get(campaignID)
	if c == nil {
		return fmt.Errorf("unknown campaign %q", campaignID)
	}
	if m == nil || m.ID == "" {
		return fmt.Errorf("member id is empty")
	}
	rec, _ := mgr.enrollments.Get(campaignID, m.ID)
	if enroll {
		rec.Override = OverrideInclude
	} else {
		rec.Override = OverrideExclude
	}
	rec = Reconcile(c, m, rec)
	mgr.enrollments.Set(campaignID, m.ID, rec)
	return mgr.persist()
}

// Stats are the enrollment counters for one campaign over a member set.
type Stats struct {
	Eligible int `json:"eligible"`
	Enrolled int `json:"enrolled"`
	Manual   int `json:"manual"`
	Excluded int `json:"excluded"`
}

// CampaignStats counts eligibility and enrollment outcomes for a
// campaign across the given members.
func (mgr *Manager) CampaignStats(c *Campaign, members []member.Member) Stats {
	var s Stats
	if c == nil {
		return s
	}
	for i := range members {
		m := &members[i]
		rec, _ := mgr.enrollments.Get(c.ID, m.ID)
		if c.Eligible(m) {
			s.Eligible++
		}
		if Enrolled(c, m, rec) {
			s.Enrolled++
		}
		switch rec.Override {
		case OverrideInclude:
			s.Manual++
		case OverrideExclude:
			s.Excluded++
		}
	}
	return s
}

func (mgr *Manager) persist() error {
	if mgr.store == nil {
		return nil
	}
	payload, err := json.Marshal(mgr.dehydrate())
	if err != nil {
		return fmt.Errorf("encode campaign state: %w", err)
	}
	revision := uuid.NewString()
	if err := mgr.store.Save(payload, revision); err != nil {
		return fmt.Errorf("save campaign state: %w", err)
	}
	mgr.revision = revision
	return nil
}

func (mgr *Manager) dehydrate() persistedState {
	ps := persistedState{
		Campaigns:          make([]persistedCampaign, 0, len(mgr.campaigns)),
		Enrollments:        mgr.enrollments,
		SelectedCampaignID: mgr.selectedID,
	}
	for _, c := range mgr.campaigns {
		pc := persistedCampaign{
			ID:              c.ID,
			Name:            c.Name,
			Description:     c.Description,
			AutoEnroll:      c.AutoEnroll,
			OutreachMethods: c.OutreachMethods,
			Rules:           make([]persistedRule, 0, len(c.Targeting.Rules)),
		}
		for _, rule := range c.Targeting.Rules {
			pc.Rules = append(pc.Rules, persistedRule{
				Field: rule.Field.Key,
				Op:    string(rule.Op),
				Value: rule.Value,
			})
		}
		ps.Campaigns = append(ps.Campaigns, pc)
	}
	return ps
}

// persistedState is the serialized shape. The predicate attachment is
// never persisted; hydrate reattaches it by campaign id.
type persistedState struct {
	Campaigns          []persistedCampaign `json:"campaigns"`
	Enrollments        Enrollments         `json:"enrollments"`
	SelectedCampaignID string              `json:"selectedCampaignId"`
}

type persistedCampaign struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	AutoEnroll      bool            `json:"autoEnroll"`
	OutreachMethods []string        `json:"outreachMethods"`
	Rules           []persistedRule `json:"rules"`
}

type persistedRule struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value string `json:"value"`
}

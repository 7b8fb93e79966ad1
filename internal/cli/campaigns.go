package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lanternhealth/sdohscope/internal/campaign"
	"github.com/lanternhealth/sdohscope/internal/export"
)

// CampaignSummary is one campaign in list/show output.
type CampaignSummary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	AutoEnroll      bool     `json:"autoEnroll"`
	OutreachMethods []string `json:"outreachMethods"`
	Logic           string   `json:"logic,omitempty"`
	Protected       bool     `json:"protected"`
	Selected        bool     `json:"selected"`
}

// NewCampaignsCommand creates the campaigns command group.
func NewCampaignsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Manage and evaluate outreach campaigns",
	}
	cmd.AddCommand(newCampaignsListCommand(rootOpts))
	cmd.AddCommand(newCampaignsShowCommand(rootOpts))
	cmd.AddCommand(newCampaignsEvalCommand(rootOpts))
	cmd.AddCommand(newCampaignsCreateCommand(rootOpts))
	cmd.AddCommand(newCampaignsDeleteCommand(rootOpts))
	cmd.AddCommand(newCampaignsSetRulesCommand(rootOpts))
	cmd.AddCommand(newCampaignsEnrollCommand(rootOpts))
	cmd.AddCommand(newCampaignsSelectCommand(rootOpts))
	return cmd
}

func summarize(mgr *campaign.Manager, c *campaign.Campaign) CampaignSummary {
	selected := mgr.Selected()
	return CampaignSummary{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		AutoEnroll:      c.AutoEnroll,
		OutreachMethods: c.OutreachMethods,
		Logic:           c.Targeting.Describe(),
		Protected:       mgr.Protected(c.ID),
		Selected:        selected != nil && selected.ID == c.ID,
	}
}

func newCampaignsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List campaigns",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			session, closer, err := newSession(rootOpts)
			if err != nil {
				return outputSessionError(formatter, err)
			}
			defer closer()

			campaigns := session.Campaigns.Campaigns()
			summaries := make([]CampaignSummary, 0, len(campaigns))
			for i := range campaigns {
				summaries = append(summaries, summarize(session.Campaigns, &campaigns[i]))
			}
			if formatter.Format == "json" {
				return formatter.JSON(summaries)
			}
			for _, s := range summaries {
				marker := " "
				if s.Selected {
					marker = "*"
				}
				auto := "manual"
				if s.AutoEnroll {
					auto = "auto"
				}
				fmt.Fprintf(formatter.Writer, "%s %-26s %-8s %s\n", marker, s.ID, auto, s.Name)
			}
			return nil
		},
	}
}

func newCampaignsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <campaign-id>",
		Short:         "Show one campaign's definition",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			session, closer, err := newSession(rootOpts)
			if err != nil {
				return outputSessionError(formatter, err)
			}
			defer closer()

			c := session.Campaigns.Get(args[0])
			if c == nil {
				_ = formatter.Error("E404", fmt.Sprintf("unknown campaign %q", args[0]), nil)
				return NewExitError(ExitFailure, "campaign not found")
			}
			s := summarize(session.Campaigns, c)
			if formatter.Format == "json" {
				return formatter.JSON(s)
			}
			w := formatter.Writer
			fmt.Fprintf(w, "%s (%s)\n", s.Name, s.ID)
			fmt.Fprintln(w, s.Description)
			fmt.Fprintf(w, "Auto-enroll: %v  Protected: %v\n", s.AutoEnroll, s.Protected)
			fmt.Fprintf(w, "Methods: %s\n", strings.Join(s.OutreachMethods, ", "))
			if s.Logic != "" {
				fmt.Fprintf(w, "Logic: %s\n", s.Logic)
			}
			return nil
		},
	}
}

// CampaignEvalResult is the JSON payload of campaigns eval.
type CampaignEvalResult struct {
	Campaign CampaignSummary      `json:"campaign"`
	Stats    campaign.Stats       `json:"stats"`
	Roster   []campaign.RosterRow `json:"roster"`
}

func newCampaignsEvalCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "eval <campaign-id>",
		Short: "Evaluate a campaign over the filtered cohort",
		Long: `Evaluate a campaign's targeting over the filtered cohort and print
the enrollment roster: rule eligibility merged with stored manual
overrides, plus the derived outreach channel per member.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			session, closer, err := newSession(rootOpts)
			if err != nil {
				return outputSessionError(formatter, err)
			}
			defer closer()

			c := session.Campaigns.Get(args[0])
			if c == nil {
				_ = formatter.Error("E404", fmt.Sprintf("unknown campaign %q", args[0]), nil)
				return NewExitError(ExitFailure, "campaign not found")
			}

			snap := session.Snapshot(ff.state())
			result := CampaignEvalResult{
				Campaign: summarize(session.Campaigns, c),
				Stats:    session.Campaigns.CampaignStats(c, snap.Cohort),
				Roster:   session.Roster(c, snap.Cohort),
			}
			if formatter.Format == "json" {
				return formatter.JSON(result)
			}
			w := formatter.Writer
			fmt.Fprintf(w, "%s\n", result.Campaign.Name)
			fmt.Fprintf(w, "Eligible %d  Enrolled %d  Manual %d  Excluded %d\n",
				result.Stats.Eligible, result.Stats.Enrolled, result.Stats.Manual, result.Stats.Excluded)
			fmt.Fprintln(w)
			for _, r := range result.Roster {
				fmt.Fprintf(w, "%-12s %-24s %-6s %-7s %-13s %-7s %s\n",
					r.MemberID, r.MemberName, r.Zip, r.RiskClass, r.Source, r.Channel,
					export.FmtSigned(r.SDOHLift, 3))
			}
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newCampaignsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "create <name>",
		Short:         "Create a manual outreach campaign",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			session, closer, err := newSession(rootOpts)
			if err != nil {
				return outputSessionError(formatter, err)
			}
			defer closer()

			c, err := session.Campaigns.Create(args[0])
			if err != nil {
				_ = formatter.Error("E400", err.Error(), nil)
				return WrapExitError(ExitFailure, "create campaign", err)
			}
			if formatter.Format == "json" {
				return formatter.JSON(summarize(session.Campaigns, c))
			}
			fmt.Fprintf(formatter.Writer, "Created campaign %s\n", c.ID)
			return nil
		},
	}
}

func newCampaignsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <campaign-id>",
		Short:         "Delete a campaign and its enrollment records",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			session, closer, err := newSession(rootOpts)
			if err != nil {
				return outputSessionError(formatter, err)
			}
			defer closer()

			if err := session.Campaigns.Delete(args[0]); err != nil {
				_ = formatter.Error("E400", err.Error(), nil)
				return WrapExitError(ExitFailure, "delete campaign", err)
			}
			if formatter.Format == "json" {
				return formatter.JSON(map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(formatter.Writer, "Deleted campaign %s\n", args[0])
			return nil
		},
	}
}

func newCampaignsSetRulesCommand(rootOpts *RootOptions) *cobra.Command {
	var ruleSpecs []string
	cmd := &cobra.Command{
		Use:   "set-rules <campaign-id>",
		Short: "Replace a campaign's targeting rules",
		Long: `Replace a campaign's rule set. Each --rule takes "field,op,value",
for example --rule "risk_full,>=,2.0". Passing no --rule clears the rules
and disables auto-enrollment for non-legacy campaigns.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			session, closer, err := newSession(rootOpts)
			if err != nil {
				return outputSessionError(formatter, err)
			}
			defer closer()

			rules := make(campaign.RuleSet, 0, len(ruleSpecs))
			for _, spec := range ruleSpecs {
				parts := strings.SplitN(spec, ",", 3)
				if len(parts) != 3 {
					_ = formatter.Error("E400", fmt.Sprintf("malformed rule %q: expected field,op,value", spec), nil)
					return NewExitError(ExitCommandError, "malformed rule")
				}
				rule, err := campaign.NewRule(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]))
				if err != nil {
					_ = formatter.Error("E400", err.Error(), nil)
					return WrapExitError(ExitCommandError, "invalid rule", err)
				}
				rules = append(rules, rule)
			}

			if err := session.Campaigns.SetRules(args[0], rules); err != nil {
				_ = formatter.Error("E400", err.Error(), nil)
				return WrapExitError(ExitFailure, "set rules", err)
			}
			c := session.Campaigns.Get(args[0])
			if formatter.Format == "json" {
				return formatter.JSON(summarize(session.Campaigns, c))
			}
			fmt.Fprintf(formatter.Writer, "Campaign %s now targets: %s\n", c.ID, c.Targeting.Describe())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&ruleSpecs, "rule", nil, `rule as "field,op,value" (repeatable)`)
	return cmd
}

func newCampaignsEnrollCommand(rootOpts *RootOptions) *cobra.Command {
	var override, method, status, note string
	cmd := &cobra.Command{
		Use:   "enroll <campaign-id> <member-id>",
		Short: "Record a manual enrollment override",
		Long: `Record a manual include/exclude override for one member. An empty
override with no method, status, or note clears the stored record, and an
override matching the member's computed eligibility is cleared rather
than stored.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			session, closer, err := newSession(rootOpts)
			if err != nil {
				return outputSessionError(formatter, err)
			}
			defer closer()

			if override != "" && override != "include" && override != "exclude" {
				_ = formatter.Error("E400", fmt.Sprintf("invalid override %q: expected include, exclude, or empty", override), nil)
				return NewExitError(ExitCommandError, "invalid override")
			}
			rec := campaign.Record{
				Override:       campaign.ParseOverride(override),
				OutreachMethod: method,
				Status:         status,
				Note:           note,
			}
			if m := session.Data.MemberByID(args[1]); m != nil {
				rec = campaign.Reconcile(session.Campaigns.Get(args[0]), m, rec)
			}
			if err := session.Campaigns.SetEnrollment(args[0], args[1], rec); err != nil {
				_ = formatter.Error("E400", err.Error(), nil)
				return WrapExitError(ExitFailure, "set enrollment", err)
			}
			if formatter.Format == "json" {
				stored, ok := session.Campaigns.Enrollment(args[0], args[1])
				return formatter.JSON(map[string]any{"stored": ok, "record": stored})
			}
			if rec.IsZero() {
				fmt.Fprintf(formatter.Writer, "Cleared override for %s in %s\n", args[1], args[0])
			} else {
				fmt.Fprintf(formatter.Writer, "Recorded override for %s in %s\n", args[1], args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&override, "override", "", "manual decision (include|exclude|empty to clear)")
	cmd.Flags().StringVar(&method, "method", "", "preferred outreach method")
	cmd.Flags().StringVar(&status, "status", "", "outreach status note")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	return cmd
}

func newCampaignsSelectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "select <campaign-id>",
		Short:         "Make a campaign the active one",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			session, closer, err := newSession(rootOpts)
			if err != nil {
				return outputSessionError(formatter, err)
			}
			defer closer()

			if err := session.Campaigns.Select(args[0]); err != nil {
				_ = formatter.Error("E400", err.Error(), nil)
				return WrapExitError(ExitFailure, "select campaign", err)
			}
			if formatter.Format == "json" {
				return formatter.JSON(map[string]string{"selected": args[0]})
			}
			fmt.Fprintf(formatter.Writer, "Selected campaign %s\n", args[0])
			return nil
		},
	}
}

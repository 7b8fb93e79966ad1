package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanternhealth/sdohscope/internal/aggregate"
	"github.com/lanternhealth/sdohscope/internal/export"
	"github.com/lanternhealth/sdohscope/internal/member"
)

// CohortResult is the JSON payload of the cohort command.
type CohortResult struct {
	Members      int                            `json:"members"`
	Universe     int                            `json:"universe"`
	KPIs         aggregate.KPIs                 `json:"kpis"`
	Distribution []aggregate.DistributionBucket `json:"distribution"`
	TopDrivers   []aggregate.DriverImpact       `json:"top_drivers"`
	Rows         []member.Member                `json:"rows,omitempty"`
}

// NewCohortCommand creates the cohort command.
func NewCohortCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &filterFlags{}
	var listMembers bool

	cmd := &cobra.Command{
		Use:   "cohort",
		Short: "Derive the filtered cohort and its KPIs",
		Long: `Apply the filter state to the loaded members and report cohort
KPIs and the SDOH burden distribution. The distribution always reflects
the primary-filtered universe, so its shares stay consistent while a
bucket is selected.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCohort(rootOpts, ff, listMembers, cmd)
		},
	}
	ff.register(cmd)
	cmd.Flags().BoolVar(&listMembers, "members", false, "include member rows in the output")
	return cmd
}

func runCohort(opts *RootOptions, ff *filterFlags, listMembers bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	session, closer, err := newSession(opts)
	if err != nil {
		return outputSessionError(formatter, err)
	}
	defer closer()

	snap := session.Snapshot(ff.state())
	formatter.VerboseLog("cohort: %d of %d members after filters", len(snap.Cohort), session.Data.Len())

	result := CohortResult{
		Members:      len(snap.Cohort),
		Universe:     len(snap.Universe),
		KPIs:         snap.KPIs,
		Distribution: snap.Distribution,
		TopDrivers:   aggregate.DriverImpacts(snap.Cohort, 5),
	}
	if listMembers {
		result.Rows = snap.Cohort
	}

	if formatter.Format == "json" {
		return formatter.JSON(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Members in cohort: %d\n", result.Members)
	fmt.Fprintf(w, "Avg risk (with SDOH):  %s\n", export.FmtNumber(snap.KPIs.AvgRiskFull, 3))
	fmt.Fprintf(w, "Avg risk (no SDOH):    %s\n", export.FmtNumber(snap.KPIs.AvgRiskNoSDOH, 3))
	fmt.Fprintf(w, "Avg SDOH lift:         %s\n", export.FmtSigned(snap.KPIs.AvgLift, 3))
	fmt.Fprintf(w, "High burden:           %s\n", export.FmtPercent(snap.KPIs.PctHighBurden, 1))
	fmt.Fprintf(w, "Protective:            %s\n", export.FmtPercent(snap.KPIs.PctProtective, 1))
	if snap.KPIs.TopDriver != "" {
		fmt.Fprintf(w, "Leading SDOH driver:   %s (%d members)\n",
			member.PrettyDriverName(snap.KPIs.TopDriver), snap.KPIs.TopDriverCount)
	}
	fmt.Fprintln(w, "\nBurden distribution:")
	for _, b := range snap.Distribution {
		fmt.Fprintf(w, "  %-12s %6d  %s\n", b.Label, b.Count, export.FmtPercent(b.Share, 1))
	}
	if len(result.TopDrivers) > 0 {
		fmt.Fprintln(w, "\nTop SDOH drivers by impact:")
		for _, d := range result.TopDrivers {
			fmt.Fprintf(w, "  %-28s %6d members  %.3f\n",
				member.PrettyDriverName(d.Name), d.Members, d.Impact)
		}
	}
	if listMembers {
		fmt.Fprintln(w, "\nMembers:")
		for i := range snap.Cohort {
			m := &snap.Cohort[i]
			fmt.Fprintf(w, "  %-12s %-24s %-6s %s  %s\n",
				m.ID, m.Name, m.Zip, export.FmtNumber(m.RiskFull, 3), m.SDOHLevel)
		}
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanternhealth/sdohscope/internal/aggregate"
	"github.com/lanternhealth/sdohscope/internal/export"
)

// ZipsResult is the JSON payload of the zips command.
type ZipsResult struct {
	Rows    []aggregate.ZipRow   `json:"rows"`
	Summary aggregate.ZipSummary `json:"summary"`
}

// NewZipsCommand creates the zips command.
func NewZipsCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "zips",
		Short: "Aggregate the cohort by ZIP",
		Long: `Group the filtered cohort by ZIP and report per-group metrics and
the rollup summary. Zone classification comes from the full-dataset
baseline and does not move with the filters.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runZips(rootOpts, ff, cmd)
		},
	}
	ff.register(cmd)
	return cmd
}

func runZips(opts *RootOptions, ff *filterFlags, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	session, closer, err := newSession(opts)
	if err != nil {
		return outputSessionError(formatter, err)
	}
	defer closer()

	snap := session.Snapshot(ff.state())
	result := ZipsResult{Rows: snap.ZipRows, Summary: snap.ZipSummary}

	if formatter.Format == "json" {
		return formatter.JSON(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%-8s %-16s %8s  %-14s %10s %10s %10s\n",
		"ZIP", "County", "Members", "Zone", "Avg Risk", "Avg Lift", "% High")
	for _, z := range result.Rows {
		fmt.Fprintf(w, "%-8s %-16s %8d  %-14s %10s %10s %10s\n",
			z.Zip, z.County, z.Members, z.RiskZone,
			export.FmtNumber(z.AvgRisk, 3), export.FmtSigned(z.AvgLift, 3),
			export.FmtPercent(z.PctHigh, 1))
	}
	s := result.Summary
	fmt.Fprintf(w, "\n%d ZIPs, %d members\n", s.ZipCount, s.TotalMembers)
	fmt.Fprintf(w, "Mean of means: risk %s, lift %s\n",
		export.FmtNumber(s.AvgRisk, 3), export.FmtSigned(s.AvgLift, 3))
	fmt.Fprintf(w, "High-lift ZIPs: %d\n", s.HighLiftZipCount)
	if s.TopLiftZip != nil {
		fmt.Fprintf(w, "Top lift: %s (%s)\n", s.TopLiftZip.Zip, export.FmtSigned(s.TopLiftZip.AvgLift, 3))
	}
	if s.BottomLiftZip != nil {
		fmt.Fprintf(w, "Bottom lift: %s (%s)\n", s.BottomLiftZip.Zip, export.FmtSigned(s.BottomLiftZip.AvgLift, 3))
	}
	return nil
}

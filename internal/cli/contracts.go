package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanternhealth/sdohscope/internal/aggregate"
	"github.com/lanternhealth/sdohscope/internal/export"
)

// ContractsResult is the JSON payload of the contracts command.
type ContractsResult struct {
	Rows []aggregate.ContractRow `json:"rows"`
}

// NewContractsCommand creates the contracts command.
func NewContractsCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &filterFlags{}

	cmd := &cobra.Command{
		Use:           "contracts",
		Short:         "Aggregate the cohort by contract",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContracts(rootOpts, ff, cmd)
		},
	}
	ff.register(cmd)
	return cmd
}

func runContracts(opts *RootOptions, ff *filterFlags, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	session, closer, err := newSession(opts)
	if err != nil {
		return outputSessionError(formatter, err)
	}
	defer closer()

	snap := session.Snapshot(ff.state())
	result := ContractsResult{Rows: snap.ContractRows}

	if formatter.Format == "json" {
		return formatter.JSON(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%-12s %8s %10s %10s %10s\n", "Contract", "Members", "Avg Risk", "Avg Lift", "% High")
	for _, c := range result.Rows {
		fmt.Fprintf(w, "%-12s %8d %10s %10s %10s\n",
			c.Contract, c.Members,
			export.FmtNumber(c.AvgRisk, 3), export.FmtSigned(c.AvgLift, 3),
			export.FmtPercent(c.PctHigh, 1))
	}
	return nil
}

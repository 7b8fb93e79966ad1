package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lanternhealth/sdohscope/internal/engine"
	"github.com/lanternhealth/sdohscope/internal/export"
)

// NewExportCommand creates the export command group. Every subcommand
// writes CSV to --out, or stdout when unset.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export cohort, aggregation, and campaign results as CSV",
	}
	cmd.AddCommand(newExportCohortCommand(rootOpts))
	cmd.AddCommand(newExportZipsCommand(rootOpts))
	cmd.AddCommand(newExportContractsCommand(rootOpts))
	cmd.AddCommand(newExportCampaignCommand(rootOpts))
	cmd.AddCommand(newExportMemberCommand(rootOpts))
	cmd.AddCommand(newExportInterventionCommand(rootOpts))
	return cmd
}

// withOutput opens the --out file (or stdout) and hands it to fn.
func withOutput(outPath string, fn func(io.Writer) error) error {
	if outPath == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "create output file", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitCommandError, "close output file", err)
	}
	return nil
}

type exportRun func(session *engine.Session, ff *filterFlags, w io.Writer) error

func newExportSubcommand(rootOpts *RootOptions, use, short string, run exportRun) *cobra.Command {
	ff := &filterFlags{}
	var outPath string
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
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
			return withOutput(outPath, func(w io.Writer) error {
				return run(session, ff, w)
			})
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")
	return cmd
}

func newExportCohortCommand(rootOpts *RootOptions) *cobra.Command {
	return newExportSubcommand(rootOpts, "cohort", "Export the filtered member cohort",
		func(session *engine.Session, ff *filterFlags, w io.Writer) error {
			snap := session.Snapshot(ff.state())
			return export.MemberCohort(w, snap.Cohort, session.Describe)
		})
}

func newExportZipsCommand(rootOpts *RootOptions) *cobra.Command {
	return newExportSubcommand(rootOpts, "zips", "Export the per-ZIP summary",
		func(session *engine.Session, ff *filterFlags, w io.Writer) error {
			snap := session.Snapshot(ff.state())
			return export.ZipSummary(w, snap.ZipRows)
		})
}

func newExportContractsCommand(rootOpts *RootOptions) *cobra.Command {
	return newExportSubcommand(rootOpts, "contracts", "Export the per-contract summary",
		func(session *engine.Session, ff *filterFlags, w io.Writer) error {
			snap := session.Snapshot(ff.state())
			return export.ContractSummary(w, snap.ContractRows)
		})
}

func newExportCampaignCommand(rootOpts *RootOptions) *cobra.Command {
	ff := &filterFlags{}
	var outPath string
	cmd := &cobra.Command{
		Use:           "campaign <campaign-id>",
		Short:         "Export a campaign's enrolled roster",
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
			roster := session.Roster(c, snap.Cohort)
			return withOutput(outPath, func(w io.Writer) error {
				return export.CampaignRoster(w, roster)
			})
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")
	return cmd
}

func newExportMemberCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:           "member <member-id>",
		Short:         "Export one member's full detail record",
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

			m := session.Data.MemberByID(args[0])
			if m == nil {
				_ = formatter.Error("E404", fmt.Sprintf("unknown member %q", args[0]), nil)
				return NewExitError(ExitFailure, "member not found")
			}
			return withOutput(outPath, func(w io.Writer) error {
				return export.MemberDetail(w, m)
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")
	return cmd
}

func newExportInterventionCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:           "intervention <member-id>",
		Short:         "Export one member's resolved intervention record",
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

			m := session.Data.MemberByID(args[0])
			if m == nil {
				_ = formatter.Error("E404", fmt.Sprintf("unknown member %q", args[0]), nil)
				return NewExitError(ExitFailure, "member not found")
			}
			return withOutput(outPath, func(w io.Writer) error {
				return export.InterventionDetail(w, session.Config, m,
					session.PlanOverrides, session.NavigatorAssignments, session.OutreachSchedules)
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")
	return cmd
}

// Package cli implements the sdohscope command line: cohort derivation,
// geographic and contract aggregation, campaign targeting, and CSV
// export over a loaded member dataset.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ConfigDir  string // reference configuration (CUE)
	DataPath   string // member rows (.csv or .json)
	StatePath  string // campaign state database; empty = memory only
	PolicyPath string // threshold overrides (YAML); empty = defaults
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sdohscope CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sdohscope",
		Short: "SDOH cohort derivation and campaign targeting",
		Long:  "Derives member cohorts from SDOH risk data, aggregates them by geography and contract, and manages outreach campaign targeting.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config", "config", "reference configuration directory")
	cmd.PersistentFlags().StringVar(&opts.DataPath, "data", "", "member data file (.csv or .json)")
	cmd.PersistentFlags().StringVar(&opts.StatePath, "state", "", "campaign state database path (default: in-memory)")
	cmd.PersistentFlags().StringVar(&opts.PolicyPath, "policy", "", "threshold policy overrides (YAML)")

	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewCohortCommand(opts))
	cmd.AddCommand(NewZipsCommand(opts))
	cmd.AddCommand(NewContractsCommand(opts))
	cmd.AddCommand(NewCampaignsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging routes slog to stderr; verbose lowers the level so
// the engine's progress lines show up.
func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanternhealth/sdohscope/internal/refdata"
)

// LoadResult summarizes a successful load.
type LoadResult struct {
	Members    int    `json:"members"`
	Zips       int    `json:"zips"`
	Campaigns  int    `json:"campaigns"`
	Navigators int    `json:"navigators"`
	Revision   string `json:"revision,omitempty"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load and validate configuration and member data",
		Long: `Load the reference configuration and member data, run full
normalization, and report what the session would contain. Fails fast when
a required reference table is missing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, cmd)
		},
	}
}

func runLoad(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	session, closer, err := newSession(opts)
	if err != nil {
		return outputSessionError(formatter, err)
	}
	defer closer()

	zips := make(map[string]bool)
	for i := range session.Data.Members {
		zips[session.Data.Members[i].Zip] = true
	}

	result := LoadResult{
		Members:    session.Data.Len(),
		Zips:       len(zips),
		Campaigns:  len(session.Campaigns.Campaigns()),
		Navigators: len(session.Config.Navigators),
		Revision:   session.Campaigns.Revision(),
	}

	if formatter.Format == "json" {
		return formatter.JSON(result)
	}
	fmt.Fprintf(formatter.Writer, "Loaded %d members across %d ZIPs\n", result.Members, result.Zips)
	fmt.Fprintf(formatter.Writer, "Campaigns: %d, Navigators: %d\n", result.Campaigns, result.Navigators)
	return nil
}

// outputSessionError renders a session construction failure. Missing
// reference tables keep their stable config error codes.
func outputSessionError(formatter *OutputFormatter, err error) error {
	var loadErr *refdata.LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	_ = formatter.Error("E001", err.Error(), nil)
	return WrapExitError(ExitCommandError, "session init failed", err)
}

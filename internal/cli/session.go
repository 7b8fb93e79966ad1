package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lanternhealth/sdohscope/internal/campaign"
	"github.com/lanternhealth/sdohscope/internal/dataset"
	"github.com/lanternhealth/sdohscope/internal/engine"
	"github.com/lanternhealth/sdohscope/internal/filter"
	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/policy"
	"github.com/lanternhealth/sdohscope/internal/refdata"
)

// newFormatter builds the per-command output formatter.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadRows reads member rows from the --data path, dispatching on the
// file extension.
func loadRows(path string) ([]member.Raw, error) {
	if path == "" {
		return nil, fmt.Errorf("no data file: set --data")
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		return dataset.ReadJSONRows(data)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()
	return dataset.ReadCSV(f)
}

// newSession assembles a full session from the root flags: reference
// config, policy, member rows, and (optionally) the campaign store.
// The returned closer is non-nil when a store was opened.
func newSession(opts *RootOptions) (*engine.Session, func() error, error) {
	cfg, err := refdata.Load(opts.ConfigDir)
	if err != nil {
		return nil, nil, err
	}

	pol := policy.Default()
	if opts.PolicyPath != "" {
		pol, err = policy.Load(opts.PolicyPath)
		if err != nil {
			return nil, nil, err
		}
	}

	rows, err := loadRows(opts.DataPath)
	if err != nil {
		return nil, nil, err
	}

	var store campaign.Store
	closer := func() error { return nil }
	if opts.StatePath != "" {
		sqlStore, err := campaign.OpenStore(opts.StatePath)
		if err != nil {
			return nil, nil, err
		}
		store = sqlStore
		closer = sqlStore.Close
	}

	session, err := engine.NewSession(cfg, pol, rows, store)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return session, closer, nil
}

// filterFlags collects the cohort filter dimensions from the command
// line. Repeatable flags become multi-select matches.
type filterFlags struct {
	level    []string
	county   []string
	zip      []string
	plan     []string
	contract []string
	race     []string
	band     []string
	ageGroup []string

	search string
	focus  bool
	bucket string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&ff.level, "level", nil, "SDOH level filter (repeatable)")
	cmd.Flags().StringSliceVar(&ff.county, "county", nil, "county filter (repeatable)")
	cmd.Flags().StringSliceVar(&ff.zip, "zip", nil, "zip filter (repeatable)")
	cmd.Flags().StringSliceVar(&ff.plan, "plan", nil, "plan filter (repeatable)")
	cmd.Flags().StringSliceVar(&ff.contract, "contract", nil, "contract filter (repeatable)")
	cmd.Flags().StringSliceVar(&ff.race, "race", nil, "race filter (repeatable)")
	cmd.Flags().StringSliceVar(&ff.band, "band", nil, "risk band filter (repeatable)")
	cmd.Flags().StringSliceVar(&ff.ageGroup, "age-group", nil, "age group filter (repeatable)")
	cmd.Flags().StringVar(&ff.search, "search", "", "substring search over id, name, and zip")
	cmd.Flags().BoolVar(&ff.focus, "focus-high-burden", false, "restrict to significant/extreme SDOH burden")
	cmd.Flags().StringVar(&ff.bucket, "bucket", "", "distribution bucket (protective|mild|significant|extreme)")
}

func (ff *filterFlags) state() filter.State {
	return filter.State{
		SDOHLevel:          filter.Match(ff.level),
		County:             filter.Match(ff.county),
		Zip:                filter.Match(ff.zip),
		Plan:               filter.Match(ff.plan),
		Contract:           filter.Match(ff.contract),
		Race:               filter.Match(ff.race),
		RiskBand:           filter.Match(ff.band),
		AgeGroup:           filter.Match(ff.ageGroup),
		Search:             ff.search,
		FocusHighBurden:    ff.focus,
		DistributionBucket: ff.bucket,
	}
}

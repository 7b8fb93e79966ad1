package refdata

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Error codes for configuration loading failures.
const (
	ErrCodeNotFound     = "C001" // Config directory not found
	ErrCodeLoadFailed   = "C002" // CUE load failed
	ErrCodeBuildFailed  = "C003" // CUE build/eval failed
	ErrCodeDecodeFailed = "C004" // Table did not decode into its Go shape
	ErrCodeMissingTable = "C005" // Required table absent or empty
)

// LoadError is a configuration loading failure with a stable code.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads the reference configuration from a directory of CUE files and
// validates it. The directory is loaded as a single CUE instance; tables
// are top-level fields:
//
//	contract_fallbacks:        [...string]
//	risk_bands:                [...string]
//	sdoh_level_order:          [...string]
//	intervention_plans:        {[string]: {title: string, summary: string, actions: [...string]}}
//	curated_intervention_keys: [...string]
//	default_intervention_plan: {title: string, summary: string, actions: [...string]}
//	care_navigators:           [...{id: string, name: string, specialty: string}]
func Load(dir string) (*Config, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config directory not found: %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir, Package: "_"})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return decode(value)
}

func decode(value cue.Value) (*Config, error) {
	cfg := &Config{}

	if err := decodePath(value, "contract_fallbacks", &cfg.ContractFallbacks); err != nil {
		return nil, err
	}
	if err := decodePath(value, "risk_bands", &cfg.RiskBandOrder); err != nil {
		return nil, err
	}
	if err := decodePath(value, "sdoh_level_order", &cfg.SDOHLevelOrder); err != nil {
		return nil, err
	}

	var rawPlans map[string]Plan
	if err := decodePath(value, "intervention_plans", &rawPlans); err != nil {
		return nil, err
	}
	cfg.Playbook = make(map[string]Plan, len(rawPlans))
	for key, plan := range rawPlans {
		folded := FoldKey(key)
		if folded == "" {
			continue
		}
		cfg.Playbook[folded] = plan
	}

	var curated []string
	if err := decodePath(value, "curated_intervention_keys", &curated); err != nil {
		return nil, err
	}
	cfg.CuratedKeys = make([]string, 0, len(curated))
	for _, key := range curated {
		if folded := FoldKey(key); folded != "" {
			cfg.CuratedKeys = append(cfg.CuratedKeys, folded)
		}
	}

	if err := decodePath(value, "default_intervention_plan", &cfg.DefaultPlan); err != nil {
		return nil, err
	}

	var navigators []Navigator
	if err := decodePath(value, "care_navigators", &navigators); err != nil {
		return nil, err
	}
	// Roster entries need both an id and a name to be addressable.
	cfg.Navigators = make([]Navigator, 0, len(navigators))
	for _, nav := range navigators {
		if nav.ID == "" || nav.Name == "" {
			continue
		}
		cfg.Navigators = append(cfg.Navigators, nav)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodePath decodes a top-level table into out. An absent path is not an
// error here; Validate reports it with the table's name afterwards.
func decodePath(value cue.Value, path string, out any) error {
	v := value.LookupPath(cue.ParsePath(path))
	if !v.Exists() {
		return nil
	}
	if err := v.Decode(out); err != nil {
		return &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding %s: %v", path, err)}
	}
	return nil
}

// Package policy holds the tunable classification thresholds used by the
// normalizer and the aggregators. The defaults reproduce the dashboard's
// published banding; deployments can override individual values from a
// YAML file without recompiling.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy is the full set of classification constants.
//
// Risk bands partition a predicted risk score: > HighRiskAbove is "High
// risk", >= ModerateRiskFrom is "Moderate risk", anything lower is "Lower
// risk". Lift levels partition SDOH lift the same way. Tertile cuts are
// only consulted by the ZIP baseline fallback (see aggregate.Baseline) and
// are a presentation policy, not a correctness constraint.
type Policy struct {
	HighRiskAbove    float64 `yaml:"high_risk_above"`
	ModerateRiskFrom float64 `yaml:"moderate_risk_from"`

	ExtremeLiftAbove     float64 `yaml:"extreme_lift_above"`
	SignificantLiftAbove float64 `yaml:"significant_lift_above"`

	// HighLiftZip marks a ZIP as high-lift in the summary rollup.
	HighLiftZip float64 `yaml:"high_lift_zip"`

	// Tertile cut fractions for the baseline fallback, in (0, 1).
	TertileLow  float64 `yaml:"tertile_low"`
	TertileHigh float64 `yaml:"tertile_high"`
}

// Default returns the built-in policy.
func Default() Policy {
	return Policy{
		HighRiskAbove:        2.3,
		ModerateRiskFrom:     1.8,
		ExtremeLiftAbove:     0.5,
		SignificantLiftAbove: 0.2,
		HighLiftZip:          0.2,
		TertileLow:           0.33,
		TertileHigh:          0.66,
	}
}

// Load reads a YAML policy file layered over Default. Missing keys keep
// their default values. An unreadable or malformed file is an error; a
// caller that wants best-effort behavior should check for the file first.
func Load(path string) (Policy, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("policy file %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects orderings that would make the bands overlap.
func (p Policy) Validate() error {
	if p.ModerateRiskFrom > p.HighRiskAbove {
		return fmt.Errorf("moderate_risk_from (%v) exceeds high_risk_above (%v)", p.ModerateRiskFrom, p.HighRiskAbove)
	}
	if p.SignificantLiftAbove > p.ExtremeLiftAbove {
		return fmt.Errorf("significant_lift_above (%v) exceeds extreme_lift_above (%v)", p.SignificantLiftAbove, p.ExtremeLiftAbove)
	}
	if p.TertileLow <= 0 || p.TertileHigh >= 1 || p.TertileLow >= p.TertileHigh {
		return fmt.Errorf("tertile cuts must satisfy 0 < low < high < 1, got %v and %v", p.TertileLow, p.TertileHigh)
	}
	return nil
}

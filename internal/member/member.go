// Package member defines the canonical member record and the normalization
// rules that turn a raw tabular row into one. Normalization is pure: the
// same row and policy always produce the same record, and no input can make
// it fail.
package member

import (
	"strings"
	"unicode"
)

// Raw is one inbound row: column name to cell text. Rows arriving from the
// remote query path are stringified before they reach this package, so a
// single representation covers both origins.
type Raw map[string]string

// Member is a normalized per-individual record. Numeric fields are nil when
// the source cell was empty or unparseable; string fields default to "".
//
// Idx is the record's position in the load order and identifies the member
// for UI selection. It is stable for the session.
type Member struct {
	Idx int `json:"_idx"`

	ID   string `json:"member"`
	Name string `json:"member_name"`

	Age      *float64 `json:"age"`
	Sex      string   `json:"sex"`
	AgeGroup string   `json:"age_group"`
	AgeClass string   `json:"age_class"`
	Gender   string   `json:"gender"`
	Race     string   `json:"race"`

	HP         string `json:"hp"`
	HPName     string `json:"hp_name"`
	PCP        string `json:"pcp_x"`
	GroupName  string `json:"grp_name"`
	Plan       string `json:"plan"`
	Contract   string `json:"contract"`
	Segment    string `json:"segment"`
	Agent      string `json:"agent"`
	Address    string `json:"address"`
	County     string `json:"county"`
	State      string `json:"state"`
	CountyName string `json:"county_clean"`
	CountyFIPS string `json:"county_fips"`
	Zip        string `json:"zip"`

	Compliance      *float64 `json:"compliance"`
	Compliance2023  *float64 `json:"compliance_2023"`
	ComplianceHbA1c *float64 `json:"compliance_hba1c"`
	ComplianceBCS   *float64 `json:"compliancebcs"`
	PCPVisits       *float64 `json:"pcp_visits"`
	NoIPVisits2023  *float64 `json:"no_ip_visits_2023"`
	A1cValue        *float64 `json:"a1c_value"`
	LDLValue        *float64 `json:"ldl_value"`
	BMI             *float64 `json:"bmi"`
	BPSystolic      *float64 `json:"bp_systolic"`
	BPDiastolic     *float64 `json:"bp_diastolic"`

	IncomeWeightedIndex  *float64 `json:"income_weighted_index"`
	IncomeInequality     *float64 `json:"income_inequality"`
	PerCapitaIncome      *float64 `json:"per_capita_income"`
	EducationScore       *float64 `json:"education_score"`
	LaborMarketHardship  *float64 `json:"labor_market_hardship"`
	HousingInstability   *float64 `json:"housing_instability"`
	CarAccessRisk        *float64 `json:"car_access_risk"`
	MeanCommute          *float64 `json:"mean_commute"`
	CommuteHardshipIndex *float64 `json:"commute_hardship_index"`
	TransitDependency    *float64 `json:"transit_dependency"`
	FoodInsecurityIndex  *float64 `json:"food_insecurity_index"`
	HealthAccessScore    *float64 `json:"health_access_score"`
	DigitalDisadvantage  *float64 `json:"digital_disadvantage"`
	SocialIsolationIndex *float64 `json:"social_isolation_index"`
	EnvironmentalBurden  *float64 `json:"environmental_burden"`
	RuralityIndex        *float64 `json:"rurality_index"`

	RiskScore    *float64 `json:"risk_score_x"`
	RiskFull     *float64 `json:"risk_full"`
	RiskNoSDOH   *float64 `json:"risk_no_sdoh"`
	SDOHLift     *float64 `json:"sdoh_lift"`
	SDOHLevel    string   `json:"sdoh_lift_level"`
	RiskBand     string   `json:"risk_band"`

	SDOHDrivers    [5]Driver `json:"-"`
	NonSDOHDrivers [5]Driver `json:"-"`

	// Extra retains columns the normalizer does not model (engagement
	// flags, channel hints). Rule evaluation and channel derivation read
	// from here with the tolerant parse.
	Extra map[string]string `json:"-"`
}

// Driver is one ranked risk driver: a name and its contribution value.
type Driver struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

// Drivers returns the member's ranked drivers with empty slots removed.
// kind selects the SDOH or non-SDOH list.
func (m *Member) Drivers(kind DriverKind) []Driver {
	var src [5]Driver
	switch kind {
	case DriverSDOH:
		src = m.SDOHDrivers
	case DriverNonSDOH:
		src = m.NonSDOHDrivers
	}
	out := make([]Driver, 0, 5)
	for _, d := range src {
		if d.Name == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}

// PrimaryDriver returns the name of the top-ranked SDOH driver, or "".
func (m *Member) PrimaryDriver() string {
	return m.SDOHDrivers[0].Name
}

// DriverKind selects one of the two ranked driver lists.
type DriverKind int

const (
	DriverSDOH DriverKind = iota
	DriverNonSDOH
)

// PrettyDriverName turns a snake_case driver key into a display label:
// underscores become spaces and each word is title-cased.
func PrettyDriverName(name string) string {
	if name == "" {
		return ""
	}
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

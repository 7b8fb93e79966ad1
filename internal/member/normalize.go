package member

import (
	"fmt"
	"strings"

	"github.com/lanternhealth/sdohscope/internal/policy"
)

// Normalize converts a raw row into a Member. It never fails: unparseable
// numerics become nil, absent strings become "". idx becomes the record's
// stable session index.
//
// The contract field is NOT backfilled here; that is the dataset loader's
// job because the round-robin assignment depends on load order across rows.
func Normalize(row Raw, idx int, pol policy.Policy) Member {
	get := func(key string) string { return strings.TrimSpace(row[key]) }
	num := func(key string) *float64 { return ParseNumeric(row[key]) }

	age := num("age")
	riskFull := num("risk_full")
	riskNoSDOH := num("risk_no_sdoh")
	lift := num("sdoh_lift")
	if lift == nil && riskFull != nil && riskNoSDOH != nil {
		v := *riskFull - *riskNoSDOH
		lift = &v
	}

	level := get("sdoh_lift_level")
	if level == "" {
		level = LiftLevel(lift, pol)
	}

	m := Member{
		Idx:  idx,
		ID:   get("member"),
		Name: get("member_name"),

		Age:      age,
		Sex:      get("sex"),
		AgeGroup: AgeGroup(age),
		AgeClass: get("age_class"),
		Gender:   get("gender"),
		Race:     get("race"),

		HP:         get("hp"),
		HPName:     get("hp_name"),
		PCP:        get("pcp_x"),
		GroupName:  get("grp_name"),
		Plan:       get("plan"),
		Contract:   get("contract"),
		Segment:    get("segment"),
		Agent:      get("agent"),
		Address:    get("address"),
		County:     get("county"),
		State:      get("state"),
		CountyName: get("county_clean"),
		CountyFIPS: get("county_fips"),
		Zip:        NormalizeZip(row["zip"]),

		Compliance:      num("compliance"),
		Compliance2023:  num("compliance_2023"),
		ComplianceHbA1c: num("compliance_hba1c"),
		ComplianceBCS:   num("compliancebcs"),
		PCPVisits:       num("pcp_visits"),
		NoIPVisits2023:  num("no_ip_visits_2023"),
		A1cValue:        num("a1c_value"),
		LDLValue:        num("ldl_value"),
		BMI:             num("bmi"),
		BPSystolic:      num("bp_systolic"),
		BPDiastolic:     num("bp_diastolic"),

		IncomeWeightedIndex:  num("income_weighted_index"),
		IncomeInequality:     num("income_inequality"),
		PerCapitaIncome:      num("per_capita_income"),
		EducationScore:       num("education_score"),
		LaborMarketHardship:  num("labor_market_hardship"),
		HousingInstability:   num("housing_instability"),
		CarAccessRisk:        num("car_access_risk"),
		MeanCommute:          num("mean_commute"),
		CommuteHardshipIndex: num("commute_hardship_index"),
		TransitDependency:    num("transit_dependency"),
		FoodInsecurityIndex:  num("food_insecurity_index"),
		HealthAccessScore:    num("health_access_score"),
		DigitalDisadvantage:  num("digital_disadvantage"),
		SocialIsolationIndex: num("social_isolation_index"),
		EnvironmentalBurden:  num("environmental_burden"),
		RuralityIndex:        num("rurality_index"),

		RiskScore:  num("risk_score_x"),
		RiskFull:   riskFull,
		RiskNoSDOH: riskNoSDOH,
		SDOHLift:   lift,
		SDOHLevel:  level,
	}
	m.RiskBand = RiskBand(riskFull, pol)

	for i := 0; i < 5; i++ {
		m.SDOHDrivers[i] = Driver{
			Name:  get(fmt.Sprintf("sdoh_driver_%d", i+1)),
			Value: num(fmt.Sprintf("sdoh_driver_%d_value", i+1)),
		}
		m.NonSDOHDrivers[i] = Driver{
			Name:  get(fmt.Sprintf("nonsdoh_driver_%d", i+1)),
			Value: num(fmt.Sprintf("nonsdoh_driver_%d_value", i+1)),
		}
	}

	m.Extra = extraColumns(row)
	return m
}

// extraColumns copies the columns Normalize does not map into fixed fields.
func extraColumns(row Raw) map[string]string {
	extra := make(map[string]string)
	for k, v := range row {
		if _, known := knownColumns[k]; known {
			continue
		}
		extra[k] = v
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

var knownColumns = func() map[string]struct{} {
	cols := []string{
		"member", "member_name", "age", "sex", "age_class", "gender", "race",
		"hp", "hp_name", "pcp_x", "grp_name", "plan", "contract", "segment",
		"agent", "address", "county", "state", "county_clean", "county_fips",
		"zip",
		"compliance", "compliance_2023", "compliance_hba1c", "compliancebcs",
		"pcp_visits", "no_ip_visits_2023", "a1c_value", "ldl_value", "bmi",
		"bp_systolic", "bp_diastolic",
		"income_weighted_index", "income_inequality", "per_capita_income",
		"education_score", "labor_market_hardship", "housing_instability",
		"car_access_risk", "mean_commute", "commute_hardship_index",
		"transit_dependency", "food_insecurity_index", "health_access_score",
		"digital_disadvantage", "social_isolation_index",
		"environmental_burden", "rurality_index",
		"risk_score_x", "risk_full", "risk_no_sdoh", "sdoh_lift",
		"sdoh_lift_level",
	}
	for i := 1; i <= 5; i++ {
		cols = append(cols,
			fmt.Sprintf("sdoh_driver_%d", i),
			fmt.Sprintf("sdoh_driver_%d_value", i),
			fmt.Sprintf("nonsdoh_driver_%d", i),
			fmt.Sprintf("nonsdoh_driver_%d_value", i),
		)
	}
	m := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		m[c] = struct{}{}
	}
	return m
}()

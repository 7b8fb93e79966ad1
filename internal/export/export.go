package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lanternhealth/sdohscope/internal/aggregate"
	"github.com/lanternhealth/sdohscope/internal/campaign"
	"github.com/lanternhealth/sdohscope/internal/intervention"
	"github.com/lanternhealth/sdohscope/internal/member"
	"github.com/lanternhealth/sdohscope/internal/refdata"
)

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MemberCohort writes the filtered member list. describe resolves each
// member's intervention title and may be nil.
func MemberCohort(w io.Writer, members []member.Member, describe func(*member.Member) string) error {
	header := []string{
		"Member ID", "Member Name", "Age", "Gender", "Race", "Plan",
		"Contract", "County", "State", "ZIP",
		"Risk With SDOH", "Risk No SDOH", "SDOH Lift", "SDOH Level",
		"Preferred Intervention",
	}
	rows := make([][]string, 0, len(members))
	for i := range members {
		m := &members[i]
		preferred := ""
		if describe != nil {
			preferred = describe(m)
		}
		rows = append(rows, []string{
			m.ID, m.Name, FmtNumber(m.Age, 0), m.Gender, m.Race, m.Plan,
			m.Contract, m.County, m.State, m.Zip,
			FmtNumber(m.RiskFull, 3), FmtNumber(m.RiskNoSDOH, 3),
			FmtNumber(m.SDOHLift, 3), m.SDOHLevel,
			preferred,
		})
	}
	return writeAll(w, header, rows)
}

// ZipSummary writes the per-zip aggregation rows.
func ZipSummary(w io.Writer, rows []aggregate.ZipRow) error {
	header := []string{
		"ZIP", "County", "State", "Members", "Risk Zone",
		"Avg Risk With SDOH", "Avg SDOH Lift", "% High/Extreme",
	}
	out := make([][]string, 0, len(rows))
	for _, z := range rows {
		out = append(out, []string{
			z.Zip, z.County, z.State, strconv.Itoa(z.Members), z.RiskZone,
			FmtNumber(z.AvgRisk, 3), FmtNumber(z.AvgLift, 3), FmtPercent(z.PctHigh, 1),
		})
	}
	return writeAll(w, header, out)
}

// ContractSummary writes the per-contract aggregation rows.
func ContractSummary(w io.Writer, rows []aggregate.ContractRow) error {
	header := []string{"Contract", "Members", "Avg Risk", "Avg Lift", "% High/Extreme"}
	out := make([][]string, 0, len(rows))
	for _, c := range rows {
		out = append(out, []string{
			c.Contract, strconv.Itoa(c.Members),
			FmtNumber(c.AvgRisk, 3), FmtNumber(c.AvgLift, 3), FmtPercent(c.PctHigh, 1),
		})
	}
	return writeAll(w, header, out)
}

// CampaignRoster writes the enrolled members of a campaign roster.
// Non-enrolled eligible rows are skipped.
func CampaignRoster(w io.Writer, rows []campaign.RosterRow) error {
	header := []string{
		"Member ID", "Member Name", "ZIP", "Risk Level",
		"SDOH Lift", "SDOH Level", "Source", "Intervention", "Channel",
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if !r.Enrolled {
			continue
		}
		out = append(out, []string{
			r.MemberID, r.MemberName, r.Zip, r.RiskClass,
			FmtNumber(r.SDOHLift, 3), r.SDOHLevel, r.Source,
			r.PreferredIntervention, r.Channel,
		})
	}
	return writeAll(w, header, out)
}

// MemberDetail writes one member's full record including the ranked
// driver summaries.
func MemberDetail(w io.Writer, m *member.Member) error {
	header := []string{
		"Member ID", "Member Name", "Age", "Gender", "Race", "Plan",
		"County", "State", "ZIP",
		"Risk With SDOH", "Risk No SDOH", "SDOH Lift", "SDOH Level",
		"Top SDOH Drivers", "Top Non-SDOH Drivers",
	}
	row := []string{
		m.ID, m.Name, FmtNumber(m.Age, 0), m.Gender, m.Race, m.Plan,
		m.County, m.State, m.Zip,
		FmtNumber(m.RiskFull, 3), FmtNumber(m.RiskNoSDOH, 3),
		FmtNumber(m.SDOHLift, 3), m.SDOHLevel,
		driverSummary(m, member.DriverSDOH), driverSummary(m, member.DriverNonSDOH),
	}
	return writeAll(w, header, [][]string{row})
}

func driverSummary(m *member.Member, kind member.DriverKind) string {
	parts := make([]string, 0, 5)
	for _, d := range m.Drivers(kind) {
		parts = append(parts, fmt.Sprintf("%s (%s)", d.Name, FmtNumber(d.Value, 4)))
	}
	return strings.Join(parts, " | ")
}

// InterventionDetail writes one member's resolved intervention record:
// the recommended plan from the primary driver, any override plan, the
// assigned navigator, and the scheduled outreach date.
func InterventionDetail(
	w io.Writer,
	cfg *refdata.Config,
	m *member.Member,
	planOverrides map[string]string,
	navigatorAssignments map[string]string,
	outreachSchedules map[string]string,
) error {
	defaultKey := refdata.FoldKey(m.PrimaryDriver())
	recommended := intervention.PlanByKey(cfg, defaultKey)

	overrideKey := planOverrides[m.ID]
	var overridePlan *refdata.Plan
	if overrideKey != "" {
		plan := intervention.PlanByKey(cfg, overrideKey)
		overridePlan = &plan
	}

	navigator := cfg.NavigatorByID(navigatorAssignments[m.ID])
	outreachDate := outreachSchedules[m.ID]

	row := []string{
		m.ID, m.Name, m.PrimaryDriver(),
		recommended.Title, recommended.Summary, strings.Join(recommended.Actions, " | "),
		overrideKey, "", "",
		"", "", "",
		outreachDate, FmtDateHuman(outreachDate),
	}
	if overridePlan != nil {
		row[7] = overridePlan.Title
		row[8] = strings.Join(overridePlan.Actions, " | ")
	}
	if navigator != nil {
		row[9] = navigator.ID
		row[10] = navigator.Name
		row[11] = navigator.Specialty
	}

	header := []string{
		"Member ID", "Member Name", "Primary SDOH Driver",
		"Recommended Plan", "Recommended Summary", "Recommended Actions",
		"Override Plan Key", "Override Plan", "Override Actions",
		"Navigator ID", "Navigator Name", "Navigator Specialty",
		"Outreach Date (ISO)", "Outreach Date",
	}
	return writeAll(w, header, [][]string{row})
}

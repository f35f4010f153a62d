// Package output renders valuation results for the terminal and for export.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/constants"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/format"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/roi"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/scaling"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report is one valuation run: the project ROI and, when scaling was
// requested, the multi-organization projection.
type Report struct {
	Name     string          `json:"name,omitempty"`
	ROI      roi.Metrics     `json:"roi"`
	Scaled   *scaling.Result `json:"scaled,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Write renders report to w in the given output format.
func Write(w io.Writer, outputFormat string, report Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, report)
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, report Report) error {
	p := message.NewPrinter(language.Swedish)
	m := report.ROI

	name := report.Name
	if name == "" {
		name = "project"
	}

	lines := []string{
		fmt.Sprintf("--- ROI for %s ---", name),
		fmt.Sprintf("Total investment     | %s", format.Currency(m.TotalInvestment)),
		fmt.Sprintf("Total value          | %s", format.Currency(m.TotalMonetaryValue)),
		fmt.Sprintf("  Financial          | %s", format.Currency(m.TotalFinancialEffects)),
		fmt.Sprintf("  Redistribution     | %s", format.Currency(m.TotalRedistributionEffects)),
		fmt.Sprintf("  Qualitative        | %s", format.Currency(m.TotalQualitativeEffects)),
		fmt.Sprintf("Annual value         | %s", format.Currency(m.TotalAnnualMonetaryValue)),
		p.Sprintf("Economic ROI         | %.1f %%", m.EconomicROI),
		p.Sprintf("Qualitative ROI      | %.1f %%", m.QualitativeROI),
		p.Sprintf("Combined ROI         | %.1f %%", m.CombinedROI),
		p.Sprintf("Payback period       | %.1f years", m.PaybackPeriod),
	}

	if len(m.Summary.Dimensions) > 0 {
		lines = append(lines, "", "Dimension            | Value | Qualitative ROI | Effects")
		for _, dim := range m.Summary.Dimensions {
			v := m.DimensionBreakdown[dim]
			lines = append(lines, p.Sprintf("%-20s | %s | %.1f %% | %d", dim, format.Currency(v.TotalValue), v.QualitativeROI, v.EffectCount))
		}
	}

	if s := report.Scaled; s != nil {
		lines = append(lines,
			"",
			fmt.Sprintf("--- Scaled to %d organizations (%d adopting) ---", s.Scaling.Orgs, s.Scaling.AdoptedOrgs),
			fmt.Sprintf("Total benefit        | %s", format.Currency(s.KPIs.TotalBenefit)),
			fmt.Sprintf("Total cost           | %s", format.Currency(s.KPIs.TotalCost)),
			fmt.Sprintf("Benefit per org      | %s", format.Currency(s.KPIs.BenefitPerOrg)),
			p.Sprintf("Economic ROI         | %.1f %%", s.KPIs.EconomicROI),
			p.Sprintf("Payback              | %.1f years", s.KPIs.PaybackYears),
			fmt.Sprintf("Realistic            | %t", s.Validation.IsRealistic),
		)
		for _, warning := range s.Validation.Warnings {
			lines = append(lines, "! "+warning)
		}
	}

	for _, warning := range report.Warnings {
		lines = append(lines, "! "+warning)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs section,metric,value rows.
func CsvFormat(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	write := func(section, metric string, value float64) {
		_ = cw.Write([]string{section, metric, strconv.FormatFloat(value, 'f', 2, 64)})
	}

	_ = cw.Write([]string{"section", "metric", "value"})

	m := report.ROI
	write("roi", "totalInvestment", m.TotalInvestment)
	write("roi", "totalMonetaryValue", m.TotalMonetaryValue)
	write("roi", "totalAnnualMonetaryValue", m.TotalAnnualMonetaryValue)
	write("roi", "totalFinancialEffects", m.TotalFinancialEffects)
	write("roi", "totalRedistributionEffects", m.TotalRedistributionEffects)
	write("roi", "totalQualitativeEffects", m.TotalQualitativeEffects)
	write("roi", "economicROI", m.EconomicROI)
	write("roi", "qualitativeROI", m.QualitativeROI)
	write("roi", "combinedROI", m.CombinedROI)
	write("roi", "paybackPeriod", m.PaybackPeriod)

	for _, dim := range m.Summary.Dimensions {
		write("dimension", dim, m.DimensionBreakdown[dim].TotalValue)
	}

	if s := report.Scaled; s != nil {
		write("scaled", "adoptedOrgs", float64(s.Scaling.AdoptedOrgs))
		write("scaled", "totalBenefit", s.KPIs.TotalBenefit)
		write("scaled", "totalCost", s.KPIs.TotalCost)
		write("scaled", "economicROI", s.KPIs.EconomicROI)
		write("scaled", "paybackYears", s.KPIs.PaybackYears)
		write("scaled", "benefitPerOrg", s.KPIs.BenefitPerOrg)
		for _, warning := range s.Validation.Warnings {
			_ = cw.Write([]string{"warning", "scaled", warning})
		}
	}
	for _, warning := range report.Warnings {
		_ = cw.Write([]string{"warning", "input", warning})
	}

	cw.Flush()
	return cw.Error()
}

// CsvString returns the CSV representation of report.
func CsvString(report Report) string {
	var buf bytes.Buffer
	_ = CsvFormat(&buf, report)
	return buf.String()
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

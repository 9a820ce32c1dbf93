package utils

import (
	"fmt"
	"strings"

	"bundesanzeiger/pkg/models"
)

// fieldLabels maps extraction keys to the labels shown to users.
var fieldLabels = map[string]string{
	"net_profit":         "Net profit",
	"mitarbeiter":        "Employees",
	"umsatz":             "Revenue",
	"gewinnvortrag":      "Profit carried forward",
	"bilanzsumme_total":  "Total assets",
	"schulden":           "Liabilities",
	"eigenkapital":       "Equity",
	"guv_zinsen":         "Interest (net)",
	"guv_steuern":        "Taxes",
	"guv_abschreibungen": "Depreciation",
	"cash":               "Cash",
	"dividende":          "Dividend",
}

// FormatEUR renders a monetary amount with German thousand separators,
// e.g. -1234567.5 -> "-1.234.567,50 €".
func FormatEUR(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := int64(v)
	cents := int64((v-float64(whole))*100 + 0.5)
	if cents == 100 {
		whole++
		cents = 0
	}

	digits := fmt.Sprintf("%d", whole)
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(d)
	}

	out := fmt.Sprintf("%s,%02d €", sb.String(), cents)
	if neg {
		return "-" + out
	}
	return out
}

// FormatCount renders a plain count with German thousand separators.
func FormatCount(v float64) string {
	s := FormatEUR(v)
	s = strings.TrimSuffix(s, " €")
	if i := strings.LastIndex(s, ","); i >= 0 {
		s = s[:i]
	}
	return s
}

// FormatAnalyzeResult renders an analyze result as a short markdown
// summary for the CLI and the stdio tool server.
func FormatAnalyzeResult(res *models.AnalyzeResult) string {
	var sb strings.Builder

	if !res.Found {
		msg := res.Message
		if msg == "" {
			msg = res.Error
		}
		fmt.Fprintf(&sb, "No reports found for %s.", res.CompanyName)
		if msg != "" {
			fmt.Fprintf(&sb, "\n%s", msg)
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "## Financial information for %s\n\n", res.CompanyName)
	if res.Date != "" {
		fmt.Fprintf(&sb, "- Report date: %s\n", res.Date)
	}
	if res.ReportName != "" {
		fmt.Fprintf(&sb, "- Report: %s\n", res.ReportName)
	}
	if res.IsCached {
		sb.WriteString("- Source: cached\n")
	} else {
		sb.WriteString("- Source: fresh\n")
	}

	if res.FinancialData == nil || !res.FinancialData.HasData() {
		if res.Message != "" {
			fmt.Fprintf(&sb, "\n%s\n", res.Message)
		} else {
			sb.WriteString("\nNo financial data could be extracted.\n")
		}
		return CleanMarkdown(sb.String())
	}

	sb.WriteString("\n")
	for _, name := range models.FieldNames {
		slot := res.FinancialData.Field(name)
		if slot == nil || *slot == nil {
			continue
		}
		label := fieldLabels[name]
		if name == "mitarbeiter" {
			fmt.Fprintf(&sb, "- %s: %s\n", label, FormatCount(**slot))
		} else {
			fmt.Fprintf(&sb, "- %s: %s\n", label, FormatEUR(**slot))
		}
	}

	if r := res.Ratios; r != nil {
		sb.WriteString("\n### Ratios\n\n")
		writeRatio(&sb, "Equity ratio", r.EquityRatio)
		writeRatio(&sb, "Debt to assets", r.DebtToAssets)
		writeRatio(&sb, "Return on assets", r.ReturnOnAssets)
		writeRatio(&sb, "Profit margin", r.ProfitMargin)
	}

	return CleanMarkdown(sb.String())
}

// FormatSearchResult renders a search result as a markdown listing.
func FormatSearchResult(res *models.SearchResult) string {
	var sb strings.Builder

	if !res.Found {
		msg := res.Message
		if msg == "" {
			msg = res.Error
		}
		fmt.Fprintf(&sb, "No reports found for %s.", res.SearchedName)
		if msg != "" {
			fmt.Fprintf(&sb, "\n%s", msg)
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "## Reports for %q\n", res.SearchedName)
	if res.IsCached {
		sb.WriteString("\n- Source: cached\n")
	}
	for _, c := range res.Companies {
		fmt.Fprintf(&sb, "\n### %s (%d reports)\n\n", c.Name, c.ReportsCount)
		for _, rep := range c.AllReports {
			if rep.Date != nil {
				fmt.Fprintf(&sb, "- %s (%s)\n", rep.Name, rep.Date.Format("2006-01-02"))
			} else {
				fmt.Fprintf(&sb, "- %s\n", rep.Name)
			}
		}
		if len(c.AllReports) == 0 && c.LatestReport != "" {
			fmt.Fprintf(&sb, "- %s\n", c.LatestReport)
		}
	}

	return CleanMarkdown(sb.String())
}

func writeRatio(sb *strings.Builder, label string, v *float64) {
	if v == nil {
		return
	}
	fmt.Fprintf(sb, "- %s: %.1f%%\n", label, *v*100)
}

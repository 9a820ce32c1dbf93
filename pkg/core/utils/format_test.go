package utils

import (
	"strings"
	"testing"

	"bundesanzeiger/pkg/models"
)

func TestFormatEUR(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0,00 €"},
		{1234567.5, "1.234.567,50 €"},
		{-50000, "-50.000,00 €"},
		{999.999, "1.000,00 €"},
		{42, "42,00 €"},
	}
	for _, tt := range tests {
		if got := FormatEUR(tt.in); got != tt.want {
			t.Errorf("FormatEUR(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(1234); got != "1.234" {
		t.Errorf("FormatCount(1234) = %q, want %q", got, "1.234")
	}
	if got := FormatCount(42); got != "42" {
		t.Errorf("FormatCount(42) = %q, want %q", got, "42")
	}
}

func TestFormatAnalyzeResult(t *testing.T) {
	umsatz := 1200000.0
	employees := 42.0
	res := &models.AnalyzeResult{
		Found:       true,
		CompanyName: "Musterfirma GmbH",
		Date:        "2023-03-18",
		ReportName:  "Jahresabschluss zum 31.12.2022",
		FinancialData: &models.FinancialFields{
			Umsatz:      &umsatz,
			Mitarbeiter: &employees,
		},
	}

	out := FormatAnalyzeResult(res)
	for _, want := range []string{
		"Musterfirma GmbH",
		"2023-03-18",
		"1.200.000,00 €",
		"Employees: 42",
		"Source: fresh",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatAnalyzeResultNotFound(t *testing.T) {
	out := FormatAnalyzeResult(&models.AnalyzeResult{
		CompanyName: "Gibt Es Nicht GmbH",
		Message:     "no reports",
	})
	if !strings.Contains(out, "No reports found") {
		t.Errorf("Unexpected output %q", out)
	}
}

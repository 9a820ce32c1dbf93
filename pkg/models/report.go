package models

import (
	"time"
)

// FilingRecord is one disclosure entry discovered on a Bundesanzeiger
// results page. Content and Financials are filled in lazily by later
// pipeline stages; a record with an empty DetailLink can never acquire
// content.
type FilingRecord struct {
	Date        *time.Time       `json:"date"`
	Title       string           `json:"name"`
	DetailLink  string           `json:"link"`
	CompanyName string           `json:"company"`
	Content     string           `json:"report,omitempty"`
	Financials  *FinancialFields `json:"financial_data,omitempty"`
}

// DateString renders the filing date as an ISO date, or "" when unknown.
func (r *FilingRecord) DateString() string {
	if r.Date == nil {
		return ""
	}
	return r.Date.Format("2006-01-02")
}

// FinancialFields is the extraction contract: every field is optional and
// nil means "not found in the report", never zero. Monetary values are in
// EUR; Mitarbeiter is a plain head count. Sign carries meaning: NetProfit
// and Gewinnvortrag are negative for losses, GuvZinsen is negative when
// interest is a net expense.
type FinancialFields struct {
	NetProfit        *float64 `json:"net_profit"`
	Mitarbeiter      *float64 `json:"mitarbeiter"`
	Umsatz           *float64 `json:"umsatz"`
	Gewinnvortrag    *float64 `json:"gewinnvortrag"`
	BilanzsummeTotal *float64 `json:"bilanzsumme_total"`
	Schulden         *float64 `json:"schulden"`
	Eigenkapital     *float64 `json:"eigenkapital"`
	GuvZinsen        *float64 `json:"guv_zinsen"`
	GuvSteuern       *float64 `json:"guv_steuern"`
	GuvAbschreibungen *float64 `json:"guv_abschreibungen"`
	Cash             *float64 `json:"cash"`
	Dividende        *float64 `json:"dividende"`
}

// FieldNames lists the JSON keys of the extraction contract in a stable
// order. The extractor and both cache backends iterate this list so the
// schema lives in exactly one place.
var FieldNames = []string{
	"net_profit",
	"mitarbeiter",
	"umsatz",
	"gewinnvortrag",
	"bilanzsumme_total",
	"schulden",
	"eigenkapital",
	"guv_zinsen",
	"guv_steuern",
	"guv_abschreibungen",
	"cash",
	"dividende",
}

// Field returns a pointer to the slot for the given JSON key, or nil for
// an unknown key.
func (f *FinancialFields) Field(name string) **float64 {
	switch name {
	case "net_profit":
		return &f.NetProfit
	case "mitarbeiter":
		return &f.Mitarbeiter
	case "umsatz":
		return &f.Umsatz
	case "gewinnvortrag":
		return &f.Gewinnvortrag
	case "bilanzsumme_total":
		return &f.BilanzsummeTotal
	case "schulden":
		return &f.Schulden
	case "eigenkapital":
		return &f.Eigenkapital
	case "guv_zinsen":
		return &f.GuvZinsen
	case "guv_steuern":
		return &f.GuvSteuern
	case "guv_abschreibungen":
		return &f.GuvAbschreibungen
	case "cash":
		return &f.Cash
	case "dividende":
		return &f.Dividende
	}
	return nil
}

// HasData reports whether at least one field is non-nil. All-null results
// are never admitted to the query cache.
func (f *FinancialFields) HasData() bool {
	if f == nil {
		return false
	}
	for _, name := range FieldNames {
		if slot := f.Field(name); slot != nil && *slot != nil {
			return true
		}
	}
	return false
}

// ReportSummary is one filing in a search listing.
type ReportSummary struct {
	Name string     `json:"name"`
	Date *time.Time `json:"date"`
	URL  string     `json:"url"`
}

// CompanySummary groups the filings found for one company name.
// HasFinancialData stays nil until an analyze run has looked at the
// company's reports.
type CompanySummary struct {
	Name             string          `json:"name"`
	ReportsCount     int             `json:"reports_count"`
	LatestReport     string          `json:"latest_report"`
	LatestReportDate *time.Time      `json:"latest_report_date"`
	AllReports       []ReportSummary `json:"all_reports,omitempty"`
	HasFinancialData *bool           `json:"has_financial_data"`
}

// SearchResult is the response shape of the search operation.
type SearchResult struct {
	Found          bool             `json:"found"`
	SearchedName   string           `json:"searched_name"`
	IsCached       bool             `json:"is_cached"`
	CompaniesCount int              `json:"companies_count,omitempty"`
	Companies      []CompanySummary `json:"companies,omitempty"`
	Message        string           `json:"message,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// AnalyzeResult is the response shape of the analyze operation.
type AnalyzeResult struct {
	Found         bool             `json:"found"`
	CompanyName   string           `json:"company_name"`
	Date          string           `json:"date,omitempty"`
	ReportName    string           `json:"report_name,omitempty"`
	FinancialData *FinancialFields `json:"financial_data,omitempty"`
	Ratios        *Ratios          `json:"ratios,omitempty"`
	IsCached      bool             `json:"is_cached"`
	Message       string           `json:"message,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// Ratios holds figures derived from extracted fields. A ratio is nil
// whenever one of its inputs is missing.
type Ratios struct {
	EquityRatio   *float64 `json:"equity_ratio,omitempty"`
	DebtToAssets  *float64 `json:"debt_to_assets,omitempty"`
	ReturnOnAssets *float64 `json:"return_on_assets,omitempty"`
	ProfitMargin  *float64 `json:"profit_margin,omitempty"`
}

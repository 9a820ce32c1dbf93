// Package pipeline wires the search, fetch, extraction and cache
// stages into the two user-facing operations: search for a company's
// filings, and analyze the newest filing into structured figures.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bundesanzeiger/pkg/core/anzeiger"
	"bundesanzeiger/pkg/core/cache"
	"bundesanzeiger/pkg/core/calc"
	"bundesanzeiger/pkg/core/extract"
	"bundesanzeiger/pkg/models"
)

// Bootstrapper establishes a search context and returns the results
// page for a query.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, query string) (*anzeiger.Session, string, error)
}

// Fetcher retrieves the textual content of one filing.
type Fetcher interface {
	Fetch(ctx context.Context, record *models.FilingRecord, originalQuery string) (string, error)
}

// Extractor turns report text into structured financial fields.
type Extractor interface {
	Extract(ctx context.Context, text string) (*models.FinancialFields, error)
}

// Orchestrator runs the end-to-end pipeline. The cache store is
// consulted before any network work and updated after successful
// extraction.
type Orchestrator struct {
	sessions  Bootstrapper
	fetcher   Fetcher
	extractor Extractor
	store     cache.Store
	threshold int
	log       *slog.Logger
}

// New assembles an orchestrator. A nil store disables caching; a
// threshold of 0 selects the default similarity cutoff.
func New(sessions Bootstrapper, fetcher Fetcher, extractor Extractor, store cache.Store, threshold int, log *slog.Logger) *Orchestrator {
	if threshold <= 0 {
		threshold = cache.DefaultSimilarityThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		sessions:  sessions,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		threshold: threshold,
		log:       log,
	}
}

// Search looks up a company name and returns its disclosed filings
// grouped by the exact company names found. A query-cache hit answers
// without touching the network.
func (o *Orchestrator) Search(ctx context.Context, companyName string) *models.SearchResult {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return &models.SearchResult{
			Found:        false,
			SearchedName: companyName,
			Error:        "company name is required",
		}
	}

	if o.store != nil {
		entry, err := o.store.FindSimilarQuery(ctx, companyName, o.threshold)
		if err != nil {
			o.log.Warn("query cache lookup failed", "query", companyName, "err", err)
		} else if entry != nil {
			return cachedSearchResult(companyName, entry)
		}
	}

	records, err := o.collectRecords(ctx, companyName)
	if err != nil {
		return &models.SearchResult{
			Found:        false,
			SearchedName: companyName,
			Error:        err.Error(),
		}
	}
	if len(records) == 0 {
		return &models.SearchResult{
			Found:        false,
			SearchedName: companyName,
			Message:      fmt.Sprintf("no financial reports found for %q", companyName),
		}
	}

	companies := groupByCompany(records)
	return &models.SearchResult{
		Found:          true,
		SearchedName:   companyName,
		CompaniesCount: len(companies),
		Companies:      companies,
	}
}

// Analyze finds the newest analyzable filing for a company and returns
// its extracted figures. Candidates are tried newest first; a candidate
// whose content cannot be fetched is skipped, and the first one that
// yields content ends the run whether or not extraction found figures.
func (o *Orchestrator) Analyze(ctx context.Context, companyName string) *models.AnalyzeResult {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return &models.AnalyzeResult{
			Found:       false,
			CompanyName: companyName,
			Error:       "company name is required",
		}
	}

	if o.store != nil {
		entry, err := o.store.FindSimilarQuery(ctx, companyName, o.threshold)
		if err != nil {
			o.log.Warn("query cache lookup failed", "query", companyName, "err", err)
		} else if entry != nil {
			return &models.AnalyzeResult{
				Found:         true,
				CompanyName:   entry.CompanyName,
				Date:          entry.ReportDate,
				ReportName:    entry.ReportName,
				FinancialData: entry.Fields,
				Ratios:        calc.ComputeRatios(entry.Fields),
				IsCached:      true,
			}
		}
	}

	records, err := o.collectRecords(ctx, companyName)
	if err != nil {
		return &models.AnalyzeResult{
			Found:       false,
			CompanyName: companyName,
			Error:       err.Error(),
		}
	}
	if len(records) == 0 {
		return &models.AnalyzeResult{
			Found:       false,
			CompanyName: companyName,
			Message:     fmt.Sprintf("no financial reports found for %q", companyName),
		}
	}

	anzeiger.SortNewestFirst(records)

	for _, record := range records {
		content, cachedReport := o.loadContent(ctx, record, companyName)
		if content == "" {
			continue
		}

		fields, extractErr := o.extractor.Extract(ctx, content)
		if extractErr != nil && !errors.Is(extractErr, extract.ErrExtraction) {
			return &models.AnalyzeResult{
				Found:       false,
				CompanyName: companyName,
				Error:       extractErr.Error(),
			}
		}
		if extractErr != nil {
			o.log.Warn("extraction yielded no figures", "report", record.Title, "err", extractErr)
			fields = &models.FinancialFields{}
		}

		if o.store != nil && !cachedReport {
			record.Content = content
			record.Financials = fields
			o.storeOutcome(ctx, companyName, record)
		}

		result := &models.AnalyzeResult{
			Found:         true,
			CompanyName:   record.CompanyName,
			Date:          record.DateString(),
			ReportName:    record.Title,
			FinancialData: fields,
			Ratios:        calc.ComputeRatios(fields),
			IsCached:      cachedReport,
		}
		if !fields.HasData() {
			result.Message = "report found but no financial data could be extracted"
		}
		return result
	}

	return &models.AnalyzeResult{
		Found:       false,
		CompanyName: companyName,
		Message:     fmt.Sprintf("reports exist for %q but none could be retrieved", companyName),
	}
}

// collectRecords runs the search, falling back to capitalization and
// legal-form variants of the name when the literal query comes back
// empty.
func (o *Orchestrator) collectRecords(ctx context.Context, companyName string) ([]*models.FilingRecord, error) {
	records, err := o.searchOnce(ctx, companyName)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return records, nil
	}

	for _, variant := range nameVariants(companyName) {
		o.log.Debug("retrying search with name variant", "variant", variant)
		records, err = o.searchOnce(ctx, variant)
		if err != nil {
			o.log.Warn("variant search failed", "variant", variant, "err", err)
			continue
		}
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, nil
}

func (o *Orchestrator) searchOnce(ctx context.Context, query string) ([]*models.FilingRecord, error) {
	_, page, err := o.sessions.Bootstrap(ctx, query)
	if err != nil {
		return nil, err
	}
	return anzeiger.ParseResults(page, o.log)
}

// loadContent returns the report text for a candidate, preferring the
// report cache over a fresh fetch. A failed fetch returns "" so the
// caller moves on to the next candidate.
func (o *Orchestrator) loadContent(ctx context.Context, record *models.FilingRecord, originalQuery string) (content string, cached bool) {
	if o.store != nil {
		entry, err := o.store.GetReport(ctx, record.CompanyName, record.Title, record.DateString())
		if err != nil {
			o.log.Warn("report cache lookup failed", "report", record.Title, "err", err)
		} else if entry != nil && entry.Content != "" {
			return entry.Content, true
		}
	}

	content, err := o.fetcher.Fetch(ctx, record, originalQuery)
	if err != nil {
		o.log.Warn("skipping unfetchable report", "report", record.Title, "err", err)
		return "", false
	}
	return content, false
}

// storeOutcome persists a fetched report and, when extraction found
// figures, the query-level result. Cache failures are logged, never
// surfaced.
func (o *Orchestrator) storeOutcome(ctx context.Context, query string, record *models.FilingRecord) {
	err := o.store.StoreReport(ctx, cache.ReportEntry{
		CompanyName: record.CompanyName,
		ReportName:  record.Title,
		ReportDate:  record.DateString(),
		Content:     record.Content,
		URL:         record.DetailLink,
		Fields:      record.Financials,
	})
	if err != nil {
		o.log.Warn("report cache store failed", "report", record.Title, "err", err)
	}

	err = o.store.StoreQuery(ctx, cache.QueryEntry{
		SearchQuery: query,
		CompanyName: record.CompanyName,
		ReportName:  record.Title,
		ReportDate:  record.DateString(),
		Fields:      record.Financials,
	})
	if err != nil {
		o.log.Warn("query cache store failed", "query", query, "err", err)
	}
}

// cachedSearchResult shapes a query-cache entry as a search response.
func cachedSearchResult(query string, entry *cache.QueryEntry) *models.SearchResult {
	hasData := entry.Fields.HasData()
	return &models.SearchResult{
		Found:          true,
		SearchedName:   query,
		IsCached:       true,
		CompaniesCount: 1,
		Companies: []models.CompanySummary{{
			Name:             entry.CompanyName,
			ReportsCount:     1,
			LatestReport:     entry.ReportName,
			HasFinancialData: &hasData,
		}},
	}
}

// groupByCompany folds filing records into per-company summaries,
// preserving the newest-first order within each company.
func groupByCompany(records []*models.FilingRecord) []models.CompanySummary {
	anzeiger.SortNewestFirst(records)

	index := map[string]int{}
	var companies []models.CompanySummary
	for _, record := range records {
		i, ok := index[record.CompanyName]
		if !ok {
			index[record.CompanyName] = len(companies)
			companies = append(companies, models.CompanySummary{
				Name:             record.CompanyName,
				LatestReport:     record.Title,
				LatestReportDate: record.Date,
			})
			i = len(companies) - 1
		}
		companies[i].ReportsCount++
		companies[i].AllReports = append(companies[i].AllReports, models.ReportSummary{
			Name: record.Title,
			Date: record.Date,
			URL:  record.DetailLink,
		})
	}
	return companies
}

// nameVariants generates alternate spellings to retry when a literal
// query finds nothing: case folds and the common legal-form
// capitalizations.
func nameVariants(name string) []string {
	var variants []string
	seen := map[string]bool{name: true}
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	add(strings.ToLower(name))
	add(strings.ToUpper(name))
	add(titleCase(name))

	lower := strings.ToLower(name)
	if strings.Contains(lower, "gmbh") {
		add(replaceFold(name, "gmbh", "GmbH"))
		add(replaceFold(name, "gmbh", "gmbh"))
	}
	if hasWordFold(name, "ag") {
		add(replaceWordFold(name, "ag", "AG"))
		add(replaceWordFold(name, "ag", "ag"))
	}
	return variants
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// replaceFold replaces every case-insensitive occurrence of old with
// new.
func replaceFold(s, old, new string) string {
	lower := strings.ToLower(s)
	oldLower := strings.ToLower(old)
	var b strings.Builder
	for {
		i := strings.Index(lower, oldLower)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(new)
		s = s[i+len(old):]
		lower = lower[i+len(oldLower):]
	}
}

func hasWordFold(s, word string) bool {
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if w == word {
			return true
		}
	}
	return false
}

func replaceWordFold(s, word, replacement string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if strings.EqualFold(w, word) {
			words[i] = replacement
		}
	}
	return strings.Join(words, " ")
}

package anzeiger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bundesanzeiger/pkg/models"
)

// UnknownCompany is the sentinel company name for listing rows whose
// company column is empty.
const UnknownCompany = "Unknown Company"

// financialCategories are the listing categories that name a financial
// disclosure. Rows in any other category ("Sonstige", calls for tender,
// registry notices) are skipped.
var financialCategories = []string{
	"Rechnungslegung",
	"Finanzberichte",
}

// ParseResults parses a search-results page into filing records,
// filtered to financial-disclosure categories. An absent results
// container is a normal "no results" outcome and yields an empty slice.
func ParseResults(pageHTML string, log *slog.Logger) ([]*models.FilingRecord, error) {
	if log == nil {
		log = slog.Default()
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	container := doc.Find("div.result_container")
	if container.Length() == 0 {
		log.Debug("no results container on page")
		return nil, nil
	}

	var records []*models.FilingRecord
	container.Find("div.row").Each(func(_ int, row *goquery.Selection) {
		category := strings.TrimSpace(row.Find("div.area").First().Text())
		if category != "" && !isFinancialCategory(category) {
			log.Debug("skipping non-financial row", "category", category)
			return
		}

		link := row.Find("div.info a").First()
		if link.Length() == 0 {
			return
		}
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		title := strings.TrimSpace(link.Text())

		dateCell := row.Find("div.date").First()
		if dateCell.Length() == 0 {
			return
		}
		date := ParseGermanDate(dateCell.Text())

		company := strings.TrimSpace(row.Find("div.first").First().Text())
		if company == "" {
			company = UnknownCompany
		}

		log.Debug("found financial report", "title", title, "company", company)
		records = append(records, &models.FilingRecord{
			Date:        date,
			Title:       title,
			DetailLink:  href,
			CompanyName: company,
		})
	})

	return records, nil
}

func isFinancialCategory(category string) bool {
	for _, want := range financialCategories {
		if strings.Contains(category, want) {
			return true
		}
	}
	return false
}

// SortNewestFirst orders records by date descending; records without a
// date sort last. Ordering is the caller's concern, not the parser's,
// because search and analyze want different views of the same rows.
func SortNewestFirst(records []*models.FilingRecord) {
	// Insertion sort keeps equal-date rows in page order.
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && laterThan(records[j], records[j-1]); j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}

func laterThan(a, b *models.FilingRecord) bool {
	switch {
	case a.Date == nil:
		return false
	case b.Date == nil:
		return true
	default:
		return a.Date.After(*b.Date)
	}
}

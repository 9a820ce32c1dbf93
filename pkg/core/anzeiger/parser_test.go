package anzeiger

import (
	"testing"
	"time"

	"bundesanzeiger/pkg/models"
)

const resultsPage = `
<html><body>
<div class="result_container">
  <div class="row">
    <div class="first">Musterfirma GmbH</div>
    <div class="area">Rechnungslegung/Finanzberichte</div>
    <div class="info"><a href="start?0--link-1">Jahresabschluss zum 31.12.2022</a></div>
    <div class="date">18.03.2023</div>
  </div>
  <div class="row">
    <div class="first">Musterfirma GmbH</div>
    <div class="area">Sonstige Bekanntmachungen</div>
    <div class="info"><a href="start?0--link-2">Bekanntmachung</a></div>
    <div class="date">01.02.2023</div>
  </div>
  <div class="row">
    <div class="first"></div>
    <div class="area">Rechnungslegung</div>
    <div class="info"><a href="start?0--link-3">Jahresabschluss zum 31.12.2021</a></div>
    <div class="date">kein Datum</div>
  </div>
  <div class="row">
    <div class="first">Andere AG</div>
    <div class="area">Rechnungslegung</div>
    <div class="info"></div>
    <div class="date">01.01.2023</div>
  </div>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	records, err := ParseResults(resultsPage, nil)
	if err != nil {
		t.Fatalf("ParseResults returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.CompanyName != "Musterfirma GmbH" {
		t.Errorf("Expected company 'Musterfirma GmbH', got %q", first.CompanyName)
	}
	if first.Title != "Jahresabschluss zum 31.12.2022" {
		t.Errorf("Unexpected title %q", first.Title)
	}
	if first.DetailLink != "start?0--link-1" {
		t.Errorf("Unexpected detail link %q", first.DetailLink)
	}
	if first.Date == nil || !first.Date.Equal(time.Date(2023, time.March, 18, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date %v", first.Date)
	}

	// Row with an unparsable date survives with a nil date and the
	// sentinel company name.
	second := records[1]
	if second.Date != nil {
		t.Errorf("Expected nil date, got %v", second.Date)
	}
	if second.CompanyName != UnknownCompany {
		t.Errorf("Expected %q, got %q", UnknownCompany, second.CompanyName)
	}
}

func TestParseResultsNoContainer(t *testing.T) {
	records, err := ParseResults(`<html><body><p>Keine Treffer</p></body></html>`, nil)
	if err != nil {
		t.Fatalf("ParseResults returned error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestSortNewestFirst(t *testing.T) {
	records := []*models.FilingRecord{
		{Title: "old", Date: datePtr(2020, time.January, 1)},
		{Title: "undated"},
		{Title: "new", Date: datePtr(2023, time.June, 30)},
		{Title: "mid", Date: datePtr(2022, time.March, 15)},
	}

	SortNewestFirst(records)

	want := []string{"new", "mid", "old", "undated"}
	for i, title := range want {
		if records[i].Title != title {
			t.Errorf("Position %d: expected %q, got %q", i, title, records[i].Title)
		}
	}
}

func TestSortNewestFirstStable(t *testing.T) {
	d := datePtr(2023, time.January, 1)
	records := []*models.FilingRecord{
		{Title: "a", Date: d},
		{Title: "b", Date: d},
		{Title: "c", Date: d},
	}

	SortNewestFirst(records)

	for i, title := range []string{"a", "b", "c"} {
		if records[i].Title != title {
			t.Errorf("Equal-date order not preserved at %d: got %q", i, records[i].Title)
		}
	}
}

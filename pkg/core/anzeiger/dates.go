package anzeiger

import (
	"strconv"
	"strings"
	"time"
)

// Listing dates come in the numeric German form ("18.03.2023") and
// occasionally spelled out ("18. März 2023"). The standard library has
// no German locale, so both shapes are handled here.

var numericLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
}

var germanMonths = map[string]time.Month{
	"januar":    time.January,
	"februar":   time.February,
	"märz":      time.March,
	"maerz":     time.March,
	"april":     time.April,
	"mai":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"august":    time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"dezember":  time.December,
}

// ParseGermanDate parses a German-locale date string. It returns nil for
// anything it cannot parse; an unparsable date keeps the listing row
// alive with a null date rather than dropping it.
func ParseGermanDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	for _, layout := range numericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	// Spelled-out form: "18. März 2023".
	parts := strings.Fields(strings.ReplaceAll(s, ".", ". "))
	if len(parts) == 3 {
		day, err := strconv.Atoi(strings.TrimSuffix(parts[0], "."))
		if err != nil {
			return nil
		}
		month, ok := germanMonths[strings.ToLower(parts[1])]
		if !ok {
			return nil
		}
		year, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil
		}
		if day < 1 || day > 31 {
			return nil
		}
		t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		return &t
	}

	return nil
}

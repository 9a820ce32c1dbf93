package anzeiger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bundesanzeiger/pkg/models"
)

// ContentUnavailable is returned as report text when a fetched page
// yields no content through any selector. Fetch degrades through its
// fallback chain instead of failing, so callers always get some text to
// attempt extraction on.
const ContentUnavailable = "[report content unavailable]"

// contentSelectors is the fallback order for locating report text on a
// cleared detail page.
var contentSelectors = []string{
	"div.publication_container",
	"div.publication",
	"div.content",
}

// DocumentFetcher retrieves and isolates the textual content of one
// filing. Detail links are context-relative references into the search
// framework's component tree, so every fetch re-establishes the search
// context first.
type DocumentFetcher struct {
	sessions *SessionManager
	gate     *Gate
	log      *slog.Logger
}

// NewDocumentFetcher wires a fetcher from its collaborators.
func NewDocumentFetcher(sessions *SessionManager, gate *Gate, log *slog.Logger) *DocumentFetcher {
	if log == nil {
		log = slog.Default()
	}
	return &DocumentFetcher{sessions: sessions, gate: gate, log: log}
}

// Fetch re-runs the bootstrap for originalQuery, follows the record's
// detail link, clears the CAPTCHA gate if needed and returns the
// report text. Transport and CAPTCHA failures are errors; a missing
// content container is not.
func (f *DocumentFetcher) Fetch(ctx context.Context, record *models.FilingRecord, originalQuery string) (string, error) {
	if record.DetailLink == "" {
		return "", fmt.Errorf("record %q has no detail link", record.Title)
	}

	sess, _, err := f.sessions.Bootstrap(ctx, originalQuery)
	if err != nil {
		return "", err
	}

	detailURL, err := resolveAgainst(sess.SearchURL(), record.DetailLink)
	if err != nil {
		return "", fmt.Errorf("resolve detail link %q: %w", record.DetailLink, err)
	}

	body, err := sess.Get(ctx, detailURL)
	if err != nil {
		return "", err
	}

	page, err := f.gate.EnsureClear(ctx, sess, string(body))
	if err != nil {
		return "", err
	}

	return ExtractContent(page, f.log), nil
}

// ExtractContent isolates the report text from a cleared detail page,
// falling back from the publication container through alternate
// containers to the whole body, and finally to ContentUnavailable.
func ExtractContent(pageHTML string, log *slog.Logger) string {
	if log == nil {
		log = slog.Default()
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		log.Warn("detail page unparsable", "err", err)
		return ContentUnavailable
	}

	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				return text
			}
		}
	}

	if text := strings.TrimSpace(doc.Find("body").Text()); text != "" {
		log.Debug("content container missing, falling back to body text")
		return text
	}

	log.Warn("no content found on detail page")
	return ContentUnavailable
}

// Package anzeiger implements the scraping state machine against the
// Bundesanzeiger publication site: session bootstrap, result parsing,
// CAPTCHA handling and report content extraction.
//
// External libraries used:
//   - github.com/PuerkitoBio/goquery: jQuery-style HTML traversal
//   - github.com/google/uuid: session ids for log correlation
package anzeiger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "https://www.bundesanzeiger.de"
	startPath      = "/pub/de/start?0"
	// The search endpoint addresses a Wicket component tree; the panel
	// path segment is part of the contract and must not be re-encoded.
	searchPathFormat = "/pub/de/start?0-2.-top%%7Econtent%%7Epanel-left%%7Ecard-form=&fulltext=%s&area_select=&search_button=Suchen"

	// Fixed tracking-cookie seed the site expects before the first GET.
	sessionCookieSeed = "1628606977-805e172265bfdbde-10"
)

// browserHeaders is the desktop header set sent on every request. The
// site serves a degraded page to clients that look like bots.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
	"Accept-Language":           "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7,et;q=0.6,pl;q=0.5",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.131 Safari/537.36",
}

// Session is the transient HTTP conversation state for one
// search-through-fetch sequence. It is never shared across requests and
// never persisted.
type Session struct {
	ID        string
	client    *http.Client
	baseURL   string
	searchURL string // URL of the last search response; base for relative detail links
}

// SearchURL returns the URL the last keyword search was issued against.
func (s *Session) SearchURL() string {
	return s.searchURL
}

// Get issues a GET within the session, carrying the browser header set
// and the session cookies. Non-2xx statuses and network failures are
// ErrTransport.
func (s *Session) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	applyHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransport, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrTransport, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body of %s: %v", ErrTransport, rawURL, err)
	}
	return body, nil
}

// PostForm submits a form within the session.
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	applyHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: POST %s: %v", ErrTransport, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: POST %s: status %d", ErrTransport, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body of %s: %v", ErrTransport, rawURL, err)
	}
	return body, nil
}

func applyHeaders(req *http.Request) {
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Referer", defaultBaseURL+"/")
}

// SessionManager bootstraps scraping sessions. The three-step sequence
// (root, start page, keyword search) establishes server-side navigation
// state; fetching a previously discovered detail link without replaying
// it returns an error page, so callers repeat the full bootstrap for
// every logical search.
type SessionManager struct {
	baseURL string
	log     *slog.Logger
	timeout time.Duration
}

// NewSessionManager creates a manager against the production site.
func NewSessionManager(log *slog.Logger) *SessionManager {
	return NewSessionManagerWithBase(defaultBaseURL, log)
}

// NewSessionManagerWithBase targets an alternate host, used by tests.
func NewSessionManagerWithBase(baseURL string, log *slog.Logger) *SessionManager {
	if log == nil {
		log = slog.Default()
	}
	return &SessionManager{baseURL: baseURL, log: log, timeout: 60 * time.Second}
}

// Bootstrap establishes a fresh session and performs the keyword search
// for query. It returns the session together with the raw HTML of the
// search response. Each call is independent; no retry is performed.
func (m *SessionManager) Bootstrap(ctx context.Context, query string) (*Session, string, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, "", fmt.Errorf("create cookie jar: %w", err)
	}

	base, err := url.Parse(m.baseURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse base url %q: %w", m.baseURL, err)
	}
	jar.SetCookies(base, []*http.Cookie{{Name: "cc", Value: sessionCookieSeed}})

	sess := &Session{
		ID:      uuid.New().String(),
		client:  &http.Client{Jar: jar, Timeout: m.timeout},
		baseURL: m.baseURL,
	}

	log := m.log.With("session", sess.ID, "query", query)
	log.Debug("bootstrapping session")

	// Step (a): acquire the jsessionid cookie.
	if _, err := sess.Get(ctx, m.baseURL); err != nil {
		return nil, "", err
	}
	// Step (b): navigate to the start page.
	if _, err := sess.Get(ctx, m.baseURL+startPath); err != nil {
		return nil, "", err
	}
	// Step (c): perform the keyword search.
	searchURL := m.baseURL + fmt.Sprintf(searchPathFormat, url.QueryEscape(query))
	body, err := sess.Get(ctx, searchURL)
	if err != nil {
		return nil, "", err
	}
	sess.searchURL = searchURL

	log.Debug("session established", "response_bytes", len(body))
	return sess, string(body), nil
}

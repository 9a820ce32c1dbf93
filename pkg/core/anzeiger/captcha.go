package anzeiger

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Solver is the external CAPTCHA-solving capability: challenge image
// bytes in, proposed text token out. Solver accuracy is not this
// package's contract; a wrong guess simply fails the fetch.
type Solver interface {
	Solve(ctx context.Context, image []byte) (string, error)
}

// Gate detects and clears the CAPTCHA interstitial in front of report
// detail pages. A page is Clear when the publication container is
// present and Challenged when the challenge widget is shown instead.
type Gate struct {
	solver Solver
	log    *slog.Logger
}

// NewGate creates a gate around the given solver capability.
func NewGate(solver Solver, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{solver: solver, log: log}
}

// IsChallenged reports whether the page hides its content behind a
// challenge.
func IsChallenged(pageHTML string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return false
	}
	return doc.Find("div.publication_container").Length() == 0 &&
		doc.Find("div.captcha_wrapper").Length() > 0
}

// EnsureClear returns the page unchanged when it is already clear. When
// challenged it fetches the challenge image, asks the solver for a
// token, submits it to the form's declared action and returns the
// resulting page. No second attempt is made: a page that is still
// challenged after submission is ErrCaptchaUnsolved.
func (g *Gate) EnsureClear(ctx context.Context, sess *Session, pageHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("parse detail page: %w", err)
	}

	if doc.Find("div.publication_container").Length() > 0 {
		return pageHTML, nil
	}

	wrapper := doc.Find("div.captcha_wrapper")
	if wrapper.Length() == 0 {
		// Neither content nor challenge; let the fetcher's fallback
		// chain deal with the page.
		return pageHTML, nil
	}

	imgSrc, ok := wrapper.Find("img").First().Attr("src")
	if !ok || imgSrc == "" {
		return "", fmt.Errorf("%w: challenge image not found", ErrCaptchaUnsolved)
	}

	imgURL, err := resolveAgainst(sess.SearchURL(), imgSrc)
	if err != nil {
		return "", fmt.Errorf("%w: resolve image url %q: %v", ErrCaptchaUnsolved, imgSrc, err)
	}

	image, err := sess.Get(ctx, imgURL)
	if err != nil {
		return "", err
	}

	token, err := g.solver.Solve(ctx, image)
	if err != nil {
		return "", fmt.Errorf("%w: solver: %v", ErrCaptchaUnsolved, err)
	}
	g.log.Debug("submitting captcha token", "session", sess.ID, "token_len", len(token))

	// The challenge form is the page's second form; the first is the
	// site-wide search box.
	action, ok := doc.Find("form").Eq(1).Attr("action")
	if !ok || action == "" {
		return "", fmt.Errorf("%w: challenge form action not found", ErrCaptchaUnsolved)
	}
	actionURL, err := resolveAgainst(sess.SearchURL(), action)
	if err != nil {
		return "", fmt.Errorf("%w: resolve form action %q: %v", ErrCaptchaUnsolved, action, err)
	}

	body, err := sess.PostForm(ctx, actionURL, url.Values{
		"solution":       {token},
		"confirm-button": {"OK"},
	})
	if err != nil {
		return "", err
	}

	result := string(body)
	if IsChallenged(result) {
		return "", fmt.Errorf("%w: challenge repeated after submission", ErrCaptchaUnsolved)
	}
	return result, nil
}

// resolveAgainst resolves a possibly relative reference against the
// given base URL, stripping the base's query component first. Detail
// links and form actions are component-tree references relative to the
// search response, not stable absolute URLs.
func resolveAgainst(base, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if refURL.IsAbs() {
		return ref, nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	baseURL.RawQuery = ""
	baseURL.Fragment = ""
	return baseURL.ResolveReference(refURL).String(), nil
}

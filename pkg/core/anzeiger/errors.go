package anzeiger

import "errors"

// Error taxonomy for the scraping pipeline. Expected-empty conditions
// (no results, no content container) are not errors and are represented
// as return values instead.
var (
	// ErrTransport marks network or HTTP-level failures. The core never
	// retries; callers decide.
	ErrTransport = errors.New("transport error")

	// ErrCaptchaUnsolved is returned when a detail page is still gated
	// after one solver attempt. It fails the fetch for that one record
	// only.
	ErrCaptchaUnsolved = errors.New("captcha unsolved")
)

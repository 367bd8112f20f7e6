package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/rehttp"
)

// MaxBodyBytes caps how much of a response body a fetch reads, matching
// the original crawler's 10 MiB limit so a single oversized page can't
// exhaust memory.
const MaxBodyBytes = 10 << 20

// HTTPFetcher is the default Port implementation: an *http.Client whose
// transport retries idempotent requests with exponential jittered
// backoff, and whose CheckRedirect hook detects redirect loops instead
// of following them forever.
type HTTPFetcher struct {
	userAgent string
	client    *http.Client
}

// NewHTTPFetcher builds a fetcher with the given identifying User-Agent,
// per-request timeout, and retry budget. maxRetries <= 0 disables
// retries entirely. baseDelay seeds the exponential jittered backoff
// between retries (the maximum delay is 40x baseDelay or 10s,
// whichever is smaller).
func NewHTTPFetcher(userAgent string, timeout time.Duration, maxRetries int, baseDelay time.Duration) *HTTPFetcher {
	if baseDelay <= 0 {
		baseDelay = 250 * time.Millisecond
	}
	maxDelay := baseDelay * 40
	if maxDelay > 10*time.Second {
		maxDelay = 10 * time.Second
	}

	transport := rehttp.NewTransport(
		&http.Transport{
			TLSClientConfig: &tls.Config{},
		},
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(maxRetries),
			rehttp.RetryAny(rehttp.RetryTemporaryErr(), rehttp.RetryStatuses(502, 503, 504)),
		),
		rehttp.ExpJitterDelay(baseDelay, maxDelay),
	)

	f := &HTTPFetcher{userAgent: userAgent}
	f.client = &http.Client{
		Timeout:       timeout,
		Transport:     transport,
		CheckRedirect: f.checkRedirect,
	}
	return f
}

// checkRedirect rejects a redirect chain that revisits a URL it has
// already seen, so a misconfigured site can't spin a worker forever.
func (f *HTTPFetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	current := req.URL.String()
	for _, prev := range via {
		if prev.URL.String() == current {
			return errors.New("redirect loop detected")
		}
	}
	return nil
}

// Fetch performs a GET request for rawURL and returns the final URL
// (after redirects), status, content type, and body (truncated to
// MaxBodyBytes). Any network, timeout, or request-construction failure
// is returned wrapped in a FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Response{}, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return Response{}, &FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Response{
		URL:         finalURL,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
	}, nil
}

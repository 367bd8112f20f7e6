// Package fetch implements the Fetch Port: the boundary between the
// crawl engine and the network. The engine only ever sees Response
// values and FetchError failures; retry, redirect, and body-size
// policy all live here.
package fetch

import (
	"context"
	"fmt"
)

// Response is a completed fetch: the final URL after any redirects,
// the HTTP status, the declared Content-Type, and the body read up to
// the fetcher's size cap.
type Response struct {
	URL         string
	Status      int
	ContentType string
	Body        string
}

// Port is what the crawl engine depends on to retrieve a URL. A non-nil
// error is always a FetchError: network failure, timeout, or a
// malformed response. The engine treats every Port error as locally
// recoverable — log it and move on — never as a reason to stop the
// crawl.
type Port interface {
	Fetch(ctx context.Context, rawURL string) (Response, error)
}

// FetchError wraps the URL and underlying cause of a failed fetch.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

package crawler

import "errors"

// ErrInvalidArgument is returned for a bad seed URL or an invalid
// option (e.g. a non-positive rate) and means the crawl never starts.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrFetch wraps a Fetch Port failure (network, timeout, protocol).
// It is handled locally by the worker: logged at warn level, the URL
// is skipped, and the crawl continues.
var ErrFetch = errors.New("fetch error")

// ErrUnexpected wraps any failure inside a worker that is not a
// FetchError or a non-200 status. It cancels the pool and surfaces to
// the caller.
var ErrUnexpected = errors.New("unexpected crawl error")

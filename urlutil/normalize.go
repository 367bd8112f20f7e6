// Package urlutil provides the canonical-form normalizer and same-host
// predicate shared by the crawl engine's visited set and URL extractor.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when the input is empty, cannot be parsed
// as a URL, or lacks a scheme or host.
var ErrInvalidURL = errors.New("invalid url")

// Normalize returns the canonical form of rawURL: the fragment is
// dropped and trailing slashes are stripped from the path (so "/a/"
// becomes "/a" and "/" becomes ""). Scheme, authority, and query are
// left untouched — in particular the host is not lowercased, matching
// the case-sensitive authority comparison used by SameHost.
//
// Normalize is idempotent: Normalize(Normalize(u)) == Normalize(u).
func Normalize(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidURL, rawURL, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %s: missing scheme or host", ErrInvalidURL, rawURL)
	}

	// url.Parse lowercases the scheme; restore it as received. The
	// scheme is always the leading part of rawURL.
	parsed.Scheme = rawURL[:len(parsed.Scheme)]
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	return parsed.String(), nil
}

// IsHTTPScheme reports whether rawURL parses to an http or https URL.
func IsHTTPScheme(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

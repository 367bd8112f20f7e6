package urlutil

import (
	"fmt"
	"net/url"
)

// SameHost reports whether a and b share the same authority (host:port,
// as received). Comparison is case-sensitive and does not infer default
// ports — subdomains are never considered same-host as their parent.
func SameHost(a, b string) (bool, error) {
	parsedA, err := url.Parse(a)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", a, err)
	}
	parsedB, err := url.Parse(b)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", b, err)
	}
	return parsedA.Host == parsedB.Host, nil
}

// Authority extracts the scheme and host:port portion of rawURL, e.g.
// "https://example.com:8080/path" -> "https://example.com:8080". Used
// to build the robots.txt URL for a seed.
func Authority(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}
	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), nil
}

// ResolveReference resolves a possibly-relative ref against base,
// returning the resolved absolute URL.
func ResolveReference(base *url.URL, ref string) (*url.URL, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse ref %q: %w", ref, err)
	}
	return base.ResolveReference(refURL), nil
}

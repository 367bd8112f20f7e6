package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/lukemcguire/sitecrawl/urlutil"
)

// linkAttrs maps an element name to the attribute names it carries a
// URL reference in. Matching is case-insensitive on both the tag name
// and the attribute name; video carries two URL-bearing attributes.
var linkAttrs = map[string][]string{
	"a":      {"href"},
	"area":   {"href"},
	"audio":  {"src"},
	"embed":  {"src"},
	"iframe": {"src"},
	"img":    {"src"},
	"link":   {"href"},
	"script": {"src"},
	"source": {"src"},
	"track":  {"src"},
	"video":  {"src", "poster"},
}

// ExtractLinks parses the HTML read from body and returns the ordered,
// deduplicated list of absolute http/https URLs it references, resolved
// against base and canonicalized via urlutil.Normalize. base must not
// be empty.
func ExtractLinks(body io.Reader, base *url.URL) ([]string, error) {
	if base == nil || base.String() == "" {
		return nil, fmt.Errorf("%w: base url must not be empty", ErrInvalidArgument)
	}

	tokenizer := html.NewTokenizer(body)
	seen := make(map[string]bool)
	var links []string

	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && err != io.EOF {
				return links, fmt.Errorf("tokenize html: %w", err)
			}
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			attrNames, ok := linkAttrs[strings.ToLower(token.Data)]
			if !ok {
				continue
			}
			for _, wantAttr := range attrNames {
				for _, attr := range token.Attr {
					if !strings.EqualFold(attr.Key, wantAttr) {
						continue
					}
					appendLink(base, attr.Val, seen, &links)
				}
			}
		}
	}
}

// appendLink resolves, filters, and normalizes a single attribute
// value, appending it to links if it is new.
func appendLink(base *url.URL, value string, seen map[string]bool, links *[]string) {
	if value == "" || strings.HasPrefix(value, "#") {
		return
	}

	resolved, err := urlutil.ResolveReference(base, value)
	if err != nil {
		return
	}

	resolvedStr := resolved.String()
	if !urlutil.IsHTTPScheme(resolvedStr) {
		return
	}

	normalized, err := urlutil.Normalize(resolvedStr)
	if err != nil {
		return
	}

	if !seen[normalized] {
		seen[normalized] = true
		*links = append(*links, normalized)
	}
}

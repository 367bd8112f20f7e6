package crawler

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error: %v", raw, err)
	}
	return u
}

func TestExtractLinks(t *testing.T) {
	base := mustParseURL(t, "https://example.com")

	tests := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name:     "absolute anchor link",
			html:     `<a href="https://example.com/page">Link</a>`,
			expected: []string{"https://example.com/page"},
		},
		{
			name:     "relative anchor resolved against base",
			html:     `<a href="/about">About</a>`,
			expected: []string{"https://example.com/about"},
		},
		{
			name:     "mailto scheme filtered",
			html:     `<a href="mailto:user@example.com">Email</a>`,
			expected: []string{},
		},
		{
			name:     "javascript scheme filtered",
			html:     `<a href="javascript:void(0)">Click</a>`,
			expected: []string{},
		},
		{
			name:     "empty href skipped",
			html:     `<a href="">Empty</a>`,
			expected: []string{},
		},
		{
			name:     "fragment-only href skipped",
			html:     `<a href="#section">Jump</a>`,
			expected: []string{},
		},
		{
			name: "multiple tags from the attribute table",
			html: `<a href="/page1">Page 1</a>
			       <img src="/logo.png">
			       <script src="/app.js"></script>
			       <link href="/style.css">
			       <iframe src="/embed"></iframe>
			       <audio src="/clip.mp3"></audio>
			       <video src="/movie.mp4" poster="/poster.jpg"></video>
			       <source src="/alt.webm">
			       <track src="/captions.vtt">
			       <area href="/region">
			       <embed src="/widget">`,
			expected: []string{
				"https://example.com/page1",
				"https://example.com/logo.png",
				"https://example.com/app.js",
				"https://example.com/style.css",
				"https://example.com/embed",
				"https://example.com/clip.mp3",
				"https://example.com/movie.mp4",
				"https://example.com/poster.jpg",
				"https://example.com/alt.webm",
				"https://example.com/captions.vtt",
				"https://example.com/region",
				"https://example.com/widget",
			},
		},
		{
			name:     "case-insensitive tag and attribute",
			html:     `<A HREF="/shout">Shout</A>`,
			expected: []string{"https://example.com/shout"},
		},
		{
			name: "deduplicates within the page",
			html: `<a href="/page">Link 1</a>
			       <a href="/page">Link 2</a>
			       <a href="/page">Link 3</a>`,
			expected: []string{"https://example.com/page"},
		},
		{
			name: "document order preserved",
			html: `<a href="/z">Z</a><a href="/a">A</a>`,
			expected: []string{
				"https://example.com/z",
				"https://example.com/a",
			},
		},
		{
			name:     "malformed html handled gracefully",
			html:     `<a href="/unclosed">Unclosed`,
			expected: []string{"https://example.com/unclosed"},
		},
		{
			name:     "trailing slash and fragment normalized",
			html:     `<a href="/about/#team">About</a>`,
			expected: []string{"https://example.com/about"},
		},
		{
			name:     "empty body yields empty output",
			html:     "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractLinks(strings.NewReader(tt.html), base)
			if err != nil {
				t.Fatalf("ExtractLinks() unexpected error: %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("ExtractLinks() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("ExtractLinks()[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestExtractLinksEmptyBase(t *testing.T) {
	empty := &url.URL{}
	_, err := ExtractLinks(strings.NewReader(`<a href="/x">x</a>`), empty)
	if err == nil {
		t.Fatal("ExtractLinks() with empty base should error")
	}
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ExtractLinks() error = %v, want wrapping ErrInvalidArgument", err)
	}
}

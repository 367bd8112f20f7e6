package result

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes results as a formatted JSON array to w. Uses flat
// array format (not wrapped with metadata) for simpler CI integration.
func WriteJSON(w io.Writer, results []CrawlResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// WriteJSONLines writes one JSON object per result, newline-delimited,
// so a consumer can start processing before the crawl finishes.
func WriteJSONLines(w io.Writer, results <-chan CrawlResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write json line for %s: %w", r.URL, err)
		}
	}
	return nil
}

package crawler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsOracle answers robots-exclusion questions for a single crawl.
// It is constructed once per crawl (per §4.4) from the body fetched at
// <scheme>://<authority>/robots.txt; a missing, non-200, or unreachable
// robots.txt yields an allow-all oracle via NewAllowAllRobotsOracle.
type RobotsOracle struct {
	data *robotstxt.RobotsData
}

// NewRobotsOracle parses body (the raw robots.txt contents fetched
// with the given HTTP status) into an oracle. Any status other than 200
// (including 4xx and 5xx) or a parse failure produces an allow-all
// oracle, matching §4.4's fail-open contract.
func NewRobotsOracle(status int, body []byte) *RobotsOracle {
	if status != http.StatusOK {
		return NewAllowAllRobotsOracle()
	}
	data, err := robotstxt.FromStatusAndBytes(status, body)
	if err != nil || data == nil {
		return NewAllowAllRobotsOracle()
	}
	return &RobotsOracle{data: data}
}

// NewAllowAllRobotsOracle returns an oracle that allows every URL and
// reports no crawl-delay. Used when robots.txt could not be fetched.
func NewAllowAllRobotsOracle() *RobotsOracle {
	data, _ := robotstxt.FromStatusAndBytes(404, nil)
	return &RobotsOracle{data: data}
}

// Allowed reports whether agent may fetch rawURL's path according to
// the most specific matching User-agent group, falling back to "*".
func (r *RobotsOracle) Allowed(agent, rawURL string) bool {
	if r == nil || r.data == nil {
		return true
	}
	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		path = parsed.Path
		if parsed.RawQuery != "" {
			path += "?" + parsed.RawQuery
		}
		if path == "" {
			path = "/"
		}
	}
	return r.data.TestAgent(path, agent)
}

// CrawlDelay returns the Crawl-delay directive for agent, if any.
func (r *RobotsOracle) CrawlDelay(agent string) (time.Duration, bool) {
	if r == nil || r.data == nil {
		return 0, false
	}
	group := r.data.FindGroup(agent)
	if group == nil || group.CrawlDelay <= 0 {
		return 0, false
	}
	return group.CrawlDelay, true
}

package crawler

import (
	"net/http"
	"testing"
	"time"
)

func TestNewRobotsOracleAllowDisallow(t *testing.T) {
	body := []byte("User-agent: *\nDisallow: /secret\n")
	oracle := NewRobotsOracle(http.StatusOK, body)

	if !oracle.Allowed("crawler", "https://example.com/public") {
		t.Error("/public should be allowed")
	}
	if oracle.Allowed("crawler", "https://example.com/secret") {
		t.Error("/secret should be disallowed")
	}
	if oracle.Allowed("crawler", "https://example.com/secret/nested") {
		t.Error("/secret/nested should be disallowed")
	}
}

func TestNewRobotsOracleMostSpecificGroupWins(t *testing.T) {
	body := []byte(`User-agent: *
Disallow: /all

User-agent: specialbot
Disallow: /only-special
`)
	oracle := NewRobotsOracle(http.StatusOK, body)

	if oracle.Allowed("specialbot", "https://example.com/only-special") {
		t.Error("specialbot should be disallowed on /only-special")
	}
	if !oracle.Allowed("specialbot", "https://example.com/all") {
		t.Error("specialbot group does not disallow /all, so the general group must not apply")
	}
	if !oracle.Allowed("otherbot", "https://example.com/only-special") {
		t.Error("otherbot should fall back to the * group, which allows /only-special")
	}
	if oracle.Allowed("otherbot", "https://example.com/all") {
		t.Error("otherbot should be disallowed on /all via the * group")
	}
}

func TestNewRobotsOracleNon200IsAllowAll(t *testing.T) {
	oracle := NewRobotsOracle(http.StatusNotFound, nil)
	if !oracle.Allowed("anybot", "https://example.com/anything") {
		t.Error("404 robots.txt should allow everything")
	}

	oracle = NewRobotsOracle(http.StatusInternalServerError, []byte("garbage"))
	if !oracle.Allowed("anybot", "https://example.com/anything") {
		t.Error("5xx robots.txt should allow everything")
	}
}

func TestNewAllowAllRobotsOracle(t *testing.T) {
	oracle := NewAllowAllRobotsOracle()
	if !oracle.Allowed("anybot", "https://example.com/secret") {
		t.Error("allow-all oracle should allow everything")
	}
	if _, ok := oracle.CrawlDelay("anybot"); ok {
		t.Error("allow-all oracle should report no crawl-delay")
	}
}

func TestRobotsOracleCrawlDelay(t *testing.T) {
	body := []byte("User-agent: *\nCrawl-delay: 2\n")
	oracle := NewRobotsOracle(http.StatusOK, body)

	delay, ok := oracle.CrawlDelay("anybot")
	if !ok {
		t.Fatal("expected a crawl-delay to be present")
	}
	if delay != 2*time.Second {
		t.Errorf("CrawlDelay() = %v, want 2s", delay)
	}
}

func TestRobotsOracleNoCrawlDelay(t *testing.T) {
	body := []byte("User-agent: *\nDisallow: /x\n")
	oracle := NewRobotsOracle(http.StatusOK, body)

	if _, ok := oracle.CrawlDelay("anybot"); ok {
		t.Error("expected no crawl-delay when none is specified")
	}
}

// Package config loads crawl settings from CRAWLER_-prefixed
// environment variables, the same prefix the original service used for
// its HTTP settings, layered under CLI flag defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

// Settings holds every ambient, non-positional knob the crawler needs.
// Each field has a default matching the original service's HttpSettings
// and the engine's own DefaultConcurrency/DefaultUserAgent.
type Settings struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	MaxRetries        int
	RetryBackoff      time.Duration
	Concurrency       int
}

// Default returns the baseline settings before environment overrides
// or flags are applied.
func Default() Settings {
	return Settings{
		Timeout:           30 * time.Second,
		UserAgent:         "sitecrawl/0.1.0",
		RequestsPerSecond: 10.0,
		MaxRetries:        3,
		RetryBackoff:      500 * time.Millisecond,
		Concurrency:       5,
	}
}

// FromEnv starts from Default and overrides any field whose
// CRAWLER_-prefixed variable is set and parses cleanly. A malformed
// value is ignored and the default (or prior value) is kept, matching
// the original service's fail-soft env loading.
func FromEnv() Settings {
	s := Default()

	if v := getEnv("CRAWLER_TIMEOUT"); v != "" {
		if seconds, err := strconv.ParseFloat(v, 64); err == nil && seconds > 0 {
			s.Timeout = time.Duration(seconds * float64(time.Second))
		}
	}
	if v := getEnv("CRAWLER_USER_AGENT"); v != "" {
		s.UserAgent = v
	}
	if v := getEnv("CRAWLER_REQUESTS_PER_SECOND"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			s.RequestsPerSecond = rps
		}
	}
	if v := getEnv("CRAWLER_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			s.MaxRetries = n
		}
	}
	if v := getEnv("CRAWLER_RETRY_BACKOFF"); v != "" {
		if seconds, err := strconv.ParseFloat(v, 64); err == nil && seconds >= 0 {
			s.RetryBackoff = time.Duration(seconds * float64(time.Second))
		}
	}
	if v := getEnv("CRAWLER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.Concurrency = n
		}
	}

	return s
}

func getEnv(key string) string {
	v, _ := os.LookupEnv(key)
	return v
}

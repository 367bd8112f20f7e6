// Package main provides the sitecrawl CLI entrypoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/sitecrawl/config"
	"github.com/lukemcguire/sitecrawl/crawler"
	"github.com/lukemcguire/sitecrawl/fetch"
	"github.com/lukemcguire/sitecrawl/result"
	"github.com/lukemcguire/sitecrawl/tui"
	"github.com/lukemcguire/sitecrawl/urlutil"
)

const (
	exitOK            = 0
	exitInvalidURL    = 1
	exitArgumentError = 2
)

// cliFlags holds parsed command-line flags, layered over config.Default.
type cliFlags struct {
	maxDepth    int
	maxPages    int
	maxVisited  int
	concurrency int
	rateLimit   float64
	userAgent   string
	timeout     time.Duration
	retries     int
	retryDelay  time.Duration
	jsonOutput  bool
	noTUI       bool
	prefilter   uint
	adaptive    bool
}

func parseFlags(defaults config.Settings) *cliFlags {
	opts := &cliFlags{}
	flag.IntVar(&opts.maxDepth, "max-depth", 0, "maximum crawl depth below the seed (0 = unlimited)")
	flag.IntVar(&opts.maxPages, "max-pages", 0, "maximum number of pages to emit (0 = unlimited)")
	flag.IntVar(&opts.maxVisited, "max-visited", 0, "maximum number of URLs to track as visited (0 = unlimited)")
	flag.IntVar(&opts.concurrency, "concurrency", defaults.Concurrency, "number of concurrent workers")
	flag.Float64Var(&opts.rateLimit, "rate-limit", defaults.RequestsPerSecond, "requests per second")
	flag.StringVar(&opts.userAgent, "user-agent", defaults.UserAgent, "user agent string")
	flag.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "per-request timeout")
	flag.IntVar(&opts.retries, "retries", defaults.MaxRetries, "number of retries for transient fetch errors")
	flag.DurationVar(&opts.retryDelay, "retry-backoff", defaults.RetryBackoff, "base delay between retries")
	flag.BoolVar(&opts.jsonOutput, "json", false, "write newline-delimited JSON results to stdout instead of the TUI")
	flag.BoolVar(&opts.noTUI, "no-tui", false, "disable the interactive TUI even when json output is not requested")
	flag.UintVar(&opts.prefilter, "prefilter-expected-urls", 0, "size a disk-backed bloom prefilter for this many URLs (0 disables it)")
	flag.BoolVar(&opts.adaptive, "adaptive-rate-limit", false, "self-tune the request rate from observed response latency instead of holding it fixed")
	flag.Parse()
	return opts
}

func main() {
	os.Exit(run())
}

func run() int {
	defaults := config.FromEnv()
	opts := parseFlags(defaults)

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sitecrawl [flags] <url>")
		flag.PrintDefaults()
		return exitArgumentError
	}
	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "sitecrawl takes exactly one positional argument: the seed url")
		return exitArgumentError
	}

	seed := flag.Arg(0)
	if !urlutil.IsHTTPScheme(seed) {
		fmt.Fprintf(os.Stderr, "invalid url: %s (must be an absolute http:// or https:// url)\n", seed)
		return exitInvalidURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fetcher := fetch.NewHTTPFetcher(opts.userAgent, opts.timeout, opts.retries, opts.retryDelay)
	engine := crawler.New(fetcher)

	var limiter crawler.RateLimiter
	var err error
	if opts.adaptive {
		limiter, err = crawler.NewAdaptiveRateLimiter(opts.rateLimit, opts.timeout/4, opts.rateLimit*4)
	} else {
		limiter, err = crawler.NewTokenBucket(opts.rateLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid argument: %v\n", err)
		return exitArgumentError
	}

	crawlOpts := crawler.Options{
		MaxConcurrency:        opts.concurrency,
		UserAgent:             opts.userAgent,
		RateLimiter:           limiter,
		Logger:                slog.Default(),
		PrefilterExpectedURLs: opts.prefilter,
	}
	if opts.maxDepth > 0 {
		crawlOpts.MaxDepth = &opts.maxDepth
	}
	if opts.maxPages > 0 {
		crawlOpts.MaxPages = &opts.maxPages
	}
	if opts.maxVisited > 0 {
		crawlOpts.MaxVisited = &opts.maxVisited
	}

	if opts.jsonOutput {
		progressCh := make(chan crawler.CrawlEvent, 1)
		go drainProgress(progressCh)
		crawlOpts.Progress = progressCh

		stream, err := engine.Crawl(ctx, seed, crawlOpts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid argument: %v\n", err)
			return exitArgumentError
		}
		if err := result.WriteJSONLines(os.Stdout, stream.Results()); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitArgumentError
		}
		if err := stream.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitArgumentError
		}
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "interrupted")
		}
		return exitOK
	}

	progressCh := make(chan crawler.CrawlEvent, 100)
	crawlOpts.Progress = progressCh

	stream, err := engine.Crawl(ctx, seed, crawlOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid argument: %v\n", err)
		return exitArgumentError
	}

	if opts.noTUI {
		for r := range stream.Results() {
			fmt.Printf("%s (%d links)\n", r.URL, len(r.Links))
		}
		if err := stream.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitArgumentError
		}
		stats := stream.Stats()
		fmt.Fprintf(os.Stderr, "checked %d urls, emitted %d pages in %s\n", stats.URLsVisited, stats.PagesEmitted, stats.Duration.Round(time.Millisecond))
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "interrupted")
		}
		return exitOK
	}

	model := tui.NewModel(stop, stream, progressCh)
	program := tea.NewProgram(model)
	finalModel, err := program.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitArgumentError
	}
	if m, ok := finalModel.(tui.Model); ok && m.Err() != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", m.Err())
		return exitArgumentError
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "interrupted")
	}
	return exitOK
}

// drainProgress discards progress events when json output is selected,
// so a full channel never blocks a worker.
func drainProgress(ch <-chan crawler.CrawlEvent) {
	for range ch {
	}
}

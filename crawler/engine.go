package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/sitecrawl/fetch"
	"github.com/lukemcguire/sitecrawl/result"
	"github.com/lukemcguire/sitecrawl/urlutil"
	"github.com/lukemcguire/sitecrawl/visited"
)

const (
	// DefaultConcurrency is the worker pool size used when Options
	// leaves MaxConcurrency unset.
	DefaultConcurrency = 5
	// DefaultUserAgent identifies this crawler when Options leaves
	// UserAgent unset.
	DefaultUserAgent = "sitecrawl/0.1.0"
)

// Options configures a single call to Engine.Crawl. Every cap is a
// pointer so "unset" (nil) is distinguishable from the zero value.
type Options struct {
	MaxConcurrency int
	UserAgent      string
	RateLimiter    RateLimiter
	MaxDepth       *int
	MaxPages       *int
	MaxVisited     *int
	MemoryLimitMB  int64
	Logger         *slog.Logger
	// PrefilterExpectedURLs, when > 0, backs the visited set with a
	// disk-resident bloom filter sized for that many URLs. Worthwhile
	// only for crawls expected to visit far more URLs than comfortably
	// fit in an in-process map.
	PrefilterExpectedURLs uint
	// Progress, if non-nil, receives a best-effort CrawlEvent for each
	// dequeued item that reaches the fetch step; items skipped earlier
	// (page cap already reached, crawl canceled) produce no event. The
	// engine never blocks on a
	// full Progress channel; events are dropped rather than stalling a
	// worker.
	Progress chan<- CrawlEvent
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = DefaultConcurrency
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Engine runs crawls against a fetch.Port. It holds no per-crawl state;
// all of that lives in the engineState and visited.Set created fresh
// inside each Crawl call, so a single Engine can run multiple
// concurrent crawls safely.
type Engine struct {
	fetcher fetch.Port
}

// New creates an Engine that fetches pages through fetcher.
func New(fetcher fetch.Port) *Engine {
	return &Engine{fetcher: fetcher}
}

// Stream is the handle Crawl returns: a channel of results to range
// over, and an Err method to call once that channel is closed — the
// same two-step pattern as bufio.Scanner, so a nil Err() after Results
// is drained means the crawl ended cleanly.
type Stream struct {
	results chan result.CrawlResult
	errCh   chan error
	statsCh chan result.Stats
}

// Results returns the channel of emitted pages. It is closed when the
// crawl finishes, whether by exhausting the queue, hitting max_pages,
// or failing.
func (s *Stream) Results() <-chan result.CrawlResult {
	return s.results
}

// Err blocks until the crawl has finished and returns the first
// unexpected error, or nil if the crawl completed without one. It is
// safe to call only after (or while) draining Results.
func (s *Stream) Err() error {
	return <-s.errCh
}

// Stats blocks until the crawl has finished and returns the final
// checked/emitted totals and elapsed duration. Like Err, it is safe to
// call only after (or while) draining Results.
func (s *Stream) Stats() result.Stats {
	return <-s.statsCh
}

// Crawl validates seed and opts, fetches robots.txt once, and launches
// opts.MaxConcurrency workers against a shared queue seeded with seed.
// It returns as soon as the pool has started; the returned Stream
// delivers results as workers emit them. A non-nil error return means
// the crawl never started at all (ErrInvalidArgument).
func (e *Engine) Crawl(ctx context.Context, seed string, opts Options) (*Stream, error) {
	opts = opts.withDefaults()

	if !urlutil.IsHTTPScheme(seed) {
		return nil, fmt.Errorf("%w: seed must be an absolute http(s) url: %q", ErrInvalidArgument, seed)
	}
	normSeed, err := urlutil.Normalize(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	mem := newMemoryWatcher(opts.MemoryLimitMB, opts.Logger)

	oracle := e.fetchRobots(ctx, normSeed, opts)
	if opts.RateLimiter != nil {
		if delay, ok := oracle.CrawlDelay(opts.UserAgent); ok && delay > 0 {
			rate := 1 / delay.Seconds()
			if rate > 0 {
				_ = opts.RateLimiter.SetRate(rate)
			}
		}
	}

	var prefilter *visited.DiskPrefilter
	if opts.PrefilterExpectedURLs > 0 {
		p, err := visited.NewDiskPrefilter(opts.PrefilterExpectedURLs, 0.01)
		if err != nil {
			opts.Logger.Warn("disk prefilter disabled", "error", err)
		} else {
			prefilter = p
		}
	}

	state := newEngineState(opts.MaxPages, opts.MaxDepth, opts.MaxVisited)
	visitedSet := visited.New(prefilter)
	visitedSet.Add(normSeed)
	state.enqueue(workItem{url: normSeed, parent: "", depth: 0})

	group, groupCtx := errgroup.WithContext(ctx)
	go func() {
		<-groupCtx.Done()
		state.cancel()
	}()

	resultsCh := make(chan result.CrawlResult, opts.MaxConcurrency)
	stream := &Stream{results: resultsCh, errCh: make(chan error, 1), statsCh: make(chan result.Stats, 1)}
	start := time.Now()

	w := &worker{
		engine:  e,
		opts:    opts,
		oracle:  oracle,
		seed:    normSeed,
		state:   state,
		visited: visitedSet,
		mem:     mem,
		sem:     make(chan struct{}, opts.MaxConcurrency),
		out:     resultsCh,
	}

	for i := 0; i < opts.MaxConcurrency; i++ {
		group.Go(func() error {
			return w.run(groupCtx)
		})
	}

	go func() {
		err := group.Wait()
		close(resultsCh)
		if prefilter != nil {
			if cerr := prefilter.Close(); cerr != nil {
				opts.Logger.Warn("disk prefilter close failed", "error", cerr)
			}
		}
		checked, emitted := state.counts()
		stream.statsCh <- result.Stats{PagesEmitted: emitted, URLsVisited: checked, Duration: time.Since(start)}
		close(stream.statsCh)
		if err != nil {
			stream.errCh <- err
		}
		close(stream.errCh)
	}()

	return stream, nil
}

// fetchRobots retrieves <authority>/robots.txt for seed through the
// same rate-limited fetch path used for ordinary pages. Any failure
// (network error, non-200 status) yields an allow-all oracle: robots
// exclusion fails open, never closed.
func (e *Engine) fetchRobots(ctx context.Context, seed string, opts Options) *RobotsOracle {
	authority, err := urlutil.Authority(seed)
	if err != nil {
		return NewAllowAllRobotsOracle()
	}
	robotsURL := authority + "/robots.txt"

	if opts.RateLimiter != nil {
		if err := opts.RateLimiter.Acquire(ctx); err != nil {
			return NewAllowAllRobotsOracle()
		}
	}

	resp, err := e.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		return NewAllowAllRobotsOracle()
	}
	return NewRobotsOracle(resp.Status, []byte(resp.Body))
}

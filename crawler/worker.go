package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lukemcguire/sitecrawl/result"
	"github.com/lukemcguire/sitecrawl/urlutil"
	"github.com/lukemcguire/sitecrawl/visited"
)

// worker holds everything a single goroutine needs to process items
// off the shared queue. All of its fields are either immutable for the
// life of the crawl or already safe for concurrent use on their own.
type worker struct {
	engine  *Engine
	opts    Options
	oracle  *RobotsOracle
	seed    string
	state   *engineState
	visited *visited.Set
	mem     *memoryWatcher
	sem     chan struct{}
	out     chan<- result.CrawlResult
}

// run dequeues items until the queue is permanently empty (no items
// left and no worker still in flight) or the crawl is canceled. It
// returns a non-nil error only for ErrUnexpected conditions, which
// cancels the whole pool via the shared errgroup context. dequeue
// itself marks each returned item in_progress before releasing its
// lock, so every ok=true return here is already accounted for; run
// just has to pair it with exitCritical once the item is done.
func (w *worker) run(ctx context.Context) error {
	for {
		item, ok := w.state.dequeue()
		if !ok {
			return nil
		}
		if err := w.process(ctx, item); err != nil {
			w.state.exitCritical()
			return err
		}
		w.state.exitCritical()
	}
}

// process implements the per-item worker loop: concurrency gate, rate
// limit, fetch, status/type filters, redirect fixup, same-host filter,
// extraction, emit, and child enqueue. A nil return means "move on to
// the next item"; it does not imply success, since recoverable
// failures (fetch errors, non-200 status, non-HTML content) are logged
// and swallowed here by design.
func (w *worker) process(ctx context.Context, item workItem) error {
	w.mem.check()
	w.state.incChecked()

	if w.state.pageCapReached() {
		return nil
	}

	if err := acquireSlot(ctx, w.sem); err != nil {
		return nil
	}
	held := true
	release := func() {
		if held {
			<-w.sem
			held = false
		}
	}
	defer release()

	if w.opts.RateLimiter != nil {
		if err := w.opts.RateLimiter.Acquire(ctx); err != nil {
			return nil
		}
	}

	start := time.Now()
	resp, err := w.engine.fetcher.Fetch(ctx, item.url)
	elapsed := time.Since(start)
	if obs, ok := w.opts.RateLimiter.(rttObserver); ok {
		obs.ObserveRTT(elapsed)
	}

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrFetch, err)
		w.opts.Logger.Warn("fetch failed", "url", item.url, "parent", item.parent, "error", err)
		w.emit(item, 0, err)
		return nil
	}

	if resp.Status != 200 {
		w.opts.Logger.Warn("non-success status", "url", item.url, "parent", item.parent, "status", resp.Status)
		w.emit(item, resp.Status, nil)
		return nil
	}

	if !strings.Contains(strings.ToLower(resp.ContentType), "text/html") {
		w.emit(item, resp.Status, nil)
		return nil
	}

	final, err := urlutil.Normalize(resp.URL)
	if err != nil {
		return fmt.Errorf("%w: normalize final url %q: %v", ErrUnexpected, resp.URL, err)
	}
	w.visited.Add(final)

	sameHost, err := urlutil.SameHost(final, w.seed)
	if err != nil {
		return fmt.Errorf("%w: compare host for %q: %v", ErrUnexpected, final, err)
	}
	if !sameHost {
		w.emit(item, resp.Status, nil)
		return nil
	}

	baseURL, err := url.Parse(final)
	if err != nil {
		return fmt.Errorf("%w: parse final url %q: %v", ErrUnexpected, final, err)
	}
	links, err := ExtractLinks(strings.NewReader(resp.Body), baseURL)
	if err != nil {
		return fmt.Errorf("%w: extract links from %q: %v", ErrUnexpected, final, err)
	}

	emitted := w.state.incPagesEmitted()
	w.emit(item, resp.Status, nil)

	release()
	select {
	case w.out <- result.CrawlResult{URL: final, Links: links}:
	case <-ctx.Done():
		return nil
	}

	if w.opts.MaxPages != nil && emitted >= *w.opts.MaxPages {
		return nil
	}
	w.enqueueChildren(final, item.depth, links)
	return nil
}

// enqueueChildren applies the five enqueue predicates from the worker
// loop in order, inserting into visited only the links that pass all
// of them — so a link rejected for host or robots reasons leaves no
// trace and can be reconsidered if reached by a different path.
func (w *worker) enqueueChildren(parent string, parentDepth int, links []string) {
	childDepth := parentDepth + 1
	for _, link := range links {
		if w.visited.Contains(link) {
			continue
		}
		sameHost, err := urlutil.SameHost(link, w.seed)
		if err != nil || !sameHost {
			continue
		}
		if !w.oracle.Allowed(w.opts.UserAgent, link) {
			continue
		}
		if !w.state.depthAllowed(childDepth) {
			continue
		}
		maxVisited := 0
		if w.opts.MaxVisited != nil {
			maxVisited = *w.opts.MaxVisited
		}
		if !w.visited.AddIfNewBounded(link, maxVisited) {
			continue
		}
		w.state.enqueue(workItem{url: link, parent: parent, depth: childDepth})
	}
}

// emit sends a best-effort progress event; it never blocks, since a
// slow or absent consumer must not stall a crawl worker.
func (w *worker) emit(item workItem, status int, err error) {
	if w.opts.Progress == nil {
		return
	}
	checked, emitted := w.state.counts()
	evt := CrawlEvent{
		URL:        item.url,
		ParentURL:  item.parent,
		Depth:      item.depth,
		StatusCode: status,
		Checked:    checked,
		Emitted:    emitted,
	}
	if err != nil {
		evt.Error = err.Error()
	}
	select {
	case w.opts.Progress <- evt:
	default:
	}
}

// acquireSlot blocks until sem has capacity or ctx is done.
func acquireSlot(ctx context.Context, sem chan struct{}) error {
	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

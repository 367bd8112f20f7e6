package crawler

import "sync"

// workItem is a single queued crawl target: the URL to fetch, the page
// it was discovered on, and its distance from the seed.
type workItem struct {
	url    string
	parent string
	depth  int
}

// engineState is the mutex-guarded core the spec describes: a FIFO
// queue, an in-flight worker count, a running emitted-page count, and
// the progress-changed condition variable that lets dequeue block
// without spinning. Every method takes and releases the same mutex; no
// method blocks while holding it except cond.Wait, which releases the
// lock for its duration.
type engineState struct {
	mu   sync.Mutex
	cond *sync.Cond

	queue      []workItem
	inProgress int
	canceled   bool

	checked      int
	pagesEmitted int
	maxPages     *int
	maxDepth     *int
	maxVisited   *int
}

func newEngineState(maxPages, maxDepth, maxVisited *int) *engineState {
	s := &engineState{maxPages: maxPages, maxDepth: maxDepth, maxVisited: maxVisited}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// enqueue appends item to the queue and wakes any worker blocked in
// dequeue.
func (s *engineState) enqueue(item workItem) {
	s.mu.Lock()
	s.queue = append(s.queue, item)
	s.mu.Unlock()
	s.cond.Broadcast()
}

// dequeue returns the next item in FIFO order, incrementing in_progress
// for it before releasing the mutex — the pop and the increment happen
// in the same critical section, so no racing worker can observe
// queue-empty && in_progress==0 in the gap between them. If the queue
// is empty it waits on progress-changed as long as some worker is
// still in flight (it might enqueue more work); once no worker is in
// flight and the queue is empty, or the crawl has been canceled, it
// returns ok=false. Every true return must be paired with exitCritical.
func (s *engineState) dequeue() (workItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.canceled {
			return workItem{}, false
		}
		if len(s.queue) > 0 {
			item := s.queue[0]
			s.queue = s.queue[1:]
			s.inProgress++
			return item, true
		}
		if s.inProgress == 0 {
			return workItem{}, false
		}
		s.cond.Wait()
	}
}

// exitCritical marks a worked item as done and wakes waiters, since
// this may be the last item and dequeue needs to recheck the
// queue-empty-and-idle condition.
func (s *engineState) exitCritical() {
	s.mu.Lock()
	s.inProgress--
	s.mu.Unlock()
	s.cond.Broadcast()
}

// cancel stops all future dequeues from blocking, used when the crawl's
// context is done.
func (s *engineState) cancel() {
	s.mu.Lock()
	s.canceled = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// pageCapReached reports whether max_pages has been hit.
func (s *engineState) pageCapReached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxPages != nil && s.pagesEmitted >= *s.maxPages
}

// incChecked increments and returns the new dequeued-item count, used
// only for progress reporting.
func (s *engineState) incChecked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked++
	return s.checked
}

// incPagesEmitted increments and returns the new emitted-page count.
func (s *engineState) incPagesEmitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pagesEmitted++
	return s.pagesEmitted
}

// counts returns the current checked and emitted totals, for progress
// reporting.
func (s *engineState) counts() (checked, emitted int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checked, s.pagesEmitted
}

// depthAllowed reports whether depth may still be enqueued.
func (s *engineState) depthAllowed(depth int) bool {
	return s.maxDepth == nil || depth <= *s.maxDepth
}

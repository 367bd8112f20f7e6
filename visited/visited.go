// Package visited implements the crawl engine's VisitedSet: an exact,
// monotonic set of canonical URLs that have been enqueued or observed
// as a redirect target.
package visited

import "sync"

// Set is the authoritative visited-URL tracker. It is safe for
// concurrent use through its own mutex; the engine calls it without
// holding its queue mutex, inserting a URL here before enqueueing it.
type Set struct {
	mu        sync.Mutex
	entries   map[string]struct{}
	prefilter *DiskPrefilter
}

// New creates an empty visited set. prefilter may be nil; when set, it
// is consulted first as a fast-path "definitely not visited" check
// before the exact map is touched.
func New(prefilter *DiskPrefilter) *Set {
	return &Set{
		entries:   make(map[string]struct{}),
		prefilter: prefilter,
	}
}

// Contains reports whether url is already in the set.
func (s *Set) Contains(url string) bool {
	if s.prefilter != nil && !s.prefilter.MaybeContains(url) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[url]
	return ok
}

// Add inserts url into the set. It is idempotent.
func (s *Set) Add(url string) {
	s.mu.Lock()
	s.entries[url] = struct{}{}
	s.mu.Unlock()
	if s.prefilter != nil {
		s.prefilter.Add(url)
	}
}

// AddIfNew atomically checks membership and inserts url if absent.
// Returns true if url was new.
func (s *Set) AddIfNew(url string) bool {
	s.mu.Lock()
	_, exists := s.entries[url]
	if !exists {
		s.entries[url] = struct{}{}
	}
	s.mu.Unlock()
	if !exists && s.prefilter != nil {
		s.prefilter.Add(url)
	}
	return !exists
}

// AddIfNewBounded atomically checks membership, the max_visited cap,
// and insertion under a single lock acquisition, so two workers racing
// against a cap near its limit cannot both observe room and both
// insert. Returns true only if url was new and the set had room for it
// (max <= 0 means unbounded).
func (s *Set) AddIfNewBounded(url string, max int) bool {
	s.mu.Lock()
	_, exists := s.entries[url]
	admit := !exists && (max <= 0 || len(s.entries) < max)
	if admit {
		s.entries[url] = struct{}{}
	}
	s.mu.Unlock()
	if admit && s.prefilter != nil {
		s.prefilter.Add(url)
	}
	return admit
}

// Len returns the number of visited URLs.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

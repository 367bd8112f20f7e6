package crawler

import (
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
)

// throttleLevel indicates memory-pressure severity, reported via the
// engine's logger only — it is a diagnostic, not a control-flow gate.
// The spec's caps are max_pages/max_depth/max_visited, not a memory
// cap, so memoryWatcher never rejects or delays work on its own.
type throttleLevel int

const (
	throttleNormal throttleLevel = iota
	throttleWarning
	throttleCritical
)

// memoryWatcher polls heap usage against a soft limit and logs when
// the pressure level changes, using runtime/debug.SetMemoryLimit
// (Go 1.19+) to also ask the runtime to collect more eagerly.
type memoryWatcher struct {
	mu         sync.Mutex
	limitBytes int64
	lastLevel  throttleLevel
	logger     *slog.Logger
}

// newMemoryWatcher creates a watcher with the given soft limit in
// megabytes. A limitMB <= 0 disables the watcher (check is a no-op).
func newMemoryWatcher(limitMB int64, logger *slog.Logger) *memoryWatcher {
	limitBytes := limitMB * 1024 * 1024
	if limitBytes > 0 {
		debug.SetMemoryLimit(limitBytes)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &memoryWatcher{limitBytes: limitBytes, logger: logger, lastLevel: throttleNormal}
}

// check reads current heap usage and logs a warning on a level
// transition. It is safe to call frequently; callers typically call it
// once per dequeued work item.
func (m *memoryWatcher) check() {
	m.mu.Lock()
	limitBytes := m.limitBytes
	m.mu.Unlock()
	if limitBytes <= 0 {
		return
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	usedPercent := float64(stats.HeapAlloc) / float64(limitBytes) * 100

	var level throttleLevel
	switch {
	case usedPercent >= 90:
		level = throttleCritical
	case usedPercent >= 75:
		level = throttleWarning
	default:
		level = throttleNormal
	}

	m.mu.Lock()
	changed := level != m.lastLevel
	m.lastLevel = level
	m.mu.Unlock()

	if changed && level != throttleNormal {
		m.logger.Warn("memory pressure", "level", level, "heap_alloc_bytes", stats.HeapAlloc, "used_percent", usedPercent)
	}
}

package crawler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMemoryWatcherDisabledByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := newMemoryWatcher(0, logger)
	for i := 0; i < 5; i++ {
		m.check()
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output with limitMB=0, got %q", buf.String())
	}
}

func TestMemoryWatcherLogsOnlyOnTransition(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := newMemoryWatcher(1<<40, logger) // huge limit: usage stays "normal"
	for i := 0; i < 10; i++ {
		m.check()
	}
	if strings.Contains(buf.String(), "memory pressure") {
		t.Errorf("expected no warning at normal usage, got %q", buf.String())
	}
}

func TestMemoryWatcherNilLoggerDefaultsToSlogDefault(t *testing.T) {
	m := newMemoryWatcher(0, nil)
	if m.logger == nil {
		t.Fatal("expected a non-nil default logger")
	}
	m.check() // must not panic
}

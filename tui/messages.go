package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/sitecrawl/crawler"
	"github.com/lukemcguire/sitecrawl/result"
)

// CrawlProgressMsg reports progress for a single dequeued URL.
type CrawlProgressMsg struct {
	Checked int
	Emitted int
	URL     string
}

// CrawlResultMsg carries one emitted page for the running summary.
type CrawlResultMsg struct {
	Result result.CrawlResult
	More   bool
}

// CrawlDoneMsg signals the crawl has finished, successfully or not.
type CrawlDoneMsg struct {
	Err error
}

// waitForProgress returns a tea.Cmd that reads one event from ch. A
// closed channel yields a zero-value message and is simply not
// resubscribed to by Update.
func waitForProgress(ch <-chan crawler.CrawlEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return CrawlProgressMsg{Checked: evt.Checked, Emitted: evt.Emitted, URL: evt.URL}
	}
}

// waitForResult returns a tea.Cmd that reads one result from the
// stream. When the stream closes it reports the final error (nil on a
// clean finish) via CrawlDoneMsg.
func waitForResult(stream *crawler.Stream) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-stream.Results()
		if !ok {
			return CrawlDoneMsg{Err: stream.Err()}
		}
		return CrawlResultMsg{Result: r, More: true}
	}
}

// Package tui provides the Bubble Tea terminal UI for sitecrawl,
// showing live crawl progress and a styled summary of emitted pages.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcguire/sitecrawl/crawler"
	"github.com/lukemcguire/sitecrawl/result"
)

// Model is the Bubble Tea model for the crawl TUI. The crawl itself is
// already running by the time a Model is constructed — NewModel only
// subscribes to its progress and result streams.
type Model struct {
	cancel     context.CancelFunc
	stream     *crawler.Stream
	progressCh <-chan crawler.CrawlEvent
	spinner    spinner.Model
	start      time.Time

	checked  int
	emitted  int
	current  string
	quitting bool
	done     bool
	results  []result.CrawlResult
	err      error
	width    int
}

// NewModel creates a TUI model that listens to stream and progressCh.
// cancel is called on user-initiated quit (ctrl+c / q).
func NewModel(cancel context.CancelFunc, stream *crawler.Stream, progressCh <-chan crawler.CrawlEvent) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		cancel:     cancel,
		stream:     stream,
		progressCh: progressCh,
		spinner:    spin,
		start:      time.Now(),
	}
}

// Init starts the spinner and both subscriptions.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForProgress(m.progressCh), waitForResult(m.stream))
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case CrawlProgressMsg:
		m.checked = msg.Checked
		m.emitted = msg.Emitted
		m.current = msg.URL
		return m, waitForProgress(m.progressCh)

	case CrawlResultMsg:
		m.results = append(m.results, msg.Result)
		return m, waitForResult(m.stream)

	case CrawlDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.done {
		return RenderSummary(m.results, time.Since(m.start))
	}
	return fmt.Sprintf("%s Crawling... checked %d, emitted %d\n%s\n",
		m.spinner.View(), m.checked, m.emitted,
		dimStyle.Render("  "+m.current))
}

// Results returns every page emitted before the crawl finished.
func (m Model) Results() []result.CrawlResult {
	return m.results
}

// Err returns the crawl's terminal error, if any.
func (m Model) Err() error {
	return m.err
}

package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/sitecrawl/crawler"
	"github.com/lukemcguire/sitecrawl/fetch"
	"github.com/lukemcguire/sitecrawl/result"
)

// deadEndFetcher answers every fetch with a 404, so a test crawl
// started against it finishes almost immediately.
type deadEndFetcher struct{}

func (deadEndFetcher) Fetch(ctx context.Context, rawURL string) (fetch.Response, error) {
	return fetch.Response{URL: rawURL, Status: 404}, nil
}

func newTestModel() (Model, context.CancelFunc) {
	_, cancel := context.WithCancel(context.Background())
	progressCh := make(chan crawler.CrawlEvent, 10)
	e := crawler.New(deadEndFetcher{})
	stream, _ := e.Crawl(context.Background(), "https://example.com", crawler.Options{MaxConcurrency: 1})
	return NewModel(cancel, stream, progressCh), cancel
}

func TestNewModel(t *testing.T) {
	model, _ := newTestModel()
	if model.checked != 0 || model.emitted != 0 {
		t.Error("expected initial counters to be zero")
	}
	if model.done {
		t.Error("expected done to be false initially")
	}
}

func TestInitReturnsBatchCmd(t *testing.T) {
	model, _ := newTestModel()
	cmd := model.Init()
	if cmd == nil {
		t.Error("Init() should return a non-nil batch command")
	}
}

func TestUpdateCrawlProgressMsg(t *testing.T) {
	model := Model{progressCh: make(chan crawler.CrawlEvent, 10)}

	msg := CrawlProgressMsg{Checked: 5, Emitted: 1, URL: "https://example.com/page"}
	updatedModel, cmd := model.Update(msg)
	updated := updatedModel.(Model)

	if updated.checked != 5 {
		t.Errorf("expected checked=5, got %d", updated.checked)
	}
	if updated.emitted != 1 {
		t.Errorf("expected emitted=1, got %d", updated.emitted)
	}
	if updated.current != "https://example.com/page" {
		t.Errorf("expected current URL to be set, got %s", updated.current)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd to re-subscribe to progress channel")
	}
}

func TestUpdateCrawlResultMsg(t *testing.T) {
	model := Model{}
	res := result.CrawlResult{URL: "https://example.com", Links: []string{"https://example.com/a"}}

	updatedModel, cmd := model.Update(CrawlResultMsg{Result: res})
	updated := updatedModel.(Model)

	if len(updated.results) != 1 || updated.results[0].URL != res.URL {
		t.Errorf("expected result to be appended, got %+v", updated.results)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd to re-subscribe to result stream")
	}
}

func TestUpdateCrawlDoneMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(CrawlDoneMsg{Err: nil})
	updated := updatedModel.(Model)

	if !updated.done {
		t.Error("expected done=true after CrawlDoneMsg")
	}
	if updated.err != nil {
		t.Errorf("expected nil err, got %v", updated.err)
	}
}

func TestUpdateSpinnerTickMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(spinner.TickMsg{})
	_ = updatedModel.(Model)
}

func TestUpdateWindowSizeMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updated := updatedModel.(Model)
	if updated.width != 120 {
		t.Errorf("expected width=120, got %d", updated.width)
	}
}

func TestViewInProgress(t *testing.T) {
	model := Model{checked: 3, emitted: 1, current: "https://example.com/checking"}
	output := model.View()
	if !strings.Contains(output, "Crawling") {
		t.Errorf("expected 'Crawling' in progress view, got: %s", output)
	}
	if !strings.Contains(output, "3") {
		t.Errorf("expected checked count in view, got: %s", output)
	}
}

func TestViewDoneWithResults(t *testing.T) {
	model := Model{
		done:    true,
		results: []result.CrawlResult{{URL: "https://example.com", Links: []string{"https://example.com/a"}}},
	}
	output := model.View()
	if !strings.Contains(output, "example.com") {
		t.Errorf("expected emitted URL in done view, got: %s", output)
	}
	if !strings.Contains(output, "Emitted 1 pages") {
		t.Errorf("expected total in done view, got: %s", output)
	}
}

func TestViewDoneWithError(t *testing.T) {
	model := Model{done: true, err: context.Canceled}
	output := model.View()
	if !strings.Contains(output, "Error") {
		t.Errorf("expected error message in done view, got: %s", output)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	output := RenderSummary(nil, time.Second)
	if !strings.Contains(output, "No pages emitted") {
		t.Errorf("expected empty-crawl message, got: %s", output)
	}
}

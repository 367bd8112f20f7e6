package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/sitecrawl/result"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	urlStyle     = lipgloss.NewStyle()
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// RenderSummary produces a Lip Gloss styled table of every page
// emitted during a crawl, followed by a one-line total.
func RenderSummary(results []result.CrawlResult, elapsed time.Duration) string {
	var builder strings.Builder

	if len(results) == 0 {
		builder.WriteString(successStyle.Render("No pages emitted."))
		builder.WriteString("\n")
		return builder.String()
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.URL, fmt.Sprintf("%d", len(r.Links))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("URL", "Links").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return countStyle
			}
			return urlStyle
		}).
		Rows(rows...)

	builder.WriteString(t.Render())
	builder.WriteString("\n\n")
	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Emitted %d pages in %s", len(results), elapsed.Round(time.Millisecond),
	)))
	builder.WriteString("\n")

	return builder.String()
}

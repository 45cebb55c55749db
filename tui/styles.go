package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/linkrot/result"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	successStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	kindStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle         = lipgloss.NewStyle().Faint(true)
	urlStyle         = lipgloss.NewStyle()
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderSummary produces a Lip Gloss styled summary of crawl results.
func RenderSummary(res *result.Result) string {
	if res == nil {
		return errorStyle.Render("No results available.")
	}

	var builder strings.Builder

	if !res.HasBroken() {
		builder.WriteString(successStyle.Render("No broken resources found!"))
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render(fmt.Sprintf(
			"Checked %d resources across %d pages in %s",
			res.Stats.TotalResources,
			res.Stats.PagesVisited,
			res.Stats.Duration.Round(time.Millisecond),
		)))
		builder.WriteString("\n")
		return builder.String()
	}

	grouped := result.GroupByKind(res.BrokenResources)
	for _, kind := range result.Kinds {
		resources := grouped[kind]
		if len(resources) == 0 {
			continue
		}

		builder.WriteString(kindStyle.Render(fmt.Sprintf("## %s (%d)", result.FormatKind(kind), len(resources))))
		builder.WriteString("\n")

		rows := make([][]string, 0, len(resources))
		for _, r := range resources {
			rows = append(rows, []string{r.URL, statusText(r), result.FormatCategory(r.ErrorCategory), r.SourcePage})
		}

		kindTable := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("URL", "Status", "Error Type", "Found On").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 1 || col == 2 {
					return statusErrorStyle
				}
				return urlStyle
			}).
			Rows(rows...)

		builder.WriteString(kindTable.Render())
		builder.WriteString("\n\n")
	}

	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Found %d broken resources out of %d checked (%.1f%%) across %d pages in %s",
		res.Stats.BrokenCount,
		res.Stats.TotalResources,
		res.Stats.BrokenPercentage,
		res.Stats.PagesVisited,
		res.Stats.Duration.Round(time.Millisecond),
	)))
	builder.WriteString("\n")

	return builder.String()
}

// statusText prefers the failure detail over a bare status code.
func statusText(r result.Resource) string {
	if r.Error != "" {
		return r.Error
	}
	if r.StatusCode > 0 {
		return strconv.Itoa(r.StatusCode)
	}
	return "-"
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/linkrot/crawler"
	"github.com/lukemcguire/linkrot/result"
)

// CrawlProgressMsg reports progress after one page has been processed.
type CrawlProgressMsg struct {
	Pages   int
	Checked int
	Broken  int
	Queued  int
	URL     string
}

// CrawlDoneMsg signals the crawl has completed. Result may be partial when
// Err is set.
type CrawlDoneMsg struct {
	Result *result.Result
	Err    error
}

// progressClosedMsg is sent once the progress channel has been closed.
type progressClosedMsg struct{}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel. The final result always arrives through startCrawl.
func waitForProgress(ch <-chan crawler.CrawlEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return progressClosedMsg{}
		}
		return CrawlProgressMsg{
			Pages:   evt.Pages,
			Checked: evt.Checked,
			Broken:  evt.Broken,
			Queued:  evt.Queued,
			URL:     evt.URL,
		}
	}
}

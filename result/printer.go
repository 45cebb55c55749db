package result

import (
	"fmt"
	"io"
)

// PrintResults writes the broken resource report followed by the crawl
// statistics to w.
func PrintResults(w io.Writer, res *Result) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	_ = WriteReport(w, res.BrokenResources)

	stats := res.Stats
	writef("\nCrawl Statistics:\n")
	writef("Total URLs crawled: %d\n", stats.PagesVisited)
	writef("Total resources checked: %d\n", stats.TotalResources)
	writef("Broken resources: %d (%.1f%%)\n", stats.BrokenCount, stats.BrokenPercentage)

	if stats.BrokenCount > 0 {
		writef("\nBroken resources by type:\n")
		for _, kind := range Kinds {
			if n := stats.BrokenByKind[kind]; n > 0 {
				writef("  %s: %d\n", kind, n)
			}
		}
	}
}

package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

type jsonStats struct {
	CrawlStats
	DurationMS int64 `json:"duration_ms"`
}

type jsonReport struct {
	CrawlID         string     `json:"crawl_id"`
	SeedURL         string     `json:"seed_url"`
	Stats           jsonStats  `json:"stats"`
	BrokenResources []Resource `json:"broken_resources"`
}

// WriteJSON writes the crawl summary and its broken resources as a formatted
// JSON object to the writer.
func WriteJSON(w io.Writer, res *Result) error {
	report := jsonReport{
		CrawlID:         res.CrawlID,
		SeedURL:         res.SeedURL,
		Stats:           jsonStats{CrawlStats: res.Stats, DurationMS: res.Stats.Duration.Milliseconds()},
		BrokenResources: res.BrokenResources,
	}
	if report.BrokenResources == nil {
		report.BrokenResources = []Resource{}
	}
	if report.Stats.ByKind == nil {
		report.Stats.ByKind = map[Kind]int{}
	}
	if report.Stats.BrokenByKind == nil {
		report.Stats.BrokenByKind = map[Kind]int{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// csvHeader is the column order of WriteCSV.
var csvHeader = []string{"url", "kind", "status_code", "error_type", "error", "source_page"}

// WriteCSV writes resources as CSV to the writer.
// Always includes a header row, even if there are no resources.
func WriteCSV(w io.Writer, resources []Resource) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, res := range resources {
		record := []string{
			res.URL,
			string(res.Kind),
			statusCodeStr(res.StatusCode),
			string(res.ErrorCategory),
			res.Error,
			res.SourcePage,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record for %s: %w", res.URL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

// statusCodeStr converts an HTTP status code to a string.
// Returns empty string for 0 (no HTTP status).
func statusCodeStr(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}

package result

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// NoBrokenMessage is written in place of a report when nothing is broken.
const NoBrokenMessage = "No broken resources found."

// WriteReport writes a markdown report of the broken resources, one section
// per kind in Kinds order.
func WriteReport(w io.Writer, broken []Resource) error {
	bw := bufio.NewWriter(w)

	if len(broken) == 0 {
		_, _ = fmt.Fprintln(bw, NoBrokenMessage)
		return flushReport(bw)
	}

	_, _ = fmt.Fprint(bw, "# Broken Resources Report\n\n")

	grouped := GroupByKind(broken)
	for _, kind := range orderedKinds(grouped) {
		resources := grouped[kind]
		_, _ = fmt.Fprintf(bw, "## %s (%d)\n", kindTitle(kind), len(resources))
		for _, res := range resources {
			_, _ = fmt.Fprintf(bw, "- %s\n", res.URL)
			if res.StatusCode != 0 {
				_, _ = fmt.Fprintf(bw, "  Status: %d\n", res.StatusCode)
			} else {
				_, _ = fmt.Fprint(bw, "  Connection Error\n")
			}
			if res.Error != "" {
				_, _ = fmt.Fprintf(bw, "  Error: %s\n", res.Error)
			}
			if res.SourcePage != "" {
				_, _ = fmt.Fprintf(bw, "  Found on: %s\n", res.SourcePage)
			}
			_, _ = fmt.Fprint(bw, "\n")
		}
	}

	return flushReport(bw)
}

func flushReport(bw *bufio.Writer) error {
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// orderedKinds returns the kinds present in grouped, known kinds first.
func orderedKinds(grouped map[Kind][]Resource) []Kind {
	kinds := make([]Kind, 0, len(grouped))
	for _, kind := range Kinds {
		if _, ok := grouped[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	for kind := range grouped {
		if !isKnownKind(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func isKnownKind(kind Kind) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func kindTitle(kind Kind) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

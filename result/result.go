// Package result holds the data produced by a crawl: checked resources,
// error classification, aggregate statistics and the writers that render
// them.
package result

import "time"

// Kind is the type of reference a Resource was discovered through.
type Kind string

const (
	KindLink       Kind = "link"
	KindImage      Kind = "image"
	KindStylesheet Kind = "stylesheet"
	KindScript     Kind = "script"
)

// Kinds lists every Kind in report order.
var Kinds = []Kind{KindLink, KindImage, KindStylesheet, KindScript}

// Resource is one discovered reference and the outcome of checking it.
type Resource struct {
	URL           string        `json:"url"`                   // Normalized absolute URL, no fragment
	Kind          Kind          `json:"kind"`                  // How the resource was referenced
	StatusCode    int           `json:"status_code,omitempty"` // HTTP status code (0 if unchecked or unreachable)
	Broken        bool          `json:"broken"`                // Whether the check concluded failure
	Error         string        `json:"error,omitempty"`       // Failure detail, set only when Broken
	ErrorCategory ErrorCategory `json:"error_type,omitempty"`  // Classification of the failure
	SourcePage    string        `json:"source_page,omitempty"` // Page the reference was found on
}

// CrawlStats contains aggregate statistics for a crawl operation.
type CrawlStats struct {
	PagesVisited     int           `json:"pages_visited"`     // Pages whose fetch completed, failed ones included
	TotalResources   int           `json:"total_resources"`   // Distinct resource URLs observed
	TotalChecks      int           `json:"total_checks"`      // Resource checks performed
	BrokenCount      int           `json:"broken_count"`      // Distinct resource URLs found broken
	BrokenPercentage float64       `json:"broken_percentage"` // BrokenCount / TotalResources * 100
	ByKind           map[Kind]int  `json:"by_kind"`           // Distinct resources per kind
	BrokenByKind     map[Kind]int  `json:"broken_by_kind"`    // Distinct broken resources per kind
	Duration         time.Duration `json:"-"`                 // Total time taken for the crawl
}

// Result represents the complete output of a crawl.
type Result struct {
	CrawlID         string              // Unique identifier of the crawl run
	SeedURL         string              // Normalized start URL
	BrokenResources []Resource          // Every broken resource, in discovery order
	AllResources    map[string]Resource // Latest record per resource URL
	Visited         map[string]int      // Scheduled page URL -> BFS depth, abandoned pages included
	Stats           CrawlStats          // Aggregate statistics
}

// HasBroken reports whether the crawl found any broken resource.
func (r *Result) HasBroken() bool {
	return r != nil && len(r.BrokenResources) > 0
}

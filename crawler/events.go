package crawler

import "github.com/lukemcguire/linkrot/result"

// CrawlEvent reports progress after a page has been fetched and its
// resources checked.
type CrawlEvent struct {
	URL           string               // Page that was processed
	Depth         int                  // BFS depth of the page
	StatusCode    int                  // Status of the page fetch (0 on transport failure)
	Error         string               // Fetch failure detail, if any
	ErrorCategory result.ErrorCategory // Classification of Error
	Pages         int                  // Pages processed so far
	Checked       int                  // Resource checks performed so far
	Broken        int                  // Broken resources recorded so far
	Queued        int                  // Pages waiting to be fetched
}

package crawler

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/linkrot/result"
)

// pageJob represents a page to be fetched.
type pageJob struct {
	URL        string // The page to fetch
	Depth      int    // BFS depth the page was first discovered at
	SourcePage string // The page where this link was found (empty for the seed)
}

// pageResult represents the outcome of fetching one page and checking its
// resources.
type pageResult struct {
	Job         pageJob           // The original job
	StatusCode  int               // Status of the page fetch
	Failure     *result.Resource  // Broken record for the page itself when the fetch failed
	Resources   []result.Resource // Checked resources found on the page
	Interrupted bool              // The crawl stopped before the page was fetched
}

// processPage fetches job.URL, extracts its resources and checks each of
// them concurrently.
func (c *Crawler) processPage(ctx context.Context, checker *Checker, job pageJob) pageResult {
	res := pageResult{Job: job}

	resp, err := acquireAndDo(ctx, c.limit, c.client, Request{
		Method:   http.MethodGet,
		URL:      job.URL,
		ReadBody: true,
	})
	if err != nil {
		if interrupted(ctx, err) {
			res.Interrupted = true
			return res
		}
		failure := errorOutcome(err).apply(pageResource(job))
		res.Failure = &failure
		return res
	}

	res.StatusCode = resp.StatusCode
	if resp.StatusCode >= 400 {
		failure := statusOutcome(resp.StatusCode).apply(pageResource(job))
		res.Failure = &failure
		return res
	}

	if !isHTMLContentType(resp.ContentType) {
		c.logger.Debug("skipping non-HTML page",
			zap.String("url", job.URL),
			zap.String("content_type", resp.ContentType))
		return res
	}

	resources, err := Extract(c.parser, bytes.NewReader(resp.Body), job.URL)
	if err != nil {
		c.logger.Warn("partial extraction", zap.String("url", job.URL), zap.Error(err))
	}

	res.Resources = checkAll(ctx, checker, resources)
	return res
}

// pageResource describes a page as the link that led to it.
func pageResource(job pageJob) result.Resource {
	return result.Resource{
		URL:        job.URL,
		Kind:       result.KindLink,
		SourcePage: job.SourcePage,
	}
}

// checkAll checks every resource concurrently and returns them in input
// order. Checks abandoned because ctx ended are left out.
func checkAll(ctx context.Context, checker *Checker, resources []result.Resource) []result.Resource {
	outcomes := make([]checkOutcome, len(resources))
	var g errgroup.Group
	for i, res := range resources {
		g.Go(func() error {
			outcomes[i] = checker.outcome(ctx, res)
			return nil
		})
	}
	_ = g.Wait()

	checked := make([]result.Resource, 0, len(resources))
	for i, out := range outcomes {
		if out.Interrupted {
			continue
		}
		checked = append(checked, out.apply(resources[i]))
	}
	return checked
}

// isHTMLContentType reports whether a Content-Type header value denotes a
// page worth parsing. A missing header is treated as HTML.
func isHTMLContentType(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return true
	default:
		return false
	}
}

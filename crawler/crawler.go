// Package crawler provides a concurrent breadth-first crawler that checks
// every link, image, stylesheet and script it finds on a site.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lukemcguire/linkrot/markup"
	"github.com/lukemcguire/linkrot/metrics"
	"github.com/lukemcguire/linkrot/result"
	"github.com/lukemcguire/linkrot/urlutil"
)

// ErrInvalidSeed is returned by New when the start URL is not an absolute
// http or https URL.
var ErrInvalidSeed = errors.New("invalid start URL")

// Crawler coordinates BFS page fetching with a concurrent worker pool.
type Crawler struct {
	cfg        Config
	seed       string
	baseDomain string
	client     Client
	parser     markup.Parser
	limit      *semaphore.Weighted
	logger     *zap.Logger
	metrics    *metrics.Recorder
	progressCh chan<- CrawlEvent
}

// Option customizes a Crawler.
type Option func(*Crawler)

// WithClient replaces the HTTP client.
func WithClient(client Client) Option {
	return func(c *Crawler) { c.client = client }
}

// WithParser selects the markup parser. The default is markup.Tokenizer.
func WithParser(parser markup.Parser) Option {
	return func(c *Crawler) { c.parser = parser }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Crawler) { c.logger = logger }
}

// WithMetrics records crawl activity on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Crawler) { c.metrics = rec }
}

// New creates a Crawler with the given configuration.
// The progressCh parameter is optional; pass nil to disable progress events.
// The caller owns progressCh; Run never closes it.
func New(cfg Config, progressCh chan<- CrawlEvent, opts ...Option) (*Crawler, error) {
	cfg = cfg.withDefaults()

	seed, err := normalizeSeed(cfg.StartURL)
	if err != nil {
		return nil, err
	}

	c := &Crawler{
		cfg:        cfg,
		seed:       seed,
		baseDomain: urlutil.Host(seed),
		limit:      semaphore.NewWeighted(int64(cfg.Concurrency)),
		progressCh: progressCh,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.parser == nil {
		c.parser = markup.Tokenizer{}
	}
	if c.client == nil {
		c.client = NewHTTPClient(cfg, c.metrics)
	}

	return c, nil
}

func normalizeSeed(raw string) (string, error) {
	seed, err := urlutil.Normalize(raw, "")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if !urlutil.IsHTTPScheme(seed) {
		return "", fmt.Errorf("%w: %q is not http or https", ErrInvalidSeed, raw)
	}
	return seed, nil
}

// Seed returns the normalized start URL.
func (c *Crawler) Seed() string { return c.seed }

// Run crawls from the seed and returns every checked resource. Cancelling
// ctx stops dispatching new pages; Run then waits for in-flight pages and
// returns the partial result together with the context error.
func (c *Crawler) Run(ctx context.Context) (*result.Result, error) {
	start := time.Now()
	crawlID := uuid.NewString()
	logger := c.logger.With(zap.String("crawl_id", crawlID), zap.String("seed", c.seed))

	if c.cfg.CrawlTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CrawlTimeout)
		defer cancel()
	}

	cache, err := NewCheckCache(ctx, c.cfg.CheckCacheMB, c.metrics)
	if err != nil {
		return nil, err
	}
	defer func() {
		logger.Debug("check cache released", zap.Int("entries", cache.Len()))
		if closeErr := cache.Close(); closeErr != nil {
			logger.Warn("close check cache", zap.Error(closeErr))
		}
	}()
	checker := NewChecker(c.client, c.limit, cache)

	state := newCrawlState()
	state.visited.VisitIfNew(c.seed, 0)

	logger.Info("crawl started",
		zap.Int("max_depth", c.cfg.MaxDepth),
		zap.Int("concurrency", c.cfg.Concurrency))

	jobs := make(chan pageJob)
	results := make(chan pageResult)

	var workers errgroup.Group
	for range c.cfg.Concurrency {
		workers.Go(func() error {
			for job := range jobs {
				results <- c.processPage(ctx, checker, job)
			}
			return nil
		})
	}

	// Coordinator: hand out frontier pages and fold in finished ones until
	// both are exhausted. Dispatch and collection share one select so
	// neither channel can stall the other.
	frontier := []pageJob{{URL: c.seed}}
	inFlight := 0
	for {
		var (
			sendCh chan<- pageJob
			next   pageJob
			done   <-chan struct{}
		)
		if len(frontier) > 0 && ctx.Err() == nil {
			sendCh, next, done = jobs, frontier[0], ctx.Done()
		}
		if sendCh == nil && inFlight == 0 {
			break
		}

		select {
		case sendCh <- next:
			frontier = frontier[1:]
			inFlight++
		case res := <-results:
			inFlight--
			frontier = c.absorb(ctx, logger, state, res, frontier)
		case <-done:
		}
	}

	close(jobs)
	_ = workers.Wait()

	stats := result.ComputeStats(state.all, state.pages, state.checks)
	stats.Duration = time.Since(start)

	res := &result.Result{
		CrawlID:         crawlID,
		SeedURL:         c.seed,
		BrokenResources: state.broken,
		AllResources:    state.all,
		Visited:         state.visited.Snapshot(),
		Stats:           stats,
	}

	logger.Info("crawl finished",
		zap.Int("pages", stats.PagesVisited),
		zap.Int("scheduled", state.visited.Len()),
		zap.Int("resources", stats.TotalResources),
		zap.Int("broken", stats.BrokenCount),
		zap.Duration("duration", stats.Duration))

	if ctxErr := ctx.Err(); ctxErr != nil {
		if len(frontier) > 0 {
			logger.Warn("crawl interrupted", zap.Int("unfetched", len(frontier)))
		}
		return res, fmt.Errorf("crawl interrupted: %w", ctxErr)
	}
	return res, nil
}

// absorb records a finished page and appends its unvisited same-domain links
// to the frontier.
func (c *Crawler) absorb(ctx context.Context, logger *zap.Logger, state *crawlState, res pageResult, frontier []pageJob) []pageJob {
	if res.Interrupted {
		logger.Debug("page abandoned", zap.String("url", res.Job.URL))
		return frontier
	}
	state.pages++

	evt := CrawlEvent{
		URL:        res.Job.URL,
		Depth:      res.Job.Depth,
		StatusCode: res.StatusCode,
	}

	if res.Failure != nil {
		state.record(*res.Failure)
		c.metrics.ObservePage(true)
		logger.Warn("page fetch failed",
			zap.String("url", res.Job.URL),
			zap.Int("status", res.Failure.StatusCode),
			zap.String("error", res.Failure.Error))
		evt.Error = res.Failure.Error
		evt.ErrorCategory = res.Failure.ErrorCategory
	} else {
		c.metrics.ObservePage(false)
		logger.Debug("page fetched",
			zap.String("url", res.Job.URL),
			zap.Int("depth", res.Job.Depth),
			zap.Int("resources", len(res.Resources)))
	}

	nextDepth := res.Job.Depth + 1
	for _, r := range res.Resources {
		state.checks++
		state.record(r)
		c.metrics.ObserveCheck(string(r.Kind), r.Broken)

		if r.Broken || r.Kind != result.KindLink {
			continue
		}
		if !urlutil.IsSameDomain(r.URL, c.baseDomain) {
			continue
		}
		if c.cfg.MaxDepth >= 0 && nextDepth > c.cfg.MaxDepth {
			continue
		}
		if !state.visited.VisitIfNew(r.URL, nextDepth) {
			continue
		}
		frontier = append(frontier, pageJob{URL: r.URL, Depth: nextDepth, SourcePage: res.Job.URL})
	}

	evt.Pages = state.pages
	evt.Checked = state.checks
	evt.Broken = len(state.broken)
	evt.Queued = len(frontier)
	c.emit(ctx, evt)

	return frontier
}

func (c *Crawler) emit(ctx context.Context, evt CrawlEvent) {
	if c.progressCh == nil {
		return
	}
	select {
	case c.progressCh <- evt:
	case <-ctx.Done():
	}
}

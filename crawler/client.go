package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lukemcguire/linkrot/metrics"
	"github.com/lukemcguire/linkrot/result"
)

// maxRedirects mirrors the net/http default.
const maxRedirects = 10

// ErrRedirectLoop is returned when a request revisits a URL in its redirect
// chain or exceeds maxRedirects.
var ErrRedirectLoop = errors.New("redirect loop")

// Request describes a single outbound HTTP request.
type Request struct {
	Method   string
	URL      string
	ReadBody bool // Read up to the client's body limit into Response.Body
}

// Response is the outcome of a completed HTTP exchange.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	FinalURL    string // URL after redirects
}

// Client performs HTTP requests on behalf of the crawler.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// TransportError reports that no HTTP response was obtained.
type TransportError struct {
	Category result.ErrorCategory
	Err      error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// newTransportError classifies err and wraps it.
func newTransportError(err error) *TransportError {
	return &TransportError{
		Category: result.ClassifyError(err, 0, errors.Is(err, ErrRedirectLoop)),
		Err:      err,
	}
}

// HTTPClient is the net/http backed Client.
type HTTPClient struct {
	client       *http.Client
	userAgent    string
	username     string
	password     string
	timeout      time.Duration
	maxBodyBytes int64
	metrics      *metrics.Recorder
}

// NewHTTPClient builds a Client from the crawl configuration. rec may be nil.
func NewHTTPClient(cfg Config, rec *metrics.Recorder) *HTTPClient {
	cfg = cfg.withDefaults()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.Concurrency

	return &HTTPClient{
		client: &http.Client{
			Transport:     transport,
			CheckRedirect: checkRedirect,
		},
		userAgent:    cfg.UserAgent,
		username:     cfg.Username,
		password:     cfg.Password,
		timeout:      cfg.RequestTimeout,
		maxBodyBytes: cfg.MaxBodyBytes,
		metrics:      rec,
	}
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d redirects", ErrRedirectLoop, maxRedirects)
	}
	target := req.URL.String()
	for _, prev := range via {
		if prev.URL.String() == target {
			return fmt.Errorf("%w: %s revisited", ErrRedirectLoop, target)
		}
	}
	return nil
}

// Do sends req with the configured user agent and credentials, bounded by the
// per-request timeout.
func (c *HTTPClient) Do(ctx context.Context, req Request) (res Response, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveRequest(req.Method, res.StatusCode, err, time.Since(start))
	}()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, req.Method, req.URL, nil)
	if err != nil {
		return Response{}, newTransportError(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, newTransportError(err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil && req.ReadBody {
			err = newTransportError(fmt.Errorf("close response body: %w", closeErr))
		}
	}()

	res = Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}

	if req.ReadBody {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
		if readErr != nil {
			return Response{}, newTransportError(fmt.Errorf("read body: %w", readErr))
		}
		res.Body = body
	}

	return res, nil
}

package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/semaphore"

	"github.com/lukemcguire/linkrot/result"
)

// checkOutcome is the cacheable part of a check.
type checkOutcome struct {
	StatusCode int                  `json:"s,omitempty"`
	Broken     bool                 `json:"b,omitempty"`
	Err        string               `json:"e,omitempty"`
	Category   result.ErrorCategory `json:"c,omitempty"`

	// Interrupted marks a check abandoned because the crawl was stopped.
	// It carries no verdict and is never cached.
	Interrupted bool `json:"-"`
}

func (o checkOutcome) apply(res result.Resource) result.Resource {
	res.StatusCode = o.StatusCode
	res.Broken = o.Broken
	res.Error = o.Err
	res.ErrorCategory = o.Category
	return res
}

// statusOutcome judges a received HTTP status.
func statusOutcome(status int) checkOutcome {
	if status < 400 {
		return checkOutcome{StatusCode: status}
	}
	return checkOutcome{
		StatusCode: status,
		Broken:     true,
		Err:        fmt.Sprintf("HTTP Error: %d", status),
		Category:   result.ClassifyError(nil, status, false),
	}
}

// errorOutcome records a request that produced no HTTP status.
func errorOutcome(err error) checkOutcome {
	category := result.ClassifyError(err, 0, errors.Is(err, ErrRedirectLoop))
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		category = transportErr.Category
	}
	return checkOutcome{Broken: true, Err: err.Error(), Category: category}
}

// Checker decides whether a resource is reachable.
type Checker struct {
	client Client
	limit  *semaphore.Weighted
	cache  *CheckCache
}

// NewChecker returns a Checker issuing requests through client. limit bounds
// in-flight requests and cache memoizes outcomes; both may be nil.
func NewChecker(client Client, limit *semaphore.Weighted, cache *CheckCache) *Checker {
	return &Checker{client: client, limit: limit, cache: cache}
}

// Check probes res and returns it with its status and failure fields set.
// Links are probed with HEAD and retried with GET when HEAD reports a status
// of 400 or above. Every other kind is probed with GET. If ctx ends before a
// verdict is reached, res is returned unchecked and not broken.
func (c *Checker) Check(ctx context.Context, res result.Resource) result.Resource {
	return c.outcome(ctx, res).apply(res)
}

func (c *Checker) outcome(ctx context.Context, res result.Resource) checkOutcome {
	return c.cache.Do(ctx, checkKey(res), func() checkOutcome {
		return c.probe(ctx, res)
	})
}

func checkKey(res result.Resource) string {
	if res.Kind == result.KindLink {
		return http.MethodHead + " " + res.URL
	}
	return http.MethodGet + " " + res.URL
}

func (c *Checker) probe(ctx context.Context, res result.Resource) checkOutcome {
	if res.Kind == result.KindLink {
		resp, err := c.do(ctx, Request{Method: http.MethodHead, URL: res.URL})
		if err != nil {
			return c.failure(ctx, err)
		}
		if resp.StatusCode < 400 {
			return statusOutcome(resp.StatusCode)
		}
	}

	resp, err := c.do(ctx, Request{Method: http.MethodGet, URL: res.URL})
	if err != nil {
		return c.failure(ctx, err)
	}
	return statusOutcome(resp.StatusCode)
}

func (c *Checker) failure(ctx context.Context, err error) checkOutcome {
	if interrupted(ctx, err) {
		return checkOutcome{Interrupted: true}
	}
	return errorOutcome(err)
}

// interrupted reports whether err was caused by ctx ending rather than by
// the remote side.
func interrupted(ctx context.Context, err error) bool {
	ctxErr := ctx.Err()
	return ctxErr != nil && errors.Is(err, ctxErr)
}

func (c *Checker) do(ctx context.Context, req Request) (Response, error) {
	return acquireAndDo(ctx, c.limit, c.client, req)
}

// acquireAndDo sends req once a slot in limit is free.
func acquireAndDo(ctx context.Context, limit *semaphore.Weighted, client Client, req Request) (Response, error) {
	if limit != nil {
		if err := limit.Acquire(ctx, 1); err != nil {
			return Response{}, newTransportError(fmt.Errorf("wait for request slot: %w", err))
		}
		defer limit.Release(1)
	}
	return client.Do(ctx, req)
}

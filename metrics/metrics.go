// Package metrics exposes Prometheus collectors for crawl activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the crawl collectors. All methods are no-ops on a nil
// *Recorder.
type Recorder struct {
	pagesTotal             *prometheus.CounterVec
	checksTotal            *prometheus.CounterVec
	cacheLookupsTotal      *prometheus.CounterVec
	requestsTotal          *prometheus.CounterVec
	requestDurationSeconds *prometheus.HistogramVec
}

// NewRecorder registers the crawl collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		pagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkrot_pages_total",
				Help: "Total number of pages fetched, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkrot_checks_total",
				Help: "Total number of resource checks, labeled by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		cacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkrot_check_cache_lookups_total",
				Help: "Total number of check cache lookups, labeled by result.",
			},
			[]string{"result"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkrot_http_requests_total",
				Help: "Total number of outbound HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		),
		requestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linkrot_http_request_duration_seconds",
				Help:    "Histogram of outbound HTTP request latencies, labeled by method.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method"},
		),
	}
}

func outcome(failed bool) string {
	if failed {
		return "broken"
	}
	return "ok"
}

// ObservePage counts a fetched page.
func (r *Recorder) ObservePage(failed bool) {
	if r == nil {
		return
	}
	r.pagesTotal.WithLabelValues(outcome(failed)).Inc()
}

// ObserveCheck counts a resource check.
func (r *Recorder) ObserveCheck(kind string, broken bool) {
	if r == nil {
		return
	}
	r.checksTotal.WithLabelValues(kind, outcome(broken)).Inc()
}

// CacheLookup counts a check cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	label := "miss"
	if hit {
		label = "hit"
	}
	r.cacheLookupsTotal.WithLabelValues(label).Inc()
}

// ObserveRequest records an outbound request. Requests that produced no
// response are counted under code "error".
func (r *Recorder) ObserveRequest(method string, code int, err error, duration time.Duration) {
	if r == nil {
		return
	}
	label := strconv.Itoa(code)
	if err != nil || code == 0 {
		label = "error"
	}
	r.requestsTotal.WithLabelValues(method, label).Inc()
	r.requestDurationSeconds.WithLabelValues(method).Observe(duration.Seconds())
}

package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// NewRouter serves /metrics from g and a /healthz liveness probe.
func NewRouter(g prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", healthz)
	r.Method(http.MethodGet, "/metrics", Handler(g))
	return r
}

// NewServer returns an unstarted server for NewRouter on addr.
func NewServer(addr string, g prometheus.Gatherer) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(g),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

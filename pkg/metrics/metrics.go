// Package metrics provides Prometheus metrics collection with standardized
// naming conventions for the SMI migration infrastructure. It supports
// counters and histograms with label validation and exposes the registry over
// a /metrics endpoint.
//
// Example usage:
//
//	reg := metrics.New(cfg.Metrics)
//	if err := reg.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Shutdown(context.Background())
//
//	counter, err := reg.NewCounter(metrics.CounterOpts{
//	    Subsystem: "request",
//	    Name:      "success_total",
//	    Help:      "Completed calls that returned a response",
//	    Labels:    []string{"operation", "status"},
//	})
//	counter.Inc("CatalogFetch.Products", "200")
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/storemover/smi/pkg/config"
)

// Registry owns a Prometheus registry plus the HTTP server exposing it. Each
// migration run builds one Registry and hands it to every component that
// records metrics; there is no package-level global, so tests can build
// isolated registries freely.
type Registry struct {
	cfg config.MetricsConfig
	reg *prometheus.Registry

	mu     sync.Mutex
	server *http.Server
}

// New creates a Registry from the provided configuration. When metrics are
// enabled, Go runtime and process collectors are registered as well.
func New(cfg config.MetricsConfig) *Registry {
	reg := prometheus.NewRegistry()
	if cfg.Enabled {
		reg.MustRegister(prometheus.NewGoCollector())
		reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}
	return &Registry{
		cfg: cfg,
		reg: reg,
	}
}

// Namespace returns the configured metric namespace.
func (r *Registry) Namespace() string {
	return r.cfg.Namespace
}

// Handler returns the HTTP handler serving the registry's metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Start exposes the metrics endpoint on the configured port and path.
// It is a no-op when metrics are disabled.
func (r *Registry) Start() error {
	if !r.cfg.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(r.cfg.Path, r.Handler())

	r.mu.Lock()
	r.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", r.cfg.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	srv := r.server
	r.mu.Unlock()

	go func() {
		// Metrics are non-critical: log-and-continue is the caller's job,
		// the exporter must never take the migration down.
		_ = srv.ListenAndServe()
	}()

	return nil
}

// Shutdown gracefully shuts down the metrics HTTP server.
// It waits up to the context deadline for in-flight scrapes to complete.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.server == nil {
		return nil
	}
	err := r.server.Shutdown(ctx)
	r.server = nil
	return err
}

// Gather exposes the collected metric families, mainly for tests.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.reg.Gather()
}

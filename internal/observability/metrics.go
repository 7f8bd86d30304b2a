// Package observability provides Prometheus metrics for dvmrun.
//
// Endpoint: GET /metrics on 127.0.0.1:9464 (configurable).
// Format: Prometheus text exposition format.
//
// Metric naming convention: dvm_<subsystem>_<name>_<unit>
//
// All metrics are registered on a dedicated prometheus.Registry, not the
// default global registry, so embedding dvmrun in a larger process never
// collides with its metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus metric descriptor dvmrun records.
type Metrics struct {
	registry *prometheus.Registry

	// RunsTotal counts completed entrypoint runs, by regime and outcome
	// (success/failure).
	RunsTotal *prometheus.CounterVec

	// FaultsTotal counts faulted runs, by error kind.
	FaultsTotal *prometheus.CounterVec

	// TicksHistogram records the distribution of logical ticks consumed
	// per run.
	TicksHistogram prometheus.Histogram

	// WitnessesIssuedTotal is registered for Φ-regime witnesses minted
	// across all runs. dvmrun does not increment it: the engine does not
	// report witness counts, so the counter stays at zero.
	WitnessesIssuedTotal prometheus.Counter

	// EffectsAppendedTotal counts effect events appended across all runs.
	EffectsAppendedTotal prometheus.Counter
}

// NewMetrics creates and registers dvmrun's Prometheus metrics on a
// fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dvm",
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Total entrypoint runs, by regime and outcome.",
		}, []string{"regime", "outcome"}),

		FaultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dvm",
			Subsystem: "engine",
			Name:      "faults_total",
			Help:      "Total faulted runs, by error kind.",
		}, []string{"kind"}),

		TicksHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dvm",
			Subsystem: "engine",
			Name:      "ticks",
			Help:      "Distribution of logical ticks consumed per run.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256},
		}),

		WitnessesIssuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dvm",
			Subsystem: "phi",
			Name:      "witnesses_issued_total",
			Help:      "Total Φ-regime witnesses minted.",
		}),

		EffectsAppendedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dvm",
			Subsystem: "engine",
			Name:      "effects_appended_total",
			Help:      "Total effect events appended across all runs.",
		}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.FaultsTotal,
		m.TicksHistogram,
		m.WitnessesIssuedTotal,
		m.EffectsAppendedTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// ServeMetrics starts the Prometheus HTTP metrics server on addr. It
// blocks until ctx is cancelled or the server fails.
func (m *Metrics) ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server on %s: %w", addr, err)
	}
	return nil
}

// RecordRun records one completed run's outcome, ticks, and (for
// faults) error kind.
func (m *Metrics) RecordRun(regime, outcome string, ticks uint64, faultKind string) {
	m.RunsTotal.WithLabelValues(regime, outcome).Inc()
	m.TicksHistogram.Observe(float64(ticks))
	if faultKind != "" {
		m.FaultsTotal.WithLabelValues(faultKind).Inc()
	}
}

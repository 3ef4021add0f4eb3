// Package metrics exposes screen-run Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all screener metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal        prometheus.Counter
	RunDuration      prometheus.Histogram
	TickersTotal     prometheus.Counter
	OutcomesTotal    *prometheus.CounterVec // labels: status, category
	FetchRetries     *prometheus.CounterVec // labels: kind=bars|fundamentals
	TickerComputeDur prometheus.Histogram
	LastRunMatched   prometheus.Gauge
	AlertsSent       prometheus.Counter
}

// New registers and returns all metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_runs_total",
			Help: "Total screen runs started",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_run_duration_seconds",
			Help:    "Wall time of a full screen run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		TickersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_tickers_total",
			Help: "Total tickers admitted to screen runs",
		}),
		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_outcomes_total",
			Help: "Per-ticker outcomes by status and category",
		}, []string{"status", "category"}),
		FetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_fetch_retries_total",
			Help: "Provider calls retried after a failure",
		}, []string{"kind"}),
		TickerComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_ticker_compute_duration_seconds",
			Help:    "Indicator, signal and classification time per ticker",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		LastRunMatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_last_run_alertable",
			Help: "Alertable tickers in the most recent run",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_alerts_sent_total",
			Help: "Alert messages delivered",
		}),
	}
	m.registry.MustRegister(
		m.RunsTotal, m.RunDuration, m.TickersTotal, m.OutcomesTotal,
		m.FetchRetries, m.TickerComputeDur, m.LastRunMatched, m.AlertsSent,
	)
	return m
}

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(d time.Duration, tickers, alertable int) {
	if m == nil {
		return
	}
	m.RunsTotal.Inc()
	m.RunDuration.Observe(d.Seconds())
	m.TickersTotal.Add(float64(tickers))
	m.LastRunMatched.Set(float64(alertable))
}

// ObserveOutcome counts one ticker outcome.
func (m *Metrics) ObserveOutcome(status, category string) {
	if m == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(status, category).Inc()
}

// ObserveCompute records per-ticker compute latency.
func (m *Metrics) ObserveCompute(d time.Duration) {
	if m == nil {
		return
	}
	m.TickerComputeDur.Observe(d.Seconds())
}

// IncRetry counts a retried provider call.
func (m *Metrics) IncRetry(kind string) {
	if m == nil {
		return
	}
	m.FetchRetries.WithLabelValues(kind).Inc()
}

// IncAlerts counts a delivered alert message.
func (m *Metrics) IncAlerts() {
	if m == nil {
		return
	}
	m.AlertsSent.Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[ERROR] metrics server: %v", err)
	}
}

// Package metrics defines the oracle's instrumentation. Metrics are
// declared against go-kit interfaces so callers can use the Prometheus
// backend or discard everything.
package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const MetricsSubsystem = "oracle"

// Metrics contains metrics exposed by the oracle pipeline and the rollup
// adapter.
type Metrics struct {
	// Requests received from the host, by kind and final status.
	Requests metrics.Counter
	// Pipeline runs by outcome (ok or failure kind).
	Runs metrics.Counter
	// Time spent in each pipeline stage.
	StageSeconds metrics.Histogram
	// Preimage bytes fetched, by object (manifest, header, state).
	FetchedBytes metrics.Counter
	// Number of state chunks in the last processed manifest.
	StateChunks metrics.Gauge
	// Notices emitted.
	Notices metrics.Counter
}

// PrometheusMetrics returns Metrics built using the Prometheus client
// library. Optionally, labels can be provided along with their values
// ("foo", "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Requests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "requests_total",
			Help:      "Rollup requests handled, by kind and status.",
		}, withLabels(labels, "kind", "status")).With(labelsAndValues...),
		Runs: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "runs_total",
			Help:      "Pipeline runs, by outcome.",
		}, withLabels(labels, "outcome")).With(labelsAndValues...),
		StageSeconds: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   stdprometheus.ExponentialBuckets(0.001, 4, 10),
		}, withLabels(labels, "stage")).With(labelsAndValues...),
		FetchedBytes: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "fetched_bytes_total",
			Help:      "Preimage bytes fetched, by object.",
		}, withLabels(labels, "object")).With(labelsAndValues...),
		StateChunks: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "state_chunks",
			Help:      "Number of state chunks in the last manifest.",
		}, withLabels(labels)).With(labelsAndValues...),
		Notices: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "notices_total",
			Help:      "Notices emitted to the host.",
		}, withLabels(labels)).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Requests:     discard.NewCounter(),
		Runs:         discard.NewCounter(),
		StageSeconds: discard.NewHistogram(),
		FetchedBytes: discard.NewCounter(),
		StateChunks:  discard.NewGauge(),
		Notices:      discard.NewCounter(),
	}
}

func withLabels(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	return append(append(out, base...), extra...)
}

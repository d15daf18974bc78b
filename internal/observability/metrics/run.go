// Package metrics records one batch run in a private Prometheus registry and
// pushes it to a Pushgateway when the run ends.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "docshelf"

type RunMetrics struct {
	registry *prometheus.Registry
	job      string

	stageDuration  *prometheus.HistogramVec
	extractTotal   *prometheus.CounterVec
	uploadTotal    *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	corpusSize     prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

func NewRunMetrics(job string) *RunMetrics {
	registry := prometheus.NewRegistry()

	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"stage"},
	)
	extractTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "documents_total",
			Help:      "Documents extracted by status.",
		},
		[]string{"status"},
	)
	uploadTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "documents_total",
			Help:      "Documents uploaded by status.",
		},
		[]string{"status"},
	)
	uploadDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "duration_seconds",
			Help:      "Duration of a single document upload in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	corpusSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "run",
		Name:      "corpus_documents",
		Help:      "Documents discovered in the input directory.",
	})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "run",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last run that finished without a fatal error.",
	})

	registry.MustRegister(stageDuration, extractTotal, uploadTotal, uploadDuration, corpusSize, lastSuccess)

	return &RunMetrics{
		registry:       registry,
		job:            job,
		stageDuration:  stageDuration,
		extractTotal:   extractTotal,
		uploadTotal:    uploadTotal,
		uploadDuration: uploadDuration,
		corpusSize:     corpusSize,
		lastSuccess:    lastSuccess,
	}
}

func (m *RunMetrics) ObserveStage(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *RunMetrics) ObserveExtract(err error) {
	m.extractTotal.WithLabelValues(status(err)).Inc()
}

func (m *RunMetrics) ObserveUpload(seconds float64, err error) {
	m.uploadTotal.WithLabelValues(status(err)).Inc()
	m.uploadDuration.Observe(seconds)
}

func (m *RunMetrics) SetCorpusSize(n int) {
	m.corpusSize.Set(float64(n))
}

func (m *RunMetrics) MarkSuccess() {
	m.lastSuccess.SetToCurrentTime()
}

// Push replaces the job's metric group on the Pushgateway at url.
func (m *RunMetrics) Push(url, instance string) error {
	pusher := push.New(url, m.job).Gatherer(m.registry)
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

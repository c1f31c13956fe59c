// Package metrics exposes Prometheus instrumentation for record readers and
// writers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Write modes, used as the mode label.
const (
	ModePlain      = "plain"
	ModeOverlapped = "overlapped"
)

// Metrics holds all Prometheus metrics for record I/O. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	recordsRead    prometheus.Counter
	bytesRead      prometheus.Counter
	readErrors     *prometheus.CounterVec
	recordsWritten *prometheus.CounterVec
	bytesWritten   prometheus.Counter
	writeDuration  *prometheus.HistogramVec
	shuffleSize    prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		recordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "tfrecord_records_read_total",
			Help: "Total number of records read with a valid frame",
		}),
		bytesRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "tfrecord_payload_bytes_read_total",
			Help: "Total number of payload bytes read",
		}),
		readErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfrecord_read_errors_total",
				Help: "Total number of failed reads by error kind",
			},
			[]string{"kind"},
		),
		recordsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfrecord_records_written_total",
				Help: "Total number of records written",
			},
			[]string{"mode"},
		),
		bytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "tfrecord_payload_bytes_written_total",
			Help: "Total number of payload bytes written",
		}),
		writeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tfrecord_write_duration_seconds",
				Help:    "Time spent framing and writing a single record",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"mode"},
		),
		shuffleSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tfrecord_shuffle_buffer_records",
			Help: "Number of records currently held by shuffle buffers",
		}),
	}
}

// RecordRead records a successfully framed payload of n bytes.
func (m *Metrics) RecordRead(n int) {
	if m == nil {
		return
	}
	m.recordsRead.Inc()
	m.bytesRead.Add(float64(n))
}

// ReadError records a failed read of the given kind.
func (m *Metrics) ReadError(kind string) {
	if m == nil {
		return
	}
	m.readErrors.WithLabelValues(kind).Inc()
}

// RecordWritten records a written payload of n bytes.
func (m *Metrics) RecordWritten(mode string, n int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.recordsWritten.WithLabelValues(mode).Inc()
	m.bytesWritten.Add(float64(n))
	m.writeDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ShuffleBuffered adjusts the number of records held by shuffle buffers.
func (m *Metrics) ShuffleBuffered(delta int) {
	if m == nil {
		return
	}
	m.shuffleSize.Add(float64(delta))
}

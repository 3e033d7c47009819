package go_akrypt

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics exports MetricsCollector events as Prometheus series under the
// akrypt namespace.
type PrometheusMetrics struct {
	handlesInserted  *prometheus.CounterVec
	handlesRemoved   *prometheus.CounterVec
	liveHandles      prometheus.Gauge
	handleCollisions prometheus.Counter
	errors           *prometheus.CounterVec
	refills          *prometheus.CounterVec
	randomBytes      *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with registerer.
// A nil registerer means prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registerer prometheus.Registerer) (*PrometheusMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &PrometheusMetrics{
		handlesInserted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "akrypt",
				Subsystem: "context_manager",
				Name:      "handles_inserted_total",
				Help:      "Number of nodes inserted into the context manager",
			},
			[]string{"engine"}),
		handlesRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "akrypt",
				Subsystem: "context_manager",
				Name:      "handles_removed_total",
				Help:      "Number of nodes removed from the context manager, including those released by Destroy()",
			},
			[]string{"engine"}),
		liveHandles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "akrypt",
				Subsystem: "context_manager",
				Name:      "live_handles",
				Help:      "Number of live nodes in the context manager",
			}),
		handleCollisions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "akrypt",
				Subsystem: "context_manager",
				Name:      "handle_collisions_total",
				Help:      "Number of handle tags that had to be redrawn",
			}),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "akrypt",
				Subsystem: "context_manager",
				Name:      "errors_total",
				Help:      "Number of failed context manager operations",
			},
			[]string{"kind"}),
		refills: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "akrypt",
				Subsystem: "random",
				Name:      "refills_total",
				Help:      "Number of output buffer refills of a generator",
			},
			[]string{"generator"}),
		randomBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "akrypt",
				Subsystem: "random",
				Name:      "bytes_total",
				Help:      "Number of bytes produced by a generator",
			},
			[]string{"generator"}),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "akrypt",
				Subsystem: "context_manager",
				Name:      "operation_duration_seconds",
				Help:      "Time a context manager operation held the table lock",
				Buckets:   prometheus.ExponentialBuckets(1e-7, 4.0, 10),
			},
			[]string{"operation"}),
	}
	for _, c := range []prometheus.Collector{
		m.handlesInserted,
		m.handlesRemoved,
		m.liveHandles,
		m.handleCollisions,
		m.errors,
		m.refills,
		m.randomBytes,
		m.latency,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) IncrementHandleInserted(engine Engine) {
	m.handlesInserted.WithLabelValues(engine.String()).Inc()
}

func (m *PrometheusMetrics) IncrementHandleRemoved(engine Engine) {
	m.handlesRemoved.WithLabelValues(engine.String()).Inc()
}

func (m *PrometheusMetrics) SetLiveHandles(count int) {
	m.liveHandles.Set(float64(count))
}

func (m *PrometheusMetrics) IncrementHandleCollision() {
	m.handleCollisions.Inc()
}

func (m *PrometheusMetrics) IncrementError(errorType string) {
	m.errors.WithLabelValues(errorType).Inc()
}

func (m *PrometheusMetrics) IncrementRefill(generator string) {
	m.refills.WithLabelValues(generator).Inc()
}

func (m *PrometheusMetrics) AddRandomBytes(generator string, bytes uint64) {
	m.randomBytes.WithLabelValues(generator).Add(float64(bytes))
}

func (m *PrometheusMetrics) RecordOperationLatency(operation string, duration time.Duration) {
	m.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

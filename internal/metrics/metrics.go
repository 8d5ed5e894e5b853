// Package metrics exposes Prometheus instrumentation for the HTTP surface and
// for every provider call.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartdoc"

// Manager owns a private registry and the collectors registered on it.
type Manager struct {
	registry *prometheus.Registry

	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	documents        prometheus.Gauge
	chunksSkipped    prometheus.Counter
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// NewManager creates a manager with all collectors registered.
func NewManager() *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}

	m.providerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Provider calls by provider role and outcome",
		},
		[]string{"provider", "outcome"},
	)
	m.providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Provider call latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"provider"},
	)
	m.documents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "documents",
		Help:      "Number of stored documents",
	})
	m.chunksSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "summary_chunks_skipped_total",
		Help:      "Chunk summaries dropped after a provider failure",
	})
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.registry.MustRegister(
		m.providerCalls,
		m.providerDuration,
		m.documents,
		m.chunksSkipped,
		m.requestsTotal,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// ObserveProvider records one provider call.
func (m *Manager) ObserveProvider(provider string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.providerCalls.WithLabelValues(provider, outcome).Inc()
	m.providerDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

// SetDocuments sets the stored document gauge.
func (m *Manager) SetDocuments(n int) { m.documents.Set(float64(n)) }

// AddSkippedChunks counts chunk summaries dropped during a summary.
func (m *Manager) AddSkippedChunks(n int) {
	if n > 0 {
		m.chunksSkipped.Add(float64(n))
	}
}

// Middleware records request count and latency per route template.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		m.requestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return gin.WrapH(h)
}

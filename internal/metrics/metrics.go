package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion
	IngestTotal      *prometheus.CounterVec
	IngestDuration   prometheus.Histogram
	IngestQueueDepth prometheus.Gauge
	DegradedTotal    *prometheus.CounterVec

	// Chat
	ChatRequests *prometheus.CounterVec
	ChatLatency  prometheus.Histogram

	// Remote calls to the model provider, by operation
	RemoteLatency *prometheus.HistogramVec
	RemoteErrors  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		IngestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorwise_ingest_total",
			Help: "Ingestion tasks by outcome",
		}, []string{"outcome"}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tutorwise_ingest_duration_seconds",
			Help:    "Time from picking up an ingestion task to its terminal status",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		IngestQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tutorwise_ingest_queue_depth",
			Help: "Ingestion tasks waiting for a worker",
		}),
		DegradedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorwise_extraction_degraded_total",
			Help: "Extractions that produced a placeholder, by file kind",
		}, []string{"kind"}),

		ChatRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorwise_chat_requests_total",
			Help: "Chat requests by outcome",
		}, []string{"outcome"}),
		ChatLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tutorwise_chat_request_duration_seconds",
			Help:    "Chat request latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		RemoteLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tutorwise_remote_call_duration_seconds",
			Help:    "Latency of calls to the model provider",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		RemoteErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorwise_remote_call_errors_total",
			Help: "Failed calls to the model provider",
		}, []string{"op"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveIngest(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.IngestTotal.WithLabelValues(outcome).Inc()
	m.IngestDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveDegraded(kind string) {
	if m == nil {
		return
	}
	m.DegradedTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.IngestQueueDepth.Set(float64(n))
}

func (m *Metrics) ObserveChat(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(outcome).Inc()
	m.ChatLatency.Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveRemote(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.RemoteLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.RemoteErrors.WithLabelValues(op).Inc()
	}
}

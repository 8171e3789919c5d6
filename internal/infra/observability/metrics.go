package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	remoteErrors    *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	recordsWritten  *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// SalesSnapshot is the counter snapshot served by GET /v1/metrics/sales.
type SalesSnapshot struct {
	OrdersCreated      int64   `json:"ordersCreated"`
	ReceiptsCreated    int64   `json:"receiptsCreated"`
	WithdrawalsCreated int64   `json:"withdrawalsCreated"`
	RemoteErrors       int64   `json:"remoteErrors"`
	HTTPRequests       int64   `json:"httpRequests"`
	CacheHitRate       float64 `json:"cacheHitRate"`
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventos_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		remoteErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventos_remote_errors_total",
				Help: "Total errors from the remote base, per table.",
			},
			[]string{"table"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventos_cache_hits_total",
				Help: "Total table cache hits.",
			},
			[]string{"table"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventos_cache_misses_total",
				Help: "Total table cache misses.",
			},
			[]string{"table"},
		),
		recordsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventos_records_written_total",
				Help: "Records created through the gateway, per table.",
			},
			[]string{"table"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventos_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRemoteError increments the remote error counter for a table.
func (m *Metrics) IncrRemoteError(table string) {
	m.remoteErrors.WithLabelValues(table).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(table string) {
	m.cacheHits.WithLabelValues(table).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(table string) {
	m.cacheMisses.WithLabelValues(table).Inc()
}

// IncrRecordWritten increments the created-records counter for a table.
func (m *Metrics) IncrRecordWritten(table string) {
	m.recordsWritten.WithLabelValues(table).Inc()
}

// IncrRequest counts one handled HTTP request under its status class.
// The logging middleware calls this for every request.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetSalesSnapshot gathers current counter values for the sales metrics
// endpoint. Prometheus counters expose cumulative values.
func (m *Metrics) GetSalesSnapshot() *SalesSnapshot {
	hits := sumCounter(m.cacheHits)
	misses := sumCounter(m.cacheMisses)

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &SalesSnapshot{
		OrdersCreated:      int64(getCounterValue(m.recordsWritten, "Pedidos")),
		ReceiptsCreated:    int64(getCounterValue(m.recordsWritten, "Recebimentos")),
		WithdrawalsCreated: int64(getCounterValue(m.recordsWritten, "Sangria de Caixa")),
		RemoteErrors:       int64(sumCounter(m.remoteErrors)),
		HTTPRequests:       int64(sumCounter(m.requestsTotal)),
		CacheHitRate:       hitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounter totals a CounterVec across all label values.
func sumCounter(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	total := float64(0)
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}

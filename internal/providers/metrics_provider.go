package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"readtrack/internal/services"
	"readtrack/internal/structures"
	"strconv"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncMigrations(format string, success bool)
	ObserveIntegrityScore(score int)
	IncBulkRejections(reason string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	migrationsTotal     *prometheus.CounterVec
	integrityScore      prometheus.Gauge
	bulkRejections      *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncMigrations(format string, success bool) {
	m.migrationsTotal.WithLabelValues(format, strconv.FormatBool(success)).Inc()
}

func (m *MetricsProvider) ObserveIntegrityScore(score int) {
	m.integrityScore.Set(float64(score))
}

func (m *MetricsProvider) IncBulkRejections(reason string) {
	m.bulkRejections.WithLabelValues(reason).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, service services.HistoryServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "readtrack_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "readtrack_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "readtrack_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "readtrack_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "readtrack_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		migrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "readtrack_migrations_total",
			Help: "Migrations by detected format and outcome",
		}, []string{"format", "success"}),

		integrityScore: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "readtrack_integrity_score",
			Help: "Integrity score of the last validated history",
		}),

		bulkRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "readtrack_bulk_rejections_total",
			Help: "Rejected bulk transactions by reason",
		}, []string{"reason"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "readtrack_reading_days",
		Help: "Number of reading days in the stored history",
	}, func() float64 {
		return float64(service.GetReadingDaysCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "readtrack_history_revision",
		Help: "Number of committed changes to the stored history",
	}, func() float64 {
		return float64(service.GetRevision())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncMigrations(_ string, _ bool)                   {}
func (n *noopMetrics) ObserveIntegrityScore(_ int)                      {}
func (n *noopMetrics) IncBulkRejections(_ string)                       {}

// v1
// internal/observability/metrics.go
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	testsEvaluated    prometheus.Counter
	testsSkipped      prometheus.Counter
	roomsSucceeded    prometheus.Counter
	roomsFailed       prometheus.Counter
	batchDuration     prometheus.Histogram
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		testsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compliance_tests_evaluated_total",
			Help: "Total threshold tests evaluated.",
		}),
		testsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compliance_tests_skipped_total",
			Help: "Total tests skipped for missing or invalid thresholds.",
		}),
		roomsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compliance_rooms_succeeded_total",
			Help: "Total rooms evaluated successfully.",
		}),
		roomsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compliance_rooms_failed_total",
			Help: "Total rooms dropped from batches.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "compliance_batch_duration_seconds",
			Help:    "Histogram of full batch evaluation durations.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits observed.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses observed.",
		}),
	}

	prometheus.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.testsEvaluated,
		m.testsSkipped,
		m.roomsSucceeded,
		m.roomsFailed,
		m.batchDuration,
		m.cacheHits,
		m.cacheMisses,
	)
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) TestEvaluated() {
	if m != nil {
		m.testsEvaluated.Inc()
	}
}

func (m *Metrics) TestSkipped() {
	if m != nil {
		m.testsSkipped.Inc()
	}
}

func (m *Metrics) RoomSucceeded() {
	if m != nil {
		m.roomsSucceeded.Inc()
	}
}

func (m *Metrics) RoomFailed() {
	if m != nil {
		m.roomsFailed.Inc()
	}
}

func (m *Metrics) ObserveBatch(d time.Duration) {
	if m != nil {
		m.batchDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

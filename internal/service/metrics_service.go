package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the assignment engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	engineRuns      *prometheus.CounterVec
	engineDuration  prometheus.Observer
	slotsTotal      prometheus.Counter
	slotsUnfilled   prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_cache_latency_seconds",
		Help:    "Latency for roster cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_cache_hits_total",
		Help: "Total roster cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_cache_misses_total",
		Help: "Total roster cache misses",
	})

	engineRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_engine_runs_total",
		Help: "Total schedule generation runs by outcome",
	}, []string{"status"})

	engineDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_engine_run_duration_seconds",
		Help:    "Duration of schedule generation runs",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
	})

	slotsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_engine_slots_total",
		Help: "Total staffing slots the engine attempted to fill",
	})

	slotsUnfilled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_engine_slots_unfilled_total",
		Help: "Total staffing slots the engine could not fill",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses,
		engineRuns, engineDuration, slotsTotal, slotsUnfilled, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		engineRuns:      engineRuns,
		engineDuration:  engineDuration,
		slotsTotal:      slotsTotal,
		slotsUnfilled:   slotsUnfilled,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records roster cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveEngineRun records the outcome of one generation run.
func (m *MetricsService) ObserveEngineRun(status string, duration time.Duration, slotsTotal, slotsUnfilled int) {
	if m == nil {
		return
	}
	m.engineRuns.WithLabelValues(status).Inc()
	m.engineDuration.Observe(duration.Seconds())
	m.slotsTotal.Add(float64(slotsTotal))
	m.slotsUnfilled.Add(float64(slotsUnfilled))
}

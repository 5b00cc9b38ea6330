package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation. All methods are safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	submissionsCreated *prometheus.CounterVec
	submissionUpdates  prometheus.Counter
	fieldEdits         *prometheus.CounterVec
	windowDenied       *prometheus.CounterVec
	archived           prometheus.Counter
	sweepFailures      prometheus.Counter
	sweepDuration      prometheus.Histogram
	malformedPolicy    prometheus.Counter
	policyVersion      prometheus.Gauge
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
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	submissionsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "submissions_created_total",
		Help: "Weekly submissions created",
	}, []string{"class_label"})

	submissionUpdates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "submission_updates_total",
		Help: "Weekly submission updates applied",
	})

	fieldEdits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "submission_field_edits_total",
		Help: "Tracked field changes after creation",
	}, []string{"field"})

	windowDenied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edit_window_denied_total",
		Help: "Writes rejected because the editing window was closed",
	}, []string{"operation"})

	archived := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "submissions_archived_total",
		Help: "Submissions archived by sweeps",
	})

	sweepFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "archive_sweep_failures_total",
		Help: "Per-record failures during archive sweeps",
	})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "archive_sweep_duration_seconds",
		Help:    "Duration of archive sweeps",
		Buckets: prometheus.DefBuckets,
	})

	malformedPolicy := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "edit_window_policy_malformed_total",
		Help: "Policy versions found malformed and evaluated fail-open",
	})

	policyVersion := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "edit_window_policy_version",
		Help: "Version of the active time restriction policy",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses,
		submissionsCreated, submissionUpdates, fieldEdits, windowDenied, archived, sweepFailures, sweepDuration,
		malformedPolicy, policyVersion, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		submissionsCreated: submissionsCreated,
		submissionUpdates:  submissionUpdates,
		fieldEdits:         fieldEdits,
		windowDenied:       windowDenied,
		archived:           archived,
		sweepFailures:      sweepFailures,
		sweepDuration:      sweepDuration,
		malformedPolicy:    malformedPolicy,
		policyVersion:      policyVersion,
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// RecordCacheOperation records a cache hit or miss.
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

// RecordSubmissionCreated counts a new submission.
func (m *MetricsService) RecordSubmissionCreated(classLabel string) {
	if m == nil {
		return
	}
	m.submissionsCreated.WithLabelValues(classLabel).Inc()
}

// RecordSubmissionUpdated counts an update and the fields it changed.
func (m *MetricsService) RecordSubmissionUpdated(changedFields []string) {
	if m == nil {
		return
	}
	m.submissionUpdates.Inc()
	for _, field := range changedFields {
		m.fieldEdits.WithLabelValues(field).Inc()
	}
}

// RecordWindowDenied counts a write rejected by the editing window.
func (m *MetricsService) RecordWindowDenied(operation string) {
	if m == nil {
		return
	}
	m.windowDenied.WithLabelValues(operation).Inc()
}

// ObserveSweep records the outcome of one archive sweep.
func (m *MetricsService) ObserveSweep(archived, failures int, duration time.Duration) {
	if m == nil {
		return
	}
	m.archived.Add(float64(archived))
	m.sweepFailures.Add(float64(failures))
	m.sweepDuration.Observe(duration.Seconds())
}

// RecordMalformedPolicy counts a policy version evaluated fail-open.
func (m *MetricsService) RecordMalformedPolicy() {
	if m == nil {
		return
	}
	m.malformedPolicy.Inc()
}

// SetPolicyVersion publishes the active policy version.
func (m *MetricsService) SetPolicyVersion(version int64) {
	if m == nil {
		return
	}
	m.policyVersion.Set(float64(version))
}

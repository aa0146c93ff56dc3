package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the replan engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	replanRuns      *prometheus.CounterVec
	replanDuration  prometheus.Histogram
	jobsScheduled   prometheus.Counter
	jobsOverflowed  prometheus.Counter
	jobsReview      prometheus.Counter
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

	replanRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replan_runs_total",
		Help: "Replan executions by outcome",
	}, []string{"outcome"})

	replanDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "replan_duration_seconds",
		Help:    "Wall time of full replan runs",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	jobsScheduled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replan_jobs_scheduled_total",
		Help: "Jobs given a technician and time by replans",
	})

	jobsOverflowed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replan_jobs_overflowed_total",
		Help: "Jobs carried past their first attempted day",
	})

	jobsReview := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replan_jobs_pending_review_total",
		Help: "Jobs routed to pending_review by replans",
	})

	registry.MustRegister(requestDuration, requestTotal, replanRuns, replanDuration, jobsScheduled, jobsOverflowed, jobsReview)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		replanRuns:      replanRuns,
		replanDuration:  replanDuration,
		jobsScheduled:   jobsScheduled,
		jobsOverflowed:  jobsOverflowed,
		jobsReview:      jobsReview,
	}
}

// Handler exposes the scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records one handled request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveReplan records one finished (or failed) replan run.
func (m *MetricsService) ObserveReplan(outcome string, duration time.Duration, scheduled, overflowed, pendingReview int) {
	m.replanRuns.WithLabelValues(outcome).Inc()
	m.replanDuration.Observe(duration.Seconds())
	m.jobsScheduled.Add(float64(scheduled))
	m.jobsOverflowed.Add(float64(overflowed))
	m.jobsReview.Add(float64(pendingReview))
}

package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service", "circuit_name"},
	)

	// CircuitBreakerFailures tracks circuit breaker failures
	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"service", "circuit_name"},
	)

	// BulkheadActiveRequests tracks active requests in bulkhead
	BulkheadActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bulkhead_active_requests",
			Help: "Number of active requests in bulkhead",
		},
		[]string{"service", "bulkhead_name"},
	)

	// BulkheadRejectedRequests tracks rejected requests by bulkhead
	BulkheadRejectedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulkhead_rejected_requests_total",
			Help: "Total number of rejected requests by bulkhead",
		},
		[]string{"service", "bulkhead_name"},
	)

	// InvoicesGenerated tracks invoice generations by outcome (success, failed)
	InvoicesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoices_generated_total",
			Help: "Total number of invoice generations",
		},
		[]string{"outcome"},
	)

	// InvoiceRenderDuration tracks build+render time of a single invoice
	InvoiceRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invoice_render_duration_seconds",
			Help:    "Invoice build and render duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// BatchRuns tracks download-all requests (scheduled, nothing_to_do)
	BatchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_batch_runs_total",
			Help: "Total number of batch invoice runs",
		},
		[]string{"result"},
	)

	// BatchInvocations tracks batch invocations by state (issued, skipped)
	BatchInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_batch_invocations_total",
			Help: "Total number of staggered batch invocations",
		},
		[]string{"state"},
	)

	// StaggerQueueDepth tracks tasks waiting for their turn in a stagger queue
	StaggerQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stagger_queue_depth",
			Help: "Number of tasks waiting in a stagger queue",
		},
		[]string{"service", "queue_name"},
	)

	// CacheRequests tracks invoice cache lookups (hit, miss, error)
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_cache_requests_total",
			Help: "Total number of invoice cache lookups",
		},
		[]string{"result"},
	)

	// ChaosFailureRate tracks whether the order API stub injects failures
	ChaosFailureRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaos_failure_enabled",
			Help: "Whether chaos failure mode is enabled (1=enabled, 0=disabled)",
		},
		[]string{"service"},
	)

	// ChaosSlowMode tracks whether the order API stub delays responses
	ChaosSlowMode = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaos_slow_mode_enabled",
			Help: "Whether chaos slow mode is enabled (1=enabled, 0=disabled)",
		},
		[]string{"service"},
	)
)

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		RequestsTotal.WithLabelValues(
			serviceName,
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()

		RequestDuration.WithLabelValues(
			serviceName,
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	MarkParseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mark_chunk_parse_failures_total",
			Help: "Mark string chunks that could not be parsed and were scored as zero",
		},
		[]string{"component"},
	)

	StagedResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staged_results_total",
			Help: "Batch results processed by the staging step, by outcome",
		},
		[]string{"outcome"},
	)

	Transfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staged_student_transfers_total",
			Help: "Staged student transfers to the main tables, by outcome",
		},
		[]string{"outcome"},
	)

	TransferDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "staged_student_transfer_duration_seconds",
			Help:    "Duration of a single staged student transfer",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(MarkParseFailures)
	prometheus.MustRegister(StagedResults)
	prometheus.MustRegister(Transfers)
	prometheus.MustRegister(TransferDuration)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

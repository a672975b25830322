// Package metrics provides Prometheus metrics for the satseg web front end and pipeline.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/satseg/internal/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satseg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satseg_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Segmentation service metrics
	segmentRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satseg_segment_requests_total",
			Help: "Total requests sent to the segmentation service, by outcome",
		},
		[]string{"outcome"},
	)

	segmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "satseg_segment_duration_seconds",
			Help:    "Segmentation round trip duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	segmentBytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "satseg_segment_bytes_uploaded_total",
			Help: "Total image bytes uploaded to the segmentation service",
		},
	)

	// Pipeline metrics
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satseg_pipeline_transitions_total",
			Help: "Upload controller state transitions, by target phase",
		},
		[]string{"phase"},
	)

	staleEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "satseg_pipeline_stale_events_total",
			Help: "Completions discarded because a newer upload superseded them",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome classifies a segmentation error into a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, shared.ErrTransport):
		return "transport_error"
	case errors.Is(err, shared.ErrStatus):
		return "status_error"
	case errors.Is(err, shared.ErrDecode):
		return "decode_error"
	default:
		return "error"
	}
}

// ObserveSegment records one request to the segmentation service.
func ObserveSegment(err error, duration time.Duration, uploaded int) {
	segmentRequestsTotal.WithLabelValues(Outcome(err)).Inc()
	segmentDuration.Observe(duration.Seconds())
	segmentBytesUploaded.Add(float64(uploaded))
}

// RecordTransition records the controller entering phase.
func RecordTransition(phase string) {
	transitionsTotal.WithLabelValues(phase).Inc()
}

// RecordStaleEvent records a discarded out-of-date completion.
func RecordStaleEvent() {
	staleEventsTotal.Inc()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

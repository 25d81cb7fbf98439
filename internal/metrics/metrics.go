// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoparts_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autoparts_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)

	quotationOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoparts_quotation_operations_total",
			Help: "Quotation submissions and status changes by outcome",
		},
		[]string{"operation", "status"},
	)

	cartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoparts_cart_operations_total",
			Help: "Cart mutations by outcome",
		},
		[]string{"operation", "status"},
	)

	enquiryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoparts_enquiry_operations_total",
			Help: "Parts enquiry submissions by outcome",
		},
		[]string{"operation", "status"},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoparts_events_published_total",
			Help: "Domain events handed to the broker by outcome",
		},
		[]string{"event", "status"},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency labelled by the ServeMux
// pattern. It must wrap the mux directly so r.Pattern is visible afterwards.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(rec.status)
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordQuotationOperation counts a quotation operation (submit, transition).
func RecordQuotationOperation(operation string, success bool) {
	quotationOperations.WithLabelValues(operation, outcome(success)).Inc()
}

func RecordCartOperation(operation string, success bool) {
	cartOperations.WithLabelValues(operation, outcome(success)).Inc()
}

func RecordEnquiryOperation(operation string, success bool) {
	enquiryOperations.WithLabelValues(operation, outcome(success)).Inc()
}

func RecordEventPublished(event string, success bool) {
	eventsPublished.WithLabelValues(event, outcome(success)).Inc()
}

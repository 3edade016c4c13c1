package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk konsol.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	apiCalls        *prometheus.CounterVec
	gateDecisions   *prometheus.CounterVec
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_console_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rbac_console_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	apiCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_console_api_calls_total",
		Help: "Panggilan ke RBAC API berdasarkan resource, method dan hasil.",
	}, []string{"resource", "method", "outcome"})
	gate := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_console_gate_denials_total",
		Help: "Penolakan gate berdasarkan alasan.",
	}, []string{"reason"})
	registry.MustRegister(requests, duration, apiCalls, gate)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		apiCalls:        apiCalls,
		gateDecisions:   gate,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveAPICall mencatat hasil satu panggilan RBAC API. Outcome bernilai
// "ok", "status_<code>", "canceled" atau "transport".
func (m *Metrics) ObserveAPICall(resource, method string, status int, err error) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(resource, method, outcome(status, err)).Inc()
}

// ObserveDenial mencatat penolakan admission atau visibility.
func (m *Metrics) ObserveDenial(reason string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(reason).Inc()
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

func outcome(status int, err error) string {
	switch {
	case err == nil:
		return "ok"
	case status > 0:
		return "status_" + strconv.Itoa(status)
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "transport"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

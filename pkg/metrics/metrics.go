// Package metrics provides Prometheus metrics collection for the HTTP surface
// and for chat generation outcomes.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

const subsystem = "gateway"

// Metrics collects Prometheus metrics behind a dedicated registry.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	httpRequestsCountersMu   sync.Mutex
	HTTPRequestsCounters     map[int]prometheus.Counter
	HTTPDurationHistogram    prometheus.Histogram

	GenerationsCounter        prometheus.Counter
	GenerationFailuresCounter prometheus.Counter
	GenerationDuration        prometheus.Histogram

	log logger.Logger
}

// NewMetrics creates a new Metrics instance. httpMetrics enables request
// counters and the duration histogram; generationMetrics enables the chat
// generation counters.
func NewMetrics(httpMetrics, generationMetrics bool, l logger.Logger) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		log: l,
	}
	if httpMetrics {
		m.TotalHTTPRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "total_http_requests",
			Help:      "Total HTTP requests",
		})
		m.reg.MustRegister(m.TotalHTTPRequestsCounter)
		m.HTTPRequestsCounters = make(map[int]prometheus.Counter)

		m.HTTPDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0},
		})
		m.reg.MustRegister(m.HTTPDurationHistogram)
	}
	if generationMetrics {
		m.GenerationsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "chat_generations_total",
			Help:      "Total chat generation attempts",
		})
		m.GenerationFailuresCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "chat_generation_failures_total",
			Help:      "Total failed chat generation attempts",
		})
		m.GenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "chat_generation_duration_seconds",
			Help:      "Chat generation duration in seconds",
			Buckets:   []float64{0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		})
		m.reg.MustRegister(m.GenerationsCounter, m.GenerationFailuresCounter, m.GenerationDuration)
	}
	return m
}

// ObserveGeneration records one generation attempt with its duration and outcome.
func (m *Metrics) ObserveGeneration(duration time.Duration, err error) {
	if m.GenerationsCounter == nil {
		return
	}
	m.GenerationsCounter.Inc()
	m.GenerationDuration.Observe(duration.Seconds())
	if err != nil {
		m.GenerationFailuresCounter.Inc()
	}
}

// IncrementHTTPResponseCounter increments the counter for the given HTTP
// status code, registering it on first use. Safe for concurrent requests.
func (m *Metrics) IncrementHTTPResponseCounter(code int) {
	if m.HTTPRequestsCounters == nil {
		return
	}
	m.httpRequestsCountersMu.Lock()
	counter, ok := m.HTTPRequestsCounters[code]
	if !ok {
		counter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      fmt.Sprintf("total_%d_http_responses", code),
			Help:      fmt.Sprintf("Total %s HTTP responses returned", http.StatusText(code)),
		})
		m.reg.MustRegister(counter)
		m.HTTPRequestsCounters[code] = counter
	}
	m.httpRequestsCountersMu.Unlock()
	counter.Inc()
}

// HTTPMiddleware returns a chi-compatible middleware that tracks HTTP metrics
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			m.HTTPDurationHistogram.Observe(duration.Seconds())
			m.IncrementHTTPResponseCounter(rw.statusCode)
		})
	}
}

// Handler returns the promhttp handler for the underlying registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listen starts the metrics HTTP server on the specified port. The returned
// shutdown function stops it gracefully.
func (m *Metrics) Listen(port int) (errChan chan error, shutdown func()) {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))
	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan = make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	shutdown = func() {
		m.log.Info("Stopping metrics listener")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
	return errChan, shutdown
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

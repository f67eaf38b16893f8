package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gold360",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gold360",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gold360",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	stockTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gold360",
			Subsystem: "inventory",
			Name:      "stock_transactions_total",
			Help:      "Total number of recorded stock transactions.",
		},
		[]string{"type"},
	)

	stockUnitsMoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gold360",
			Subsystem: "inventory",
			Name:      "stock_units_moved_total",
			Help:      "Total units moved by stock transactions.",
		},
		[]string{"type"},
	)

	orderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gold360",
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Total number of order status transitions.",
		},
		[]string{"status"},
	)

	transferTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gold360",
			Subsystem: "transfers",
			Name:      "transitions_total",
			Help:      "Total number of stock transfer status transitions.",
		},
		[]string{"status"},
	)

	loyaltyPoints = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gold360",
			Subsystem: "loyalty",
			Name:      "points_total",
			Help:      "Total loyalty points moved, by ledger entry kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		stockTransactions,
		stockUnitsMoved,
		orderTransitions,
		transferTransitions,
		loyaltyPoints,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordStockTransaction records a journaled stock mutation.
func RecordStockTransaction(txType string, quantity int) {
	if quantity < 0 {
		quantity = 0
	}
	stockTransactions.WithLabelValues(txType).Inc()
	stockUnitsMoved.WithLabelValues(txType).Add(float64(quantity))
}

// RecordOrderTransition records an order reaching a new status.
func RecordOrderTransition(status string) {
	orderTransitions.WithLabelValues(status).Inc()
}

// RecordTransferTransition records a stock transfer reaching a new status.
func RecordTransferTransition(status string) {
	transferTransitions.WithLabelValues(status).Inc()
}

// RecordLoyaltyPoints records point movement on the loyalty ledger.
func RecordLoyaltyPoints(kind string, points int) {
	if points < 0 {
		points = -points
	}
	loyaltyPoints.WithLabelValues(kind).Add(float64(points))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource identifiers so metric labels stay bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch len(parts) {
	case 1:
		return "/" + parts[0]
	case 2:
		if parts[0] == "loyalty" || parts[0] == "auth" || parts[0] == "inventory" {
			return "/" + parts[0] + "/" + parts[1]
		}
		return "/" + parts[0] + "/:id"
	default:
		return "/" + parts[0] + "/:id/" + strings.Join(parts[2:], "/")
	}
}

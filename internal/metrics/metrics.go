package metrics

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strconv"
	"time"
)

var (
	// Registry holds the application-specific collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "erp",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "erp",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "erp",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route"})

	ordersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "erp",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Orders persisted.",
	})

	statusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "erp",
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Order status writes by previous and new status.",
	}, []string{"from", "to"})

	stockDeducted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "erp",
		Subsystem: "inventory",
		Name:      "units_deducted_total",
		Help:      "Units removed from on-hand stock by order completion.",
	})

	lowStockAlerts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "erp",
		Subsystem: "inventory",
		Name:      "low_stock_alerts_total",
		Help:      "Low-stock alerts raised, by trigger.",
	}, []string{"trigger"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight, httpRequests, httpDuration,
		ordersCreated, statusTransitions, stockDeducted, lowStockAlerts,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHTTP records in-flight, count and latency per chi route pattern.
func InstrumentHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func OrderCreated() { ordersCreated.Inc() }

func StatusTransition(from, to string) { statusTransitions.WithLabelValues(from, to).Inc() }

func StockDeducted(units int) { stockDeducted.Add(float64(units)) }

func LowStockAlert(trigger string) { lowStockAlerts.WithLabelValues(trigger).Inc() }

// Package metrics, Prometheus metriklerini tanımlar ve /metrics handler'ını sunar.
//
// Global registry yerine her Metrics kendi registry'sini taşır — testler
// birbirinin sayaçlarını görmez ve "duplicate registration" panic'i olmaz.
// Tüm method'lar nil receiver'da no-op'tur; METRICS_ENABLED=false iken
// servislere nil geçilebilir.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pazar"

// Metrics, uygulama metrikleri.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	ordersCreated prometheus.Counter
	orderRevenue  prometheus.Counter
	orderStatus   *prometheus.CounterVec
}

// New, metrikleri yeni bir registry'ye kaydeder. Go runtime ve process
// collector'ları da eklenir.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Labels: method, route (ServeMux pattern), status
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),

		ordersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total orders placed through checkout",
		}),

		// Para birimi minor unit; Prometheus float tutar ama kuruşlar tam sayı kalır.
		orderRevenue: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_revenue_total",
			Help:      "Sum of order totals at checkout, in minor currency units",
		}),

		// Labels: status (hedef durum)
		orderStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_status_total",
			Help:      "Order status transitions by target status",
		}, []string{"status"}),
	}
}

// Handler, /metrics endpoint'i.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry, testlerde metrik değerlerini okumak için.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest, tamamlanan HTTP isteğini kaydeder.
func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TrackOnlineUsers, bağlı tekil WebSocket kullanıcı sayısını scrape anında
// count'tan okuyan bir gauge kaydeder.
func (m *Metrics) TrackOnlineUsers(count func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "online_users",
		Help:      "Number of distinct users with an open WebSocket connection.",
	}, func() float64 { return float64(count()) }))
}

// OrderCreated, checkout sonrası çağrılır.
func (m *Metrics) OrderCreated(total int64) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.orderRevenue.Add(float64(total))
}

// OrderStatusChanged, başarılı durum geçişinde çağrılır.
func (m *Metrics) OrderStatusChanged(status string) {
	if m == nil {
		return
	}
	m.orderStatus.WithLabelValues(status).Inc()
}

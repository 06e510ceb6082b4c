package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// Deliveries counts outbound delivery outcomes by walker and terminal
	// status (delivered, failed, dead_lettered).
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hookd_webhook_deliveries_total", Help: "Webhook delivery attempts by walker and outcome."},
		[]string{"walker", "status"},
	)

	// DeliveryLatency tracks outbound delivery latencies in milliseconds.
	DeliveryLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "hookd_webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"walker", "status"},
	)

	// InboundRequests counts inbound webhook calls by walker and result.
	InboundRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hookd_inbound_requests_total", Help: "Inbound webhook requests by walker and result."},
		[]string{"walker", "result"},
	)
)

var regOnce sync.Once

// Register registers all collectors on the dedicated registry.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(Deliveries)
		Registry.MustRegister(DeliveryLatency)
		Registry.MustRegister(InboundRequests)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

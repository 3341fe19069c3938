package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics counts checkout outcomes and measures the time spent in
// the order-creation transaction.
type CheckoutMetrics struct {
	Orders    *prometheus.CounterVec
	LatencyMS prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout collectors on reg. Tests pass
// their own registry.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "orders_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "duration_ms",
		Help:      "Order creation latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	reg.MustRegister(orders, latency)
	return &CheckoutMetrics{Orders: orders, LatencyMS: latency}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

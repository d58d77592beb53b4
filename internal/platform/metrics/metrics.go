package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront's Prometheus counters on a private
// registry.
type Metrics struct {
	Registry *prometheus.Registry

	SignupsTotal         prometheus.Counter
	SigninsTotal         prometheus.Counter
	OTPIssuedTotal       prometheus.Counter
	PasswordResetsTotal  prometheus.Counter
	ProductsCreatedTotal prometheus.Counter
	APIErrorsTotal       *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		SignupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Total number of accounts created.",
		}),
		SigninsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signins_total",
			Help:      "Total number of successful signins.",
		}),
		OTPIssuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_issued_total",
			Help:      "Total number of one-time codes issued.",
		}),
		PasswordResetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Total number of completed password resets.",
		}),
		ProductsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_created_total",
			Help:      "Total number of products created.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by operation.",
		}, []string{"operation"}),
	}

	registry.MustRegister(
		m.SignupsTotal,
		m.SigninsTotal,
		m.OTPIssuedTotal,
		m.PasswordResetsTotal,
		m.ProductsCreatedTotal,
		m.APIErrorsTotal,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

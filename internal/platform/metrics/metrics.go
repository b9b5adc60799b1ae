// Package metrics exposes the service's business counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/library-service/internal/ports"
)

const namespace = "library"

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// BookMetrics implements ports.BookMetrics with Prometheus counters.
type BookMetrics struct {
	created        prometheus.Counter
	normalizations *prometheus.CounterVec
	queries        *prometheus.CounterVec
}

var _ ports.BookMetrics = (*BookMetrics)(nil)

// NewBookMetrics creates the book counters and registers them with reg.
func NewBookMetrics(reg prometheus.Registerer) (*BookMetrics, error) {
	m := &BookMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_created_total",
			Help:      "Books successfully stored.",
		}),
		normalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_date_normalizations_total",
			Help:      "Published dates normalized, by outcome (gregorian, buddhist, rejected).",
		}, []string{"outcome"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "book_queries_total",
			Help:      "Author listings, by result (found, empty).",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.created, m.normalizations, m.queries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// Pre-create label sets so every series is exported from the start.
	for _, outcome := range []string{ports.OutcomeGregorian, ports.OutcomeBuddhist, ports.OutcomeRejected} {
		m.normalizations.WithLabelValues(outcome)
	}
	m.queries.WithLabelValues("found")
	m.queries.WithLabelValues("empty")

	return m, nil
}

// PublishDateNormalized implements ports.BookMetrics.
func (m *BookMetrics) PublishDateNormalized(outcome string) {
	m.normalizations.WithLabelValues(outcome).Inc()
}

// BookCreated implements ports.BookMetrics.
func (m *BookMetrics) BookCreated() {
	m.created.Inc()
}

// BooksQueried implements ports.BookMetrics.
func (m *BookMetrics) BooksQueried(found bool) {
	result := "empty"
	if found {
		result = "found"
	}
	m.queries.WithLabelValues(result).Inc()
}

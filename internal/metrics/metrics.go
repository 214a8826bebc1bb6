package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ybakhan/flakyping/internal/ping"
)

const namespace = "flaky_ping"

// Collector exports classifier outcomes and connection counts.
type Collector struct {
	registry    *prometheus.Registry
	replies     *prometheus.CounterVec
	invalid     prometheus.Counter
	cacheLength prometheus.Gauge
	held        prometheus.Gauge
}

// New returns a Collector registered on its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Ping submissions by simulated outcome.",
		}, []string{"outcome"}),
		invalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_records_total",
			Help:      "Accepted submissions that failed validation.",
		}),
		cacheLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_length",
			Help:      "Records currently held in the request cache.",
		}),
		held: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "held_connections",
			Help:      "Connections held open without a reply.",
		}),
	}
	c.registry.MustRegister(c.replies, c.invalid, c.cacheLength, c.held)
	return c
}

func (c *Collector) RecordOutcome(o ping.Outcome) {
	c.replies.WithLabelValues(o.String()).Inc()
}

func (c *Collector) RecordInvalid() {
	c.invalid.Inc()
}

func (c *Collector) SetCacheLength(n int) {
	c.cacheLength.Set(float64(n))
}

func (c *Collector) ConnectionHung() {
	c.held.Inc()
}

func (c *Collector) HungConnectionReleased() {
	c.held.Dec()
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

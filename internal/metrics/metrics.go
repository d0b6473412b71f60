// Package metrics exposes snackbar lifecycle counters to Prometheus.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/snackbar/internal/snackbar"
)

const namespace = "snackbar"

// Collector holds the Prometheus metrics of a snackbar. It implements
// snackbar.Delegate so it can observe the bar directly.
type Collector struct {
	RequestsTotal    *prometheus.CounterVec
	AppearedTotal    prometheus.Counter
	DisappearedTotal *prometheus.CounterVec
	ActionsTotal     prometheus.Counter
	Visible          prometheus.Gauge
	VisibleSeconds   prometheus.Histogram

	registry *prometheus.Registry
	now      func() time.Time

	mu       sync.Mutex
	shownGen uint64 // Generation of the request on screen, 0 when none
	shownAt  time.Time
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of show requests by source",
		}, []string{"source"}),
		AppearedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appeared_total",
			Help:      "Total number of snackbars that became fully visible",
		}),
		DisappearedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disappeared_total",
			Help:      "Total number of finished requests by reason",
		}, []string{"reason"}),
		ActionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total number of action control activations",
		}),
		Visible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible",
			Help:      "1 while a snackbar is fully visible",
		}),
		VisibleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "visible_duration_seconds",
			Help:      "Time between a snackbar appearing and leaving",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		now: time.Now,
	}

	// Reasons are known up front so the series exist at zero
	for _, r := range []snackbar.Reason{snackbar.ReasonTimer, snackbar.ReasonUserAction, snackbar.ReasonOverridden} {
		c.DisappearedTotal.WithLabelValues(r.String())
	}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(
		c.RequestsTotal,
		c.AppearedTotal,
		c.DisappearedTotal,
		c.ActionsTotal,
		c.Visible,
		c.VisibleSeconds,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRequest counts a show request received from source.
func (c *Collector) RecordRequest(source string) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(source).Inc()
}

// Appeared implements snackbar.Delegate.
func (c *Collector) Appeared(req snackbar.Request) {
	c.AppearedTotal.Inc()
	c.Visible.Set(1)

	c.mu.Lock()
	c.shownGen = req.Generation()
	c.shownAt = c.now()
	c.mu.Unlock()
}

// Disappeared implements snackbar.Delegate.
func (c *Collector) Disappeared(req snackbar.Request, reason snackbar.Reason) {
	c.DisappearedTotal.WithLabelValues(reason.String()).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Requests dropped while waiting never appeared
	if c.shownGen == 0 || req.Generation() != c.shownGen {
		return
	}
	c.shownGen = 0
	c.Visible.Set(0)
	c.VisibleSeconds.Observe(c.now().Sub(c.shownAt).Seconds())
}

// ActionTriggered implements snackbar.Delegate.
func (c *Collector) ActionTriggered(snackbar.Request) {
	c.ActionsTotal.Inc()
}

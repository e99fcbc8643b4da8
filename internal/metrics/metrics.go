// Package metrics exposes in-memory prometheus counters for the site.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

// Metrics groups every collector the server updates.
type Metrics struct {
	registry *prometheus.Registry

	PageViews       prometheus.Counter
	Reveals         prometheus.Counter
	Navigations     *prometheus.CounterVec
	ActiveChanges   *prometheus.CounterVec
	ThemeToggles    *prometheus.CounterVec
	Contact         prometheus.Counter
	LiveConnections prometheus.Gauge
	LiveDropped     prometheus.Counter
}

// New registers the collectors on a fresh registry. sessions reports the
// live session count at scrape time; it may be nil.
func New(sessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PageViews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_views_total",
			Help:      "Full page renders.",
		}),
		Reveals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reveals_total",
			Help:      "Regions that transitioned from hidden to revealed.",
		}),
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Navigation requests by outcome (scrolled or ignored).",
		}, []string{"outcome"}),
		ActiveChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "active_section_changes_total",
			Help:      "Times each section became the active one.",
		}, []string{"section"}),
		ThemeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_toggles_total",
			Help:      "Theme toggles by resulting mode.",
		}, []string{"mode"}),
		Contact: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions (acknowledged, never sent).",
		}),
		LiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_connections",
			Help:      "Open live bridge connections.",
		}),
		LiveDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_messages_dropped_total",
			Help:      "Inbound live messages dropped by the rate limiter or as malformed.",
		}),
	}
	reg.MustRegister(
		m.PageViews, m.Reveals, m.Navigations, m.ActiveChanges,
		m.ThemeToggles, m.Contact, m.LiveConnections, m.LiveDropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if sessions != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Visitor sessions held in memory.",
		}, func() float64 { return float64(sessions()) }))
	}
	return m
}

// Registry is the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes Prometheus metrics for routing, queries and notifications.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RouterOps             *prometheus.CounterVec
	RouterFanout          *prometheus.CounterVec
	RejectedRegistrations prometheus.Counter
	Notifications         *prometheus.CounterVec
	QueryErrors           prometheus.Counter
	Resources             *prometheus.GaugeVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RouterOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mxview_router_ops_total",
			Help: "Single-target operations routed, by operation and target kind",
		}, []string{"op", "target"}),
		RouterFanout: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mxview_router_fanout_total",
			Help: "Collection-wide operations fanned out to every provider",
		}, []string{"op"}),
		RejectedRegistrations: f.NewCounter(prometheus.CounterOpts{
			Name: "mxview_router_rejected_registrations_total",
			Help: "Registrations rejected because they targeted a virtual domain",
		}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mxview_notifications_total",
			Help: "Registration notifications emitted, by kind",
		}, []string{"kind"}),
		QueryErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "mxview_query_errors_total",
			Help: "Elements skipped during queries because their name could not be built",
		}),
		Resources: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mxview_resources",
			Help: "Resources visible per domain at the last count",
		}, []string{"domain"}),
	}
}

func (m *Metrics) IncRouted(op, target string) {
	if m == nil {
		return
	}
	m.RouterOps.WithLabelValues(op, target).Inc()
}

func (m *Metrics) IncFanout(op string) {
	if m == nil {
		return
	}
	m.RouterFanout.WithLabelValues(op).Inc()
}

func (m *Metrics) IncRejectedRegistration() {
	if m == nil {
		return
	}
	m.RejectedRegistrations.Inc()
}

func (m *Metrics) IncNotification(kind string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncQueryError() {
	if m == nil {
		return
	}
	m.QueryErrors.Inc()
}

func (m *Metrics) SetResources(domain string, count int) {
	if m == nil {
		return
	}
	m.Resources.WithLabelValues(domain).Set(float64(count))
}

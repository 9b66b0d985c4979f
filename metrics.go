package nexusflow

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the runtime's counters. Attach one to a pipeline with
// WithMetrics; without it the runtime keeps only per-dispatcher drop
// counts.
type Metrics struct {
	dispatched *prometheus.CounterVec
	dropped    *prometheus.CounterVec
}

// NewMetrics creates the counter set and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexusflow",
			Name:      "messages_dispatched_total",
			Help:      "Messages pushed into a downstream channel.",
		}, []string{"module", "channel"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexusflow",
			Name:      "messages_dropped_total",
			Help:      "Broadcast messages dropped because a downstream channel was full.",
		}, []string{"module", "channel"}),
	}
	reg.MustRegister(m.dispatched, m.dropped)
	return m
}

func (m *Metrics) observeDispatch(module, channel string) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(module, channel).Inc()
}

func (m *Metrics) observeDrop(module, channel string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(module, channel).Inc()
}

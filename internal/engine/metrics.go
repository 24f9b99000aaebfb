package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics mirrors a Counters snapshot into Prometheus counter vectors,
// giving the run's outcome counts a /metrics home when --metrics-addr
// is configured. It never drives decisions; it only observes.
type Metrics struct {
	routes *prometheus.CounterVec
	rov    *prometheus.CounterVec
	rounds prometheus.Counter
}

// NewMetrics registers the engine's counter vectors against reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bgpsim",
			Name:      "routes_total",
			Help:      "Route-level outcomes during propagation.",
		}, []string{"outcome"}),
		rov: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bgpsim",
			Name:      "rov_validations_total",
			Help:      "ROV validation outcomes during propagation.",
		}, []string{"state"}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bgpsim",
			Name:      "rounds_total",
			Help:      "Propagation rounds executed.",
		}),
	}
	reg.MustRegister(m.routes, m.rov, m.rounds)
	return m
}

// Observe adds c's deltas to the registered vectors. Counters is a
// monotonic run-scoped accumulator, so Observe should be called once,
// after Run returns, not per round.
func (m *Metrics) Observe(c *Counters) {
	m.routes.WithLabelValues("accepted").Add(float64(c.RouteAccepted))
	m.routes.WithLabelValues("rejected").Add(float64(c.RouteRejected))
	m.routes.WithLabelValues("loop_prevented").Add(float64(c.LoopPrevented))
	m.routes.WithLabelValues("neighbor_check_dropped").Add(float64(c.NeighborCheckDropped))
	m.routes.WithLabelValues("unreachable_origin_skipped").Add(float64(c.UnreachableOriginSkipped))

	m.rov.WithLabelValues("valid").Add(float64(c.ROVValid))
	m.rov.WithLabelValues("invalid").Add(float64(c.ROVInvalid))
	m.rov.WithLabelValues("unknown").Add(float64(c.ROVUnknown))

	m.rounds.Add(float64(c.RoundsExecuted))
}

// Package engine implements the three-phase, rank-ordered propagation
// loop that drives an AS graph to a fixed point.
package engine

import (
	"errors"

	"github.com/ajimenezvargas/bgp-route-sim/internal/topology"
)

// ErrTopologyCycle is returned by Run if the graph's provider-customer
// DAG contains a cycle. Callers are expected to check
// g.HasCycle()/g.FindCycle() before calling Run so that a cycle can be
// reported with a diagnostic path; Run re-checks defensively and never
// panics.
var ErrTopologyCycle = errors.New("engine: topology contains a provider-customer cycle")

// Counters is the engine's route-outcome accumulator, one per Run.
type Counters = topology.Counters

// ProgressEvent is one phase-boundary notification emitted during Run
// when a non-nil Sink is supplied.
type ProgressEvent struct {
	Round int
	Phase string // "phase1", "phase2", "phase3"
	RIBChanged bool
}

// Sink receives ProgressEvents during Run. Implementations must not
// block; the engine makes no concurrency guarantees about delivery
// order beyond the order Run emits them in.
type Sink interface {
	Notify(ProgressEvent)
}

// Run drives g to a fixed point using the three-phase rank-ordered
// convergence loop of the propagation design: ascending-rank
// customer→provider, flat peer↔peer, then descending-rank
// provider→customer, repeated until a whole round produces no RIB
// change. counters must be non-nil; progress may be nil.
func Run(g *topology.Graph, counters *Counters, progress Sink) error {
	if g.HasCycle() {
		return ErrTopologyCycle
	}

	wireCounters(g, counters)

	round := 0
	for {
		round++
		changed := false

		if phase1(g, progress, round) {
			changed = true
		}
		if phase2(g, progress, round) {
			changed = true
		}
		if phase3(g, progress, round) {
			changed = true
		}

		counters.RoundsExecuted++
		if !changed {
			return nil
		}
	}
}

func wireCounters(g *topology.Graph, counters *Counters) {
	for _, asn := range g.ASNs() {
		g.Get(asn).Counters = counters
	}
}

func notify(progress Sink, round int, phase string, changed bool) {
	if progress == nil {
		return
	}
	progress.Notify(ProgressEvent{Round: round, Phase: phase, RIBChanged: changed})
}

// phase1 is customer→provider, ascending ranks: drain then propagate
// up at each rank before moving to the next.
func phase1(g *topology.Graph, progress Sink, round int) bool {
	changed := false
	for rank, nodes := range g.Ranks {
		if rank > 0 {
			for _, n := range nodes {
				if n.ProcessIncomingQueue() {
					changed = true
				}
			}
		}
		for _, n := range nodes {
			n.PropagateToProviders()
		}
	}
	drainAll(g)
	notify(progress, round, "phase1", changed)
	return changed
}

// phase2 is the flat peer↔peer sweep: every AS exports to its peers,
// then every AS drains.
func phase2(g *topology.Graph, progress Sink, round int) bool {
	for _, nodes := range g.Ranks {
		for _, n := range nodes {
			n.PropagateToPeers()
		}
	}
	changed := false
	for _, nodes := range g.Ranks {
		for _, n := range nodes {
			if n.ProcessIncomingQueue() {
				changed = true
			}
		}
	}
	notify(progress, round, "phase2", changed)
	return changed
}

// phase3 is provider→customer, descending ranks: drain then propagate
// down at each rank before moving to the next-lower rank.
func phase3(g *topology.Graph, progress Sink, round int) bool {
	changed := false
	maxRank := len(g.Ranks) - 1
	for rank := maxRank; rank >= 0; rank-- {
		nodes := g.Ranks[rank]
		if rank < maxRank {
			for _, n := range nodes {
				if n.ProcessIncomingQueue() {
					changed = true
				}
			}
		}
		for _, n := range nodes {
			n.PropagateToCustomers()
		}
	}
	drainAll(g)
	notify(progress, round, "phase3", changed)
	return changed
}

// drainAll clears each AS's to-propagate set once its announcements
// have been enqueued on every neighbor for the current phase.
func drainAll(g *topology.Graph) {
	for _, nodes := range g.Ranks {
		for _, n := range nodes {
			n.ClearPropagated()
		}
	}
}

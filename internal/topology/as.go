// Package topology implements the AS graph: nodes, neighbor wiring, rank
// computation, cycle detection, and the per-AS decision process.
package topology

import (
	"sort"

	"github.com/ajimenezvargas/bgp-route-sim/internal/bgp"
	"github.com/ajimenezvargas/bgp-route-sim/internal/prefix"
	"github.com/ajimenezvargas/bgp-route-sim/internal/rov"
)

// queuedAnnouncement is one pending item in an AS's incoming queue.
type queuedAnnouncement struct {
	ann  bgp.Announcement
	from bgp.ASN
}

// AS is one node in the graph: an Autonomous System with neighbor lists
// split by relationship, a RIB, and an incoming queue awaiting drain.
type AS struct {
	ASN bgp.ASN

	Customers []*AS
	Providers []*AS
	Peers     []*AS

	Rank int

	RIB map[prefix.Prefix]bgp.Announcement

	incoming    []queuedAnnouncement
	toPropagate map[prefix.Prefix]bgp.Announcement

	Validator   *rov.Validator
	DropInvalid bool

	Counters *Counters
}

func newAS(asn bgp.ASN) *AS {
	return &AS{
		ASN:         asn,
		RIB:         make(map[prefix.Prefix]bgp.Announcement),
		toPropagate: make(map[prefix.Prefix]bgp.Announcement),
	}
}

// relationshipTo returns how neighbor relates to this AS (i.e. how an
// announcement received from neighbor should be tagged), or false if
// neighbor is not wired to this AS at all.
func (a *AS) relationshipTo(neighbor bgp.ASN) (bgp.Relationship, bool) {
	if containsASN(a.Customers, neighbor) {
		return bgp.Customer, true
	}
	if containsASN(a.Providers, neighbor) {
		return bgp.Provider, true
	}
	if containsASN(a.Peers, neighbor) {
		return bgp.Peer, true
	}
	return bgp.Relationship(0), false
}

func containsASN(nodes []*AS, asn bgp.ASN) bool {
	for _, n := range nodes {
		if n.ASN == asn {
			return true
		}
	}
	return false
}

// Receive enqueues ann for later processing; it performs no validation
// and no decision, keeping the rank-phased batching model.
func (a *AS) Receive(ann bgp.Announcement, from bgp.ASN) {
	a.incoming = append(a.incoming, queuedAnnouncement{ann: ann, from: from})
}

// ProcessIncomingQueue drains the incoming queue in arrival order,
// running each item through the neighbor check, loop prevention, hop
// transform, ROV validation, and RIB decision steps. It reports
// whether any RIB entry changed.
func (a *AS) ProcessIncomingQueue() bool {
	changed := false
	queue := a.incoming
	a.incoming = nil

	for _, item := range queue {
		rel, ok := a.relationshipTo(item.from)
		if !ok {
			a.bumpCounter(func(c *Counters) { c.NeighborCheckDropped++ })
			continue
		}

		if item.ann.Has(a.ASN) {
			a.bumpCounter(func(c *Counters) { c.LoopPrevented++ })
			continue
		}

		candidate := item.ann.Copy().Prepend(a.ASN)
		candidate.Relationship = rel
		candidate.LocalPref = bgp.LocalPreference(rel)

		if a.Validator != nil {
			candidate.ROVState = a.Validator.Validate(candidate.Prefix, candidate.Origin)
			a.bumpROVCounter(candidate.ROVState)
			if a.DropInvalid && candidate.ROVState == bgp.Invalid {
				a.bumpCounter(func(c *Counters) { c.RouteRejected++ })
				continue
			}
		}

		if a.installIfBetter(candidate) {
			changed = true
			a.bumpCounter(func(c *Counters) { c.RouteAccepted++ })
		} else {
			a.bumpCounter(func(c *Counters) { c.RouteRejected++ })
		}
	}

	return changed
}

// installIfBetter compares candidate against the current RIB entry (if
// any) for its prefix using isBetterRoute, installing and marking it
// for propagation if it wins.
func (a *AS) installIfBetter(candidate bgp.Announcement) bool {
	existing, ok := a.RIB[candidate.Prefix]
	if ok && !a.isBetterRoute(candidate, existing) {
		return false
	}
	a.RIB[candidate.Prefix] = candidate
	a.toPropagate[candidate.Prefix] = candidate
	return true
}

// isBetterRoute implements the five-tier decision order of §4.5: ROV
// preference (gated on drop_invalid), local-pref, path length, the
// neighbor-ASN tie-break, then incumbency.
func (a *AS) isBetterRoute(candidate, incumbent bgp.Announcement) bool {
	if a.DropInvalid && a.Validator != nil {
		cRank, iRank := rovRank(candidate.ROVState), rovRank(incumbent.ROVState)
		if cRank != iRank {
			return cRank > iRank
		}
	}

	if candidate.LocalPref != incumbent.LocalPref {
		return candidate.LocalPref > incumbent.LocalPref
	}

	if len(candidate.ASPath) != len(incumbent.ASPath) {
		return len(candidate.ASPath) < len(incumbent.ASPath)
	}

	cIdx := tieBreakIndex(candidate.ASPath)
	iIdx := tieBreakIndex(incumbent.ASPath)
	cNeighbor, iNeighbor := candidate.ASPath[cIdx], incumbent.ASPath[iIdx]
	if cNeighbor != iNeighbor {
		return cNeighbor < iNeighbor
	}

	return false
}

// tieBreakIndex is min(1, len(path)-1): the prior-hop slot for any
// path of length ≥ 2, and index 0 (the only slot) for a length-1 path.
func tieBreakIndex(path []bgp.ASN) int {
	if len(path)-1 < 1 {
		return len(path) - 1
	}
	return 1
}

// rovRank orders ROV states Valid > Unknown > Invalid for comparison.
func rovRank(s bgp.ROVState) int {
	switch s {
	case bgp.Valid:
		return 2
	case bgp.Unknown:
		return 1
	case bgp.Invalid:
		return 0
	default:
		return 0
	}
}

// PropagateToProviders exports every RIB entry allowed to reach a
// provider to all providers, in ascending prefix order.
func (a *AS) PropagateToProviders() {
	a.propagate(a.Providers, bgp.Provider)
}

// PropagateToPeers exports every RIB entry allowed to reach a peer to
// all peers, in ascending prefix order.
func (a *AS) PropagateToPeers() {
	a.propagate(a.Peers, bgp.Peer)
}

// PropagateToCustomers exports every RIB entry allowed to reach a
// customer to all customers, in ascending prefix order.
func (a *AS) PropagateToCustomers() {
	a.propagate(a.Customers, bgp.Customer)
}

// propagate iterates the RIB in ascending prefix order, exporting each
// entry to neighbors if the valley-free and community filters allow
// it. The RIB, not the to-propagate set, is the source of truth for
// export: re-advertising the whole table every sweep is what makes the
// loop idempotent once converged.
func (a *AS) propagate(neighbors []*AS, direction bgp.Relationship) {
	for _, p := range sortedPrefixes(a.RIB) {
		ann := a.RIB[p]

		if ann.NoAdvertise {
			continue
		}
		if ann.NoExport && direction != bgp.Customer {
			continue
		}
		if !bgp.ShouldExport(ann.Relationship, direction) {
			continue
		}
		for _, n := range neighbors {
			n.Receive(ann, a.ASN)
		}
	}
}

// ClearPropagated empties the changed-prefixes bookkeeping set; called
// by the engine at the end of the upward and the downward sweep of
// every round.
func (a *AS) ClearPropagated() {
	a.toPropagate = make(map[prefix.Prefix]bgp.Announcement)
}

// Changed returns the prefixes whose RIB entry was inserted or
// replaced since the last ClearPropagated call, for diagnostics.
func (a *AS) Changed() map[prefix.Prefix]bgp.Announcement {
	return a.toPropagate
}

// OriginatePrefix constructs a self-originated announcement for p,
// validates it if a Validator is attached, and installs it directly
// into the RIB and the to-propagate set.
func (a *AS) OriginatePrefix(p prefix.Prefix) {
	ann := bgp.NewAnnouncement(a.ASN, p)
	if a.Validator != nil {
		ann.ROVState = a.Validator.Validate(p, a.ASN)
	}
	a.RIB[p] = ann
	a.toPropagate[p] = ann
}

func sortedPrefixes(m map[prefix.Prefix]bgp.Announcement) []prefix.Prefix {
	out := make([]prefix.Prefix, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Network != out[j].Network {
			return out[i].Network < out[j].Network
		}
		return out[i].Length < out[j].Length
	})
	return out
}

func (a *AS) bumpCounter(f func(*Counters)) {
	if a.Counters != nil {
		f(a.Counters)
	}
}

func (a *AS) bumpROVCounter(s bgp.ROVState) {
	if a.Counters == nil {
		return
	}
	switch s {
	case bgp.Valid:
		a.Counters.ROVValid++
	case bgp.Invalid:
		a.Counters.ROVInvalid++
	case bgp.Unknown:
		a.Counters.ROVUnknown++
	}
}

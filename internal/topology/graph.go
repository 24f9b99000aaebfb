package topology

import (
	"sort"

	"github.com/ajimenezvargas/bgp-route-sim/internal/bgp"
	"github.com/ajimenezvargas/bgp-route-sim/internal/rov"
)

// Graph is the arena owning every AS node, plus the shared ROV
// validator and the rank buckets computed by ComputePropagationRanks.
type Graph struct {
	nodes    map[bgp.ASN]*AS
	Ranks    [][]*AS
	ROVValidator *rov.Validator
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[bgp.ASN]*AS)}
}

// GetOrCreate returns the node for asn, creating and registering it on
// first reference.
func (g *Graph) GetOrCreate(asn bgp.ASN) *AS {
	if n, ok := g.nodes[asn]; ok {
		return n
	}
	n := newAS(asn)
	g.nodes[asn] = n
	return n
}

// Get returns the node for asn, or nil if it was never created.
func (g *Graph) Get(asn bgp.ASN) *AS {
	return g.nodes[asn]
}

// Len returns the number of AS nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// ASNs returns every ASN in the graph, sorted ascending.
func (g *Graph) ASNs() []bgp.ASN {
	out := make([]bgp.ASN, 0, len(g.nodes))
	for asn := range g.nodes {
		out = append(out, asn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddCustomerProvider wires p as provider of c, ensuring both nodes
// exist and keeping both neighbor lists sorted by ASN.
func (g *Graph) AddCustomerProvider(p, c bgp.ASN) {
	provider := g.GetOrCreate(p)
	customer := g.GetOrCreate(c)
	provider.Customers = insertSorted(provider.Customers, customer)
	customer.Providers = insertSorted(customer.Providers, provider)
}

// AddPeering wires a and b as symmetric peers.
func (g *Graph) AddPeering(a, b bgp.ASN) {
	nodeA := g.GetOrCreate(a)
	nodeB := g.GetOrCreate(b)
	nodeA.Peers = insertSorted(nodeA.Peers, nodeB)
	nodeB.Peers = insertSorted(nodeB.Peers, nodeA)
}

func insertSorted(list []*AS, n *AS) []*AS {
	for _, existing := range list {
		if existing.ASN == n.ASN {
			return list
		}
	}
	list = append(list, n)
	sort.Slice(list, func(i, j int) bool { return list[i].ASN < list[j].ASN })
	return list
}

type dfsState int

const (
	unvisited dfsState = iota
	inStack
	done
)

// HasCycle reports whether the provider-customer DAG contains a cycle.
func (g *Graph) HasCycle() bool {
	_, ok := g.FindCycle()
	return ok
}

// FindCycle runs a DFS over the provider-direction edges in ASN order
// and returns the cycle (from the re-encountered node onward) if one
// exists.
func (g *Graph) FindCycle() ([]bgp.ASN, bool) {
	state := make(map[bgp.ASN]dfsState, len(g.nodes))
	var stack []bgp.ASN

	var visit func(n *AS) ([]bgp.ASN, bool)
	visit = func(n *AS) ([]bgp.ASN, bool) {
		state[n.ASN] = inStack
		stack = append(stack, n.ASN)

		for _, provider := range n.Providers {
			switch state[provider.ASN] {
			case inStack:
				for i, asn := range stack {
					if asn == provider.ASN {
						cycle := append([]bgp.ASN{}, stack[i:]...)
						return cycle, true
					}
				}
			case unvisited:
				if cycle, found := visit(provider); found {
					return cycle, true
				}
			}
		}

		state[n.ASN] = done
		stack = stack[:len(stack)-1]
		return nil, false
	}

	for _, asn := range g.ASNs() {
		n := g.nodes[asn]
		if state[n.ASN] == unvisited {
			if cycle, found := visit(n); found {
				return cycle, true
			}
		}
	}
	return nil, false
}

// ComputePropagationRanks assigns every AS a rank equal to the length
// of the longest customer chain below it, then buckets nodes into
// g.Ranks sorted by ASN within each bucket. A stub with no customers
// is rank 0; a provider's rank always exceeds every one of its
// customers' ranks (rank(provider) >= rank(customer) + 1), so Tier-1
// ASes end up at the highest rank. Assumes the provider graph is
// acyclic; callers must check HasCycle first.
func (g *Graph) ComputePropagationRanks() {
	memo := make(map[bgp.ASN]int, len(g.nodes))

	var rankOf func(n *AS) int
	rankOf = func(n *AS) int {
		if r, ok := memo[n.ASN]; ok {
			return r
		}
		r := 0
		for _, customer := range n.Customers {
			if candidate := rankOf(customer) + 1; candidate > r {
				r = candidate
			}
		}
		memo[n.ASN] = r
		return r
	}

	maxRank := 0
	for _, asn := range g.ASNs() {
		n := g.nodes[asn]
		n.Rank = rankOf(n)
		if n.Rank > maxRank {
			maxRank = n.Rank
		}
	}

	buckets := make([][]*AS, maxRank+1)
	for _, asn := range g.ASNs() {
		n := g.nodes[asn]
		buckets[n.Rank] = append(buckets[n.Rank], n)
	}
	g.Ranks = buckets
}

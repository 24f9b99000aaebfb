// Package export renders converged AS routing tables as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ajimenezvargas/bgp-route-sim/internal/bgp"
	"github.com/ajimenezvargas/bgp-route-sim/internal/prefix"
	"github.com/ajimenezvargas/bgp-route-sim/internal/topology"
)

// WriteRoutingTable writes one row per (AS, prefix) pair across every
// AS's RIB, in ascending ASN then ascending prefix order, with header
// "asn,prefix,as_path".
func WriteRoutingTable(w io.Writer, g *topology.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"asn", "prefix", "as_path"}); err != nil {
		return err
	}

	for _, asn := range g.ASNs() {
		n := g.Get(asn)
		for _, p := range sortedPrefixesFor(n) {
			ann := n.RIB[p]
			row := []string{
				strconv.FormatUint(uint64(asn), 10),
				p.String(),
				formatASPath(ann.ASPath),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func sortedPrefixesFor(n *topology.AS) []prefix.Prefix {
	out := make([]prefix.Prefix, 0, len(n.RIB))
	for p := range n.RIB {
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

// formatASPath renders a path as "(h1, h2, ..., hn)"; a single-element
// path is rendered "(h1,)" with the trailing comma per the normative
// CSV format.
func formatASPath(path []bgp.ASN) string {
	if len(path) == 0 {
		return "()"
	}
	if len(path) == 1 {
		return fmt.Sprintf("(%d,)", path[0])
	}
	parts := make([]string, len(path))
	for i, asn := range path {
		parts[i] = strconv.FormatUint(uint64(asn), 10)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

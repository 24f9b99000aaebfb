package export

import (
	"strings"
	"testing"

	"github.com/ajimenezvargas/bgp-route-sim/internal/prefix"
	"github.com/ajimenezvargas/bgp-route-sim/internal/topology"
)

func TestWriteRoutingTableFormatsASPath(t *testing.T) {
	g := topology.NewGraph()
	g.AddCustomerProvider(2, 1)
	g.ComputePropagationRanks()

	p, err := prefix.ParsePrefix("10.0.0.0/8")
	if err != nil {
		t.Fatalf("ParsePrefix: %v", err)
	}
	g.Get(2).OriginatePrefix(p)
	g.Get(2).PropagateToCustomers()
	g.Get(1).ProcessIncomingQueue()

	var buf strings.Builder
	if err := WriteRoutingTable(&buf, g); err != nil {
		t.Fatalf("WriteRoutingTable: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "asn,prefix,as_path") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, `2,10.0.0.0/8,"(2,)"`) {
		t.Errorf("missing single-element path row: %q", out)
	}
	if !strings.Contains(out, `1,10.0.0.0/8,"(1, 2)"`) {
		t.Errorf("missing multi-element path row: %q", out)
	}
}

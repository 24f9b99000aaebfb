package ingest

import (
	"strings"
	"testing"
)

func TestParseRelationships(t *testing.T) {
	input := `# comment
1|2|-1
3|4|0

5|abc|-1
`
	edges, errs := ParseRelationships(strings.NewReader(input))

	if len(edges) != 2 {
		t.Fatalf("edges = %v, want 2", edges)
	}
	if edges[0].ASN1 != 1 || edges[0].ASN2 != 2 || edges[0].Peering {
		t.Errorf("edges[0] = %+v, want provider(1->2)", edges[0])
	}
	if edges[1].ASN1 != 3 || edges[1].ASN2 != 4 || !edges[1].Peering {
		t.Errorf("edges[1] = %+v, want peering(3,4)", edges[1])
	}
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want 1", errs)
	}
}

func TestParseAnnouncementsBaseFormat(t *testing.T) {
	input := `asn,prefix,rov_invalid
1,10.0.0.0/8,false
2,20.0.0.0/8,true
`
	anns, errs := ParseAnnouncements(strings.NewReader(input))
	if len(errs) != 0 {
		t.Fatalf("unexpected errs: %v", errs)
	}
	if len(anns) != 2 {
		t.Fatalf("anns = %v, want 2", anns)
	}
	if anns[0].ASN != 1 || anns[0].ROVInvalid {
		t.Errorf("anns[0] = %+v", anns[0])
	}
	if anns[1].ASN != 2 || !anns[1].ROVInvalid {
		t.Errorf("anns[1] = %+v", anns[1])
	}
}

func TestParseAnnouncementsWithCommunityColumns(t *testing.T) {
	input := `1,10.0.0.0/8,false,true,false
2,20.0.0.0/8,false,false,true
`
	anns, errs := ParseAnnouncements(strings.NewReader(input))
	if len(errs) != 0 {
		t.Fatalf("unexpected errs: %v", errs)
	}
	if !anns[0].NoExport || anns[0].NoAdvertise {
		t.Errorf("anns[0] = %+v", anns[0])
	}
	if anns[1].NoExport || !anns[1].NoAdvertise {
		t.Errorf("anns[1] = %+v", anns[1])
	}
}

func TestParseAnnouncementsSkipsMalformedLines(t *testing.T) {
	input := `1,10.0.0.0/8,false
not,enough
abc,10.0.0.0/8,false
`
	anns, errs := ParseAnnouncements(strings.NewReader(input))
	if len(anns) != 1 {
		t.Fatalf("anns = %v, want 1", anns)
	}
	if len(errs) != 2 {
		t.Fatalf("errs = %v, want 2", errs)
	}
}

func TestParseROVASNs(t *testing.T) {
	input := "asn\n1\n2\nxyz\n3\n"
	asns, errs := ParseROVASNs(strings.NewReader(input))
	if len(asns) != 3 {
		t.Fatalf("asns = %v, want 3", asns)
	}
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want 1", errs)
	}
}

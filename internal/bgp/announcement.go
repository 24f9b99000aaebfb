package bgp

import "github.com/ajimenezvargas/bgp-route-sim/internal/prefix"

// Announcement is a single route record as carried by the simulation.
// It is a value type: every propagation hop works on a copy.
type Announcement struct {
	Origin       ASN
	Prefix       prefix.Prefix
	ASPath       []ASN // head (index 0) is the most recently added hop
	Relationship Relationship
	LocalPref    int
	ROVState     ROVState

	// NoExport and NoAdvertise mirror the two well-known BGP community
	// actions the original implementation's propagation code consults
	// (see original_source/src/AS.cpp propagateTo*). NoAdvertise
	// suppresses export to every neighbor; NoExport suppresses export
	// to peers and providers but not customers.
	NoExport    bool
	NoAdvertise bool
}

// NewAnnouncement builds a self-originated announcement: AS path is
// [origin], relationship is Origin, local-pref is Policy's Origin tier.
func NewAnnouncement(origin ASN, p prefix.Prefix) Announcement {
	return Announcement{
		Origin:       origin,
		Prefix:       p,
		ASPath:       []ASN{origin},
		Relationship: Origin,
		LocalPref:    LocalPreference(Origin),
		ROVState:     Unknown,
	}
}

// Copy returns a deep copy suitable for propagation: the AS path gets
// its own backing array so prepending on the copy never aliases ann's.
func (ann Announcement) Copy() Announcement {
	out := ann
	out.ASPath = make([]ASN, len(ann.ASPath))
	copy(out.ASPath, ann.ASPath)
	return out
}

// Prepend returns a copy of ann with asn inserted at the head of the path.
func (ann Announcement) Prepend(asn ASN) Announcement {
	out := ann.Copy()
	out.ASPath = append([]ASN{asn}, out.ASPath...)
	return out
}

// Has reports whether asn already appears anywhere in the AS path.
func (ann Announcement) Has(asn ASN) bool {
	for _, hop := range ann.ASPath {
		if hop == asn {
			return true
		}
	}
	return false
}

// PathLength is the number of hops in the AS path.
func (ann Announcement) PathLength() int {
	return len(ann.ASPath)
}

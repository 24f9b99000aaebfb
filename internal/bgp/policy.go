package bgp

// LocalPreference returns the local-pref value for a route received
// under the given relationship. Higher wins.
func LocalPreference(rel Relationship) int {
	switch rel {
	case Origin:
		return 400
	case Customer:
		return 300
	case Peer:
		return 200
	case Provider:
		return 100
	default:
		return 0
	}
}

// ShouldExport implements the valley-free export filter: a route
// learned under learnedFrom may be exported to a neighbor reached via
// exportTo only according to the Gao-Rexford rules.
func ShouldExport(learnedFrom, exportTo Relationship) bool {
	if learnedFrom == Origin {
		return true
	}
	if exportTo == Customer {
		return true
	}
	if learnedFrom == Customer {
		return true
	}
	// Peer- or provider-learned routes never go back out to a peer or
	// provider: that would create a valley.
	return false
}

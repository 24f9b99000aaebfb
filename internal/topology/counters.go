package topology

// Counters accumulates the route-level outcomes named in §4.7's failure
// semantics and §7's error-handling design. One instance is created per
// engine run and threaded into every AS node rather than read from a
// global, per the re-architecting direction in the original's design
// notes on GlobalStats.
type Counters struct {
	RouteAccepted int
	RouteRejected int
	LoopPrevented int

	ROVValid   int
	ROVInvalid int
	ROVUnknown int

	NeighborCheckDropped int
	UnreachableOriginSkipped int

	RoundsExecuted int
}

// bgpsim simulates inter-domain BGP routing over an AS-level topology
// under Gao-Rexford valley-free policy, with optional Route Origin
// Validation, and emits the converged per-AS routing table.
//
// Usage:
//
//	bgpsim --relationships rels.txt --announcements seeds.csv --output ribs.csv
//
// Environment variables (alternative to the optional ambient flags):
//
//	BGPSIM_DATABASE       PostgreSQL URL for --database
//	BGPSIM_CACHE          Redis URL for --cache
//	BGPSIM_PROGRESS_ADDR  listen address for --progress-addr
//	BGPSIM_METRICS_ADDR   listen address for --metrics-addr
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/ajimenezvargas/bgp-route-sim/internal/bgp"
	"github.com/ajimenezvargas/bgp-route-sim/internal/cache"
	"github.com/ajimenezvargas/bgp-route-sim/internal/engine"
	"github.com/ajimenezvargas/bgp-route-sim/internal/export"
	"github.com/ajimenezvargas/bgp-route-sim/internal/ingest"
	"github.com/ajimenezvargas/bgp-route-sim/internal/liveprogress"
	"github.com/ajimenezvargas/bgp-route-sim/internal/logging"
	"github.com/ajimenezvargas/bgp-route-sim/internal/rov"
	"github.com/ajimenezvargas/bgp-route-sim/internal/storage"
	"github.com/ajimenezvargas/bgp-route-sim/internal/topology"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	relationshipsFlag  = flag.String("relationships", "", "CAIDA serial-1 relationships file (required)")
	announcementsFlag  = flag.String("announcements", "", "Seed announcements CSV (required)")
	rovASNsFlag        = flag.String("rov-asns", "", "ROV-enforcing ASN list (optional)")
	outputFlag         = flag.String("output", "ribs.csv", "Output routing-table CSV path")
	databaseFlag       = flag.String("database", "", "PostgreSQL URL (optional, enables route persistence)")
	cacheFlag          = flag.String("cache", "", "Redis URL (optional, enables run memoization)")
	progressAddrFlag   = flag.String("progress-addr", "", "WebSocket progress server address (optional, e.g. :7777)")
	metricsAddrFlag    = flag.String("metrics-addr", "", "Prometheus /metrics server address (optional, e.g. :9090)")
	logFileFlag        = flag.String("log-file", "", "Additional log file path (optional)")
	verboseFlag        = flag.Bool("verbose", false, "Enable debug-level logging")
)

// envOrFlag returns the flag value if set, otherwise the environment
// variable, otherwise the default. Adapted from the teacher's
// getEnvOrFlag.
func envOrFlag(flagVal *string, envName, defaultVal string) string {
	if *flagVal != "" {
		return *flagVal
	}
	if env := os.Getenv(envName); env != "" {
		return env
	}
	return defaultVal
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "bgpsim simulates inter-domain BGP routing over an AS-level topology.\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n  bgpsim --relationships PATH --announcements PATH [flags]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	databaseURL := envOrFlag(databaseFlag, "BGPSIM_DATABASE", "")
	cacheURL := envOrFlag(cacheFlag, "BGPSIM_CACHE", "")
	progressAddr := envOrFlag(progressAddrFlag, "BGPSIM_PROGRESS_ADDR", "")
	metricsAddr := envOrFlag(metricsAddrFlag, "BGPSIM_METRICS_ADDR", "")

	logger, err := logging.New(*logFileFlag, *verboseFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open log file: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if *relationshipsFlag == "" || *announcementsFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: --relationships and --announcements are required")
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(runConfig{
		relationshipsPath: *relationshipsFlag,
		announcementsPath: *announcementsFlag,
		rovASNsPath:       *rovASNsFlag,
		outputPath:        *outputFlag,
		databaseURL:       databaseURL,
		cacheURL:          cacheURL,
		progressAddr:      progressAddr,
		metricsAddr:       metricsAddr,
	}))
}

type runConfig struct {
	relationshipsPath string
	announcementsPath string
	rovASNsPath       string
	outputPath        string
	databaseURL       string
	cacheURL          string
	progressAddr      string
	metricsAddr       string
}

func run(cfg runConfig) int {
	relBytes, err := os.ReadFile(cfg.relationshipsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open relationships file: %v\n", err)
		return 1
	}
	annBytes, err := os.ReadFile(cfg.announcementsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open announcements file: %v\n", err)
		return 1
	}
	var rovBytes []byte
	if cfg.rovASNsPath != "" {
		rovBytes, err = os.ReadFile(cfg.rovASNsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not open ROV ASNs file: %v\n", err)
			return 1
		}
	}

	var memo *cache.Cache
	var cacheKey string
	if cfg.cacheURL != "" {
		memo, err = cache.Open(cfg.cacheURL)
		if err != nil {
			slog.Warn("cache: connection failed, continuing without memoization", "error", err)
			memo = nil
		} else {
			defer memo.Close()
			cacheKey = cache.Key(relBytes, annBytes, rovBytes)
			if output, hit := memo.Get(cacheKey); hit {
				slog.Info("cache: hit, skipping recomputation")
				return writeOutput(cfg.outputPath, output)
			}
		}
	}

	g := topology.NewGraph()
	loadRelationships(g, relBytes)

	if cycle, found := g.FindCycle(); found {
		fmt.Fprintf(os.Stderr, "Error: cycle detected in relationships: %s\n", formatCycle(cycle))
		return 2
	}
	g.ComputePropagationRanks()

	validator := rov.NewValidator()
	g.ROVValidator = validator
	for _, asn := range g.ASNs() {
		g.Get(asn).Validator = validator
	}

	if len(rovBytes) > 0 {
		loadROVEnforcers(g, rovBytes)
	}

	anns := loadAnnouncements(annBytes)

	counters := &engine.Counters{}
	seedAnnouncements(g, validator, anns, counters)

	var metrics *engine.Metrics
	if cfg.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = engine.NewMetrics(reg)
		go serveMetrics(cfg.metricsAddr, reg)
	}

	var progressServer *liveprogress.Server
	var sink engine.Sink
	if cfg.progressAddr != "" {
		progressServer = liveprogress.NewServer(cfg.progressAddr)
		progressServer.Start()
		defer progressServer.Stop()
		sink = progressSink{server: progressServer}
	}

	if err := engine.Run(g, counters, sink); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	slog.Info("converged",
		"rounds", counters.RoundsExecuted,
		"accepted", counters.RouteAccepted,
		"rejected", counters.RouteRejected,
		"loop_prevented", counters.LoopPrevented)

	if metrics != nil {
		metrics.Observe(counters)
	}

	var rendered strings.Builder
	if err := export.WriteRoutingTable(&rendered, g); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not render routing table: %v\n", err)
		return 1
	}

	if code := writeOutput(cfg.outputPath, rendered.String()); code != 0 {
		return code
	}

	if memo != nil {
		if err := memo.Set(cacheKey, rendered.String()); err != nil {
			slog.Warn("cache: failed to store run output", "error", err)
		}
	}

	if cfg.databaseURL != "" {
		persistRIBs(cfg.databaseURL, g)
	}

	return 0
}

func writeOutput(path, content string) int {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not write output file: %v\n", err)
		return 1
	}
	return 0
}

func loadRelationships(g *topology.Graph, data []byte) {
	edges, errs := ingest.ParseRelationships(bytes.NewReader(data))
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", e.Error())
	}
	for _, e := range edges {
		if e.Peering {
			g.AddPeering(e.ASN1, e.ASN2)
		} else {
			g.AddCustomerProvider(e.ASN1, e.ASN2)
		}
	}
}

func loadROVEnforcers(g *topology.Graph, data []byte) {
	asns, errs := ingest.ParseROVASNs(bytes.NewReader(data))
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", e.Error())
	}
	for _, asn := range asns {
		n := g.Get(asn)
		if n == nil {
			fmt.Fprintf(os.Stderr, "Warning: ROV ASN %d is not in the topology, ignoring\n", asn)
			continue
		}
		n.DropInvalid = true
	}
}

func loadAnnouncements(data []byte) []ingest.InputAnnouncement {
	anns, errs := ingest.ParseAnnouncements(bytes.NewReader(data))
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", e.Error())
	}
	return anns
}

// seedAnnouncements installs a ROA for every row whose rov_invalid
// flag is false, then originates every row's prefix at its ASN if
// that ASN exists in the graph, exactly per the seed semantics.
func seedAnnouncements(g *topology.Graph, validator *rov.Validator, anns []ingest.InputAnnouncement, counters *engine.Counters) {
	for _, a := range anns {
		if !a.ROVInvalid {
			validator.AddROA(rov.ROA{
				Prefix:        a.Prefix,
				AuthorizedASN: bgp.ASN(a.ASN),
				MaxLength:     a.Prefix.Length,
			})
		}
	}
	for _, a := range anns {
		n := g.Get(a.ASN)
		if n == nil {
			counters.UnreachableOriginSkipped++
			continue
		}
		n.OriginatePrefix(a.Prefix)
		if ann, ok := n.RIB[a.Prefix]; ok {
			ann.NoExport = a.NoExport
			ann.NoAdvertise = a.NoAdvertise
			n.RIB[a.Prefix] = ann
		}
	}
}

func formatCycle(cycle []bgp.ASN) string {
	parts := make([]string, len(cycle))
	for i, asn := range cycle {
		parts[i] = fmt.Sprintf("%d", asn)
	}
	return strings.Join(parts, " -> ")
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	slog.Info("metrics: listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Warn("metrics: server stopped", "error", err)
	}
}

func persistRIBs(databaseURL string, g *topology.Graph) {
	sink, err := storage.Open(databaseURL)
	if err != nil {
		slog.Warn("storage: connection failed, skipping persistence", "error", err)
		return
	}
	defer sink.Close()

	var rows []storage.Row
	for _, asn := range g.ASNs() {
		n := g.Get(asn)
		for p, ann := range n.RIB {
			rows = append(rows, storage.Row{ASN: asn, Prefix: p, ASPath: formatASPathForStorage(ann.ASPath)})
		}
	}
	if err := sink.WriteAll(rows); err != nil {
		slog.Warn("storage: write failed", "error", err)
	}
}

func formatASPathForStorage(path []bgp.ASN) string {
	parts := make([]string, len(path))
	for i, asn := range path {
		parts[i] = fmt.Sprintf("%d", asn)
	}
	return strings.Join(parts, ",")
}

type progressSink struct {
	server *liveprogress.Server
}

func (s progressSink) Notify(e engine.ProgressEvent) {
	s.server.Notify(liveprogress.Event{Round: e.Round, Phase: e.Phase, RIBChanged: e.RIBChanged})
}

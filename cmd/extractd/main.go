// Command extractd is the extraction worker: it consumes diagram SVGs from
// NATS, runs the inference pipeline and replies with the connection set.
// Results are optionally persisted into Neo4j behind a circuit breaker.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/WessleyAI/wiretrace/pkg/metrics"
	"github.com/WessleyAI/wiretrace/pkg/resilience"
)

var met = metrics.New()

var (
	mJobs        = met.Counter("wiretrace_extract_jobs_total", "Extraction jobs received")
	mJobErrors   = met.Counter("wiretrace_extract_errors_total", "Extraction jobs failed")
	mRateLimited = met.Counter("wiretrace_extract_rate_limited_total", "Jobs rejected by rate limit")
	mConnections = met.Counter("wiretrace_extract_connections_total", "Connections emitted")
	mGraphWrites = met.Counter("wiretrace_extract_graph_writes_total", "Neo4j diagram writes")
	mGraphErrors = met.Counter("wiretrace_extract_graph_errors_total", "Neo4j write failures")
	mActive      = met.Gauge("wiretrace_extract_active_jobs", "Jobs currently processing")
	mJobDur      = met.Histogram("wiretrace_extract_job_duration_seconds", "Per-job pipeline time", nil)
)

func main() {
	var (
		natsURL     = flag.String("nats", nats.DefaultURL, "NATS server URL")
		hub         = flag.String("junction-hub", "FL", "harness hub suffix used in junction naming")
		rateLimit   = flag.Float64("rate", 10, "max jobs per second")
		burst       = flag.Int("burst", 5, "job rate limit burst")
		metricsPort = flag.Int("metrics-port", 9093, "Prometheus metrics port")
		neo4jURL    = flag.String("neo4j", "", "Neo4j bolt URL (empty: skip persistence)")
		neo4jUser   = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass   = flag.String("neo4j-pass", "", "Neo4j password")
		debug       = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := met.Serve(*metricsPort); err != nil {
			log.Error("metrics server failed", "port", *metricsPort, "error", err)
		}
	}()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Error("nats connect failed", "url", *natsURL, "error", err)
		os.Exit(1)
	}
	defer nc.Drain()
	log.Info("connected to NATS", "url", *natsURL)

	var (
		store   diagramStore
		querier graphQuerier
	)
	if *neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(*neo4jURL, neo4j.BasicAuth(*neo4jUser, *neo4jPass, ""))
		if err != nil {
			log.Error("neo4j connect failed", "error", err)
			os.Exit(1)
		}
		defer driver.Close(ctx)
		if err := driver.VerifyConnectivity(ctx); err != nil {
			log.Error("neo4j verify failed", "error", err)
			os.Exit(1)
		}
		gs := newGraphStore(driver)
		store, querier = gs, gs
		log.Info("connected to Neo4j")
	}

	w := newWorker(workerOpts{
		log:     log,
		hub:     *hub,
		limiter: resilience.NewLimiter(*rateLimit, *burst),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		store:   store,
		querier: querier,
	})

	sub, err := w.subscribe(nc)
	if err != nil {
		log.Error("subscribe failed", "subject", subjectExtract, "error", err)
		os.Exit(1)
	}
	defer sub.Unsubscribe()

	if querier != nil {
		subs, err := w.subscribeQueries(nc)
		if err != nil {
			log.Error("subscribe failed", "subject", subjectNeighbors, "error", err)
			os.Exit(1)
		}
		for _, s := range subs {
			defer s.Unsubscribe()
		}
	}

	log.Info("extractd ready", "subject", subjectExtract)
	<-ctx.Done()
	log.Info("shutting down")
}

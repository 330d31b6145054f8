package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/extract"
	"github.com/WessleyAI/wiretrace/engine/graph"
	"github.com/WessleyAI/wiretrace/engine/resolve"
	"github.com/WessleyAI/wiretrace/engine/svg"
	"github.com/WessleyAI/wiretrace/pkg/natsutil"
	"github.com/WessleyAI/wiretrace/pkg/resilience"
)

const (
	subjectExtract   = "wiretrace.extract"
	subjectResult    = "wiretrace.extract.result"
	subjectNeighbors = "wiretrace.graph.neighbors"
	subjectTrace     = "wiretrace.graph.trace"
)

// ExtractRequest is one diagram to process.
type ExtractRequest struct {
	Diagram     string `json:"diagram"`
	SVG         string `json:"svg"`
	JunctionHub string `json:"junction_hub,omitempty"`
}

// ExtractResult is the reply for one request.
type ExtractResult struct {
	Diagram     string              `json:"diagram"`
	Connections []domain.Connection `json:"connections,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// NeighborsRequest asks for the endpoints within depth hops of a node.
type NeighborsRequest struct {
	Diagram string `json:"diagram"`
	ID      string `json:"id"`
	Depth   int    `json:"depth,omitempty"`
}

// TraceRequest asks for the shortest electrical path between two endpoints.
type TraceRequest struct {
	Diagram string `json:"diagram"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// GraphResult is the reply for either graph query.
type GraphResult struct {
	Nodes []graph.Node `json:"nodes,omitempty"`
	Error string       `json:"error,omitempty"`
}

// diagramStore persists one diagram's connection set.
type diagramStore interface {
	SaveDiagram(ctx context.Context, diagram string, connections []domain.Connection) error
}

// graphQuerier answers connectivity queries over persisted diagrams.
type graphQuerier interface {
	Neighbors(ctx context.Context, diagram, id string, depth int) ([]graph.Node, error)
	TracePath(ctx context.Context, diagram, fromID, toID string) ([]graph.Node, error)
}

func newGraphStore(driver neo4j.DriverWithContext) *graph.Store {
	return graph.New(driver)
}

type workerOpts struct {
	log     *slog.Logger
	hub     string
	limiter *resilience.Limiter
	breaker *resilience.Breaker
	store   diagramStore
	querier graphQuerier
}

type worker struct {
	workerOpts
}

func newWorker(opts workerOpts) *worker {
	if opts.log == nil {
		opts.log = slog.Default()
	}
	return &worker{workerOpts: opts}
}

func (w *worker) subscribe(nc *nats.Conn) (*nats.Subscription, error) {
	return natsutil.Subscribe(nc, subjectExtract, func(ctx context.Context, req ExtractRequest, msg *nats.Msg) {
		res := w.process(ctx, req)
		if msg.Reply != "" {
			if err := natsutil.Respond(msg, res); err != nil {
				w.log.Error("reply failed", "diagram", req.Diagram, "error", err)
			}
		}
		if err := natsutil.Publish(ctx, nc, subjectResult, res); err != nil {
			w.log.Error("result publish failed", "diagram", req.Diagram, "error", err)
		}
	})
}

func (w *worker) process(ctx context.Context, req ExtractRequest) ExtractResult {
	mJobs.Inc()
	if !w.limiter.Allow() {
		mRateLimited.Inc()
		return ExtractResult{Diagram: req.Diagram, Error: resilience.ErrRateLimited.Error()}
	}

	mActive.Inc()
	defer mActive.Dec()
	start := time.Now()
	defer mJobDur.Since(start)

	doc, err := svg.Parse(strings.NewReader(req.SVG), svg.DefaultLayers())
	if err != nil {
		mJobErrors.Inc()
		return ExtractResult{Diagram: req.Diagram, Error: err.Error()}
	}

	cfg := resolve.DefaultConfig()
	if w.hub != "" {
		cfg.JunctionHub = w.hub
	}
	// A per-request hub overrides the daemon default.
	if req.JunctionHub != "" {
		cfg.JunctionHub = req.JunctionHub
	}

	connections, err := extract.Run(ctx, extract.Job{Doc: doc, Config: cfg, Logger: w.log})
	if err != nil {
		mJobErrors.Inc()
		return ExtractResult{Diagram: req.Diagram, Error: err.Error()}
	}
	mConnections.Add(int64(len(connections)))
	w.log.Info("diagram processed",
		"diagram", req.Diagram,
		"connections", len(connections),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if w.store != nil {
		err := w.breaker.Call(ctx, func(ctx context.Context) error {
			return w.store.SaveDiagram(ctx, req.Diagram, connections)
		})
		if err != nil {
			mGraphErrors.Inc()
			w.log.Error("graph write failed", "diagram", req.Diagram, "error", err)
		} else {
			mGraphWrites.Inc()
		}
	}

	return ExtractResult{Diagram: req.Diagram, Connections: connections}
}

// subscribeQueries registers the graph query subjects. Requires a querier;
// callers skip it when persistence is disabled.
func (w *worker) subscribeQueries(nc *nats.Conn) ([]*nats.Subscription, error) {
	neighbors, err := natsutil.Subscribe(nc, subjectNeighbors, func(ctx context.Context, req NeighborsRequest, msg *nats.Msg) {
		depth := req.Depth
		if depth < 1 {
			depth = 1
		}
		nodes, err := w.querier.Neighbors(ctx, req.Diagram, req.ID, depth)
		w.replyGraph(msg, req.Diagram, nodes, err)
	})
	if err != nil {
		return nil, err
	}
	trace, err := natsutil.Subscribe(nc, subjectTrace, func(ctx context.Context, req TraceRequest, msg *nats.Msg) {
		nodes, err := w.querier.TracePath(ctx, req.Diagram, req.From, req.To)
		w.replyGraph(msg, req.Diagram, nodes, err)
	})
	if err != nil {
		neighbors.Unsubscribe()
		return nil, err
	}
	return []*nats.Subscription{neighbors, trace}, nil
}

func (w *worker) replyGraph(msg *nats.Msg, diagram string, nodes []graph.Node, err error) {
	res := GraphResult{Nodes: nodes}
	if err != nil {
		mGraphErrors.Inc()
		w.log.Error("graph query failed", "diagram", diagram, "error", err)
		res = GraphResult{Error: err.Error()}
	}
	if msg.Reply == "" {
		return
	}
	if err := natsutil.Respond(msg, res); err != nil {
		w.log.Error("graph reply failed", "diagram", diagram, "error", err)
	}
}

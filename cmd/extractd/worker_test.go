package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/graph"
	"github.com/WessleyAI/wiretrace/pkg/natsutil"
	"github.com/WessleyAI/wiretrace/pkg/resilience"
)

const testSVG = `<?xml version="1.0" encoding="utf-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800 600">
  <text transform="matrix(1 0 0 1 10 50)">AA1</text>
  <text transform="matrix(1 0 0 1 50 50)">BB2</text>
  <text transform="matrix(1 0 0 1 10 100)">1</text>
  <text transform="matrix(1 0 0 1 50 100)">2</text>
  <text transform="matrix(1 0 0 1 30 95)">0.35,GY/PU</text>
</svg>`

func startTestNATS(t *testing.T) *nats.Conn {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})
	return nc
}

func testWorker(store diagramStore) *worker {
	return newWorker(workerOpts{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		hub:     "FL",
		limiter: resilience.NewLimiter(100, 100),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		store:   store,
	})
}

func TestWorkerRoundTrip(t *testing.T) {
	nc := startTestNATS(t)

	w := testWorker(nil)
	sub, err := w.subscribe(nc)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	results := make(chan ExtractResult, 1)
	broadcast, err := natsutil.Subscribe(nc, subjectResult, func(_ context.Context, res ExtractResult, _ *nats.Msg) {
		results <- res
	})
	if err != nil {
		t.Fatalf("subscribe result: %v", err)
	}
	defer broadcast.Unsubscribe()

	req := ExtractRequest{Diagram: "front-harness.svg", SVG: testSVG}
	res, err := natsutil.Request[ExtractRequest, ExtractResult](context.Background(), nc, subjectExtract, req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.Diagram != "front-harness.svg" {
		t.Fatalf("unexpected diagram %q", res.Diagram)
	}
	if len(res.Connections) != 1 {
		t.Fatalf("expected 1 connection, got %+v", res.Connections)
	}
	want := domain.Connection{FromID: "AA1", FromPin: "1", ToID: "BB2", ToPin: "2", WireDM: "0.35", WireColor: "GY/PU"}
	if res.Connections[0] != want {
		t.Fatalf("expected %+v, got %+v", want, res.Connections[0])
	}

	select {
	case broadcastRes := <-results:
		if broadcastRes.Diagram != res.Diagram {
			t.Fatalf("broadcast diagram mismatch: %q", broadcastRes.Diagram)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for broadcast result")
	}
}

func TestWorkerEmptyDiagram(t *testing.T) {
	w := testWorker(nil)
	res := w.process(context.Background(), ExtractRequest{Diagram: "blank.svg", SVG: "<svg></svg>"})
	if res.Error == "" {
		t.Fatal("expected an error for a tokenless diagram")
	}
}

func TestWorkerRateLimited(t *testing.T) {
	w := testWorker(nil)
	w.limiter = resilience.NewLimiter(0, 1)

	first := w.process(context.Background(), ExtractRequest{Diagram: "a.svg", SVG: testSVG})
	if first.Error != "" {
		t.Fatalf("first request should pass, got %s", first.Error)
	}
	second := w.process(context.Background(), ExtractRequest{Diagram: "b.svg", SVG: testSVG})
	if second.Error != resilience.ErrRateLimited.Error() {
		t.Fatalf("expected rate limit error, got %+v", second)
	}
}

type fakeStore struct {
	diagrams []string
	count    int
}

func (f *fakeStore) SaveDiagram(_ context.Context, diagram string, _ []domain.Connection) error {
	f.diagrams = append(f.diagrams, diagram)
	f.count++
	return nil
}

func TestWorkerPersistsThroughStore(t *testing.T) {
	store := &fakeStore{}
	w := testWorker(store)

	res := w.process(context.Background(), ExtractRequest{Diagram: "persist.svg", SVG: testSVG})
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if store.count != 1 || store.diagrams[0] != "persist.svg" {
		t.Fatalf("store not called correctly: %+v", store)
	}
}

type fakeQuerier struct {
	nodes []graph.Node
	err   error

	gotDiagram string
	gotDepth   int
	gotFrom    string
	gotTo      string
}

func (f *fakeQuerier) Neighbors(_ context.Context, diagram, id string, depth int) ([]graph.Node, error) {
	f.gotDiagram, f.gotFrom, f.gotDepth = diagram, id, depth
	return f.nodes, f.err
}

func (f *fakeQuerier) TracePath(_ context.Context, diagram, fromID, toID string) ([]graph.Node, error) {
	f.gotDiagram, f.gotFrom, f.gotTo = diagram, fromID, toID
	return f.nodes, f.err
}

func TestWorkerGraphQueries(t *testing.T) {
	nc := startTestNATS(t)

	q := &fakeQuerier{nodes: []graph.Node{
		{ID: "AA1", Kind: "connector", Diagram: "persist.svg"},
		{ID: "SP001", Kind: "splice", Diagram: "persist.svg"},
	}}
	w := testWorker(nil)
	w.querier = q

	subs, err := w.subscribeQueries(nc)
	if err != nil {
		t.Fatalf("subscribeQueries: %v", err)
	}
	for _, s := range subs {
		defer s.Unsubscribe()
	}

	near, err := natsutil.Request[NeighborsRequest, GraphResult](context.Background(), nc,
		subjectNeighbors, NeighborsRequest{Diagram: "persist.svg", ID: "AA1"})
	if err != nil {
		t.Fatalf("neighbors request: %v", err)
	}
	if near.Error != "" || len(near.Nodes) != 2 {
		t.Fatalf("unexpected neighbors result %+v", near)
	}
	if q.gotDepth != 1 {
		t.Fatalf("expected default depth 1, got %d", q.gotDepth)
	}

	path, err := natsutil.Request[TraceRequest, GraphResult](context.Background(), nc,
		subjectTrace, TraceRequest{Diagram: "persist.svg", From: "AA1", To: "SP001"})
	if err != nil {
		t.Fatalf("trace request: %v", err)
	}
	if path.Error != "" || len(path.Nodes) != 2 {
		t.Fatalf("unexpected trace result %+v", path)
	}
	if q.gotFrom != "AA1" || q.gotTo != "SP001" {
		t.Fatalf("trace endpoints not forwarded: %+v", q)
	}
}

func TestWorkerGraphQueryError(t *testing.T) {
	nc := startTestNATS(t)

	w := testWorker(nil)
	w.querier = &fakeQuerier{err: errors.New("neo4j down")}

	subs, err := w.subscribeQueries(nc)
	if err != nil {
		t.Fatalf("subscribeQueries: %v", err)
	}
	for _, s := range subs {
		defer s.Unsubscribe()
	}

	res, err := natsutil.Request[NeighborsRequest, GraphResult](context.Background(), nc,
		subjectNeighbors, NeighborsRequest{Diagram: "persist.svg", ID: "AA1", Depth: 2})
	if err != nil {
		t.Fatalf("neighbors request: %v", err)
	}
	if res.Error != "neo4j down" || len(res.Nodes) != 0 {
		t.Fatalf("expected query error to propagate, got %+v", res)
	}
}

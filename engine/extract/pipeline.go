package extract

import (
	"context"
	"log/slog"

	"github.com/WessleyAI/wiretrace/engine/domain"
	"github.com/WessleyAI/wiretrace/engine/index"
	"github.com/WessleyAI/wiretrace/engine/reconcile"
	"github.com/WessleyAI/wiretrace/engine/resolve"
	"github.com/WessleyAI/wiretrace/engine/svg"
	"github.com/WessleyAI/wiretrace/pkg/fn"
)

// Job is one diagram's extraction request.
type Job struct {
	Doc        *svg.Document
	Config     resolve.Config
	Exclusions *reconcile.Exclusions
	Logger     *slog.Logger
}

// state carries the per-diagram context through the pipeline stages. It is
// scoped to one Run call; nothing here is shared across diagrams.
type state struct {
	job Job

	tokens []domain.Token
	ix     *index.Index
	res    *resolve.Resolver
	specs  []domain.WireSpec

	horizontal []domain.Connection
	combined   []domain.Connection
	final      []domain.Connection
}

// Run executes the full inference pipeline on one parsed diagram and
// returns the reconciled connection set.
func Run(ctx context.Context, job Job) ([]domain.Connection, error) {
	if job.Logger == nil {
		job.Logger = slog.Default()
	}
	if len(job.Doc.Tokens) == 0 {
		return nil, domain.ErrNoTokens
	}

	pipeline := fn.Pipeline(
		fn.TracedStage("extract.normalize", fn.MapStage(stageNormalize)),
		fn.TracedStage("extract.horizontal", fn.MapStage(stageHorizontal)),
		fn.TracedStage("extract.routing", fn.MapStage(stageRouting)),
		fn.TracedStage("extract.ground", fn.MapStage(stageGround)),
		fn.TracedStage("extract.longrouting", fn.MapStage(stageLongRouting)),
		fn.TracedStage("extract.reconcile", fn.MapStage(stageReconcile)),
	)

	result := pipeline(ctx, &state{job: job})
	st, err := result.Unwrap()
	if err != nil {
		return nil, err
	}
	return st.final, nil
}

func stageNormalize(st *state) *state {
	st.tokens = svg.Normalize(st.job.Doc, domain.NewIDGenerator())
	st.ix = index.New(st.tokens)
	st.res = resolve.New(st.ix, st.job.Config)
	st.specs = svg.WireSpecs(st.tokens)
	st.job.Logger.Debug("tokens normalized",
		"tokens", len(st.tokens),
		"wire_specs", len(st.specs),
		"splice_dots", len(st.job.Doc.SpliceDots))
	return st
}

func stageHorizontal(st *state) *state {
	h := NewHorizontal(st.ix, st.res, st.specs, st.job.Doc.RoutingPolylines)
	st.horizontal = h.Extract()
	st.combined = append(st.combined, st.horizontal...)
	st.job.Logger.Debug("horizontal wires extracted", "connections", len(st.horizontal))
	return st
}

func stageRouting(st *state) *state {
	r := NewRouting(st.ix, st.res, st.specs, st.job.Doc.RoutingPolylines, st.job.Doc.RoutingPaths, st.horizontal)
	routed := r.Extract()
	st.combined = append(st.combined, routed...)
	st.job.Logger.Debug("routing paths extracted", "connections", len(routed))
	return st
}

func stageGround(st *state) *state {
	g := NewGround(st.ix, st.res, st.specs, st.job.Doc.GroundArrows, st.horizontal)
	grounds := g.Extract()
	st.combined = append(st.combined, grounds...)
	st.job.Logger.Debug("ground connections extracted", "connections", len(grounds))
	return st
}

func stageLongRouting(st *state) *state {
	l := NewLongRouting(st.combined, st.ix)
	long := l.Extract()
	st.combined = append(st.combined, long...)
	st.job.Logger.Debug("long routing inferred", "connections", len(long))
	return st
}

func stageReconcile(st *state) *state {
	st.final = st.job.Exclusions.Apply(reconcile.Reconcile(st.combined))
	st.job.Logger.Info("extraction complete", "connections", len(st.final))
	return st
}

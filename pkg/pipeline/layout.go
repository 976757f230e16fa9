package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crmmap/pkg/density"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/layout"
	"github.com/matzehuels/crmmap/pkg/layout/collide"
	"github.com/matzehuels/crmmap/pkg/layout/radial"
	"github.com/matzehuels/crmmap/pkg/layout/tree"
	"github.com/matzehuels/crmmap/pkg/observability"
	"github.com/matzehuels/crmmap/pkg/visibility"
)

// Engine computes layouts. It holds no per-pass state, so one Engine can
// serve concurrent passes.
type Engine struct {
	// Tree is the layered strategy. Nil disables the tree strategy.
	Tree *tree.Strategy

	// SolverTimeout bounds each tree pass. Zero means no timeout beyond
	// the caller's context.
	SolverTimeout time.Duration

	Logger *log.Logger
}

// NewEngine returns an engine whose tree strategy uses solver. A nil solver
// leaves only the radial strategy available.
func NewEngine(solver tree.Solver, logger *log.Logger) *Engine {
	if logger == nil {
		logger = newDiscardLogger()
	}
	e := &Engine{SolverTimeout: DefaultSolverTimeout, Logger: logger}
	if solver != nil {
		e.Tree = tree.New(solver)
	}
	return e
}

// =============================================================================
// Compute
// =============================================================================

// Compute runs one pass: filter, place, collide, style. Input errors are
// reported as INVALID_* and solver failures as SOLVER_* or TIMEOUT; in both
// cases no partial result is returned.
func (e *Engine) Compute(ctx context.Context, req Request) (*Result, error) {
	if err := req.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if req.Tree == nil {
		return nil, crmerrors.New(crmerrors.ErrCodeInvalidInput, "request has no hierarchy")
	}
	logger := e.logger()

	h, err := hierarchy.Apply(*req.Tree, req.Filter)
	if err != nil {
		return nil, crmerrors.Wrap(crmerrors.ErrCodeInvalidHierarchy, err, "invalid hierarchy")
	}

	hooks := observability.Layout()
	start := time.Now()
	hooks.OnLayoutStart(ctx, string(req.Strategy), h.ClientCount()+h.ProjectCount()+1)

	l, err := e.place(ctx, h, req)
	hooks.OnLayoutComplete(ctx, string(req.Strategy), time.Since(start), err)
	if err != nil {
		logger.Warn("layout failed", "strategy", req.Strategy, "err", err)
		return nil, err
	}

	policy := req.Interaction.Policy()
	cstats := e.collide(ctx, l, req, policy)
	hidden := visibility.Apply(l, req.Interaction)

	res := &Result{
		Strategy: l.Strategy,
		Nodes:    l.Nodes,
		Edges:    l.Edges,
		Hidden:   hidden,
		Orphans:  h.Orphans,
		Stats: Stats{
			Clients:    h.ClientCount(),
			Projects:   h.ProjectCount(),
			NodeCount:  len(l.Nodes),
			EdgeCount:  len(l.Edges),
			Collision:  cstats,
			LayoutTime: time.Since(start),
		},
	}

	logger.Debug("computed layout",
		"strategy", res.Strategy,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"hidden", len(hidden),
		"duration", res.Stats.LayoutTime)

	return res, nil
}

func (e *Engine) place(ctx context.Context, h *hierarchy.Hierarchy, req Request) (*layout.Layout, error) {
	collapsed := layout.NewCollapsedSet(req.Collapsed...)
	policy := req.Interaction.Policy()

	if req.Strategy == layout.StrategyRadial {
		return radial.Place(h, collapsed, req.Params, policy), nil
	}

	if e.Tree == nil {
		return nil, crmerrors.New(crmerrors.ErrCodeUnsupported, "tree strategy needs a layered-graph solver")
	}
	if e.SolverTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.SolverTimeout)
		defer cancel()
	}
	return e.Tree.Place(ctx, h, collapsed, req.Params, policy)
}

// collide separates overlapping nodes. Radial layouts are checked globally;
// tree layouts per layer. Tree edges whose endpoints moved are re-routed.
func (e *Engine) collide(ctx context.Context, l *layout.Layout, req Request, policy density.Policy) collide.Stats {
	if req.Collision.Disabled {
		return collide.Stats{Converged: true}
	}
	opts := collideOptions(req, l.Strategy, policy)

	before := make(map[string]layout.Node, len(l.Nodes))
	if l.Strategy == layout.StrategyTree {
		for _, n := range l.Nodes {
			before[n.ID] = n
		}
	}

	stats := collide.Resolve(l.Nodes, opts)
	observability.Layout().OnCollision(ctx, stats.Iterations, stats.Corrections, stats.Converged)
	if !stats.Converged {
		e.logger().Debug("collision pass did not converge",
			"iterations", stats.Iterations,
			"corrections", stats.Corrections)
	}

	if l.Strategy == layout.StrategyTree && stats.Corrections > 0 {
		reroute(l, before, req.Params.Direction)
	}
	return stats
}

// collideOptions returns the collision settings of a pass. Radial layouts
// keep every pair policy.MinDistance apart. Tree layouts band by layer and
// keep siblings apart by their footprint across the flow (height for LR,
// width for TB), the same measure the solver stacks them by. An explicit
// MinDistance applies to both.
func collideOptions(req Request, strategy layout.Strategy, policy density.Policy) collide.Options {
	minDist := req.Collision.MinDistance
	if minDist == 0 {
		minDist = policy.MinDistance()
	}

	opts := collide.Options{MinDistance: minDist, Banding: collide.BandNone}
	if strategy == layout.StrategyTree {
		opts = collide.ForDirection(req.Params.Direction, minDist)
		if req.Collision.MinDistance == 0 {
			opts.Extent = acrossFlow(req.Params.Direction)
		}
	}
	opts.MaxIterations = req.Collision.MaxIterations
	return opts
}

func acrossFlow(dir layout.Direction) func(n *layout.Node) float64 {
	if dir == layout.DirectionTB {
		return func(n *layout.Node) float64 { return n.Width }
	}
	return func(n *layout.Node) float64 { return n.Height }
}

// reroute replaces the routes of edges with a moved endpoint by elbows.
func reroute(l *layout.Layout, before map[string]layout.Node, dir layout.Direction) {
	moved := func(n *layout.Node) bool {
		return before[n.ID].Position != n.Position
	}
	for i := range l.Edges {
		e := &l.Edges[i]
		src, ok1 := l.Node(e.SourceID)
		dst, ok2 := l.Node(e.TargetID)
		if !ok1 || !ok2 || (!moved(src) && !moved(dst)) {
			continue
		}
		e.Route = tree.ElbowRoute(*src, *dst, dir)
	}
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return newDiscardLogger()
	}
	return e.Logger
}
